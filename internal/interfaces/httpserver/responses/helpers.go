package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

// HandleError maps domain errors to HTTP status codes and writes the standard
// error envelope.
func HandleError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	errType := "internal_error"

	switch {
	case errors.Is(err, chat.ErrSessionNotFound),
		errors.Is(err, chat.ErrConversationNotFound),
		errors.Is(err, chat.ErrMessageNotFound):
		status = http.StatusNotFound
		errType = "not_found_error"
	case errors.Is(err, chat.ErrSendInFlight):
		status = http.StatusConflict
		errType = "conflict_error"
	case errors.Is(err, chat.ErrEmptyBody):
		status = http.StatusUnprocessableEntity
		errType = "validation_error"
	case errors.Is(err, chat.ErrNoViewer):
		status = http.StatusUnauthorized
		errType = "unauthorized_error"
	case errors.Is(err, chat.ErrSessionClosed):
		status = http.StatusGone
		errType = "session_closed_error"
	}

	c.JSON(status, ErrorResponse{
		Error: &ErrorDetail{
			Message: message,
			Type:    errType,
		},
	})
}

// HandleValidationError writes a 400 for malformed request bodies.
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: &ErrorDetail{
			Message: err.Error(),
			Type:    "validation_error",
		},
	})
}
