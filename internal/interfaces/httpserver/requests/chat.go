// Package requests contains HTTP request DTOs and binding validation.
package requests

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SendMessageRequest is the body for sending a message.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required,notblank"`
}

// RegisterValidations installs custom binding rules on gin's validator engine.
// Call once at server construction.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", notBlank)
	}
}

// notBlank rejects strings that are empty after trimming, mirroring the send
// controller's own body check so the engine never sees junk sends.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
