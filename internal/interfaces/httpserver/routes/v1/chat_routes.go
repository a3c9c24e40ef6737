package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/auth"
	"github.com/Srinath10X/foundersTribe-sub002/internal/interfaces/httpserver/handlers"
	"github.com/Srinath10X/foundersTribe-sub002/internal/interfaces/httpserver/requests"
	"github.com/Srinath10X/foundersTribe-sub002/internal/interfaces/httpserver/responses"
)

// RegisterChatRoutes registers the conversation session routes.
func RegisterChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/conversations/:id/open", openConversation(handler))
	router.DELETE("/conversations/:id", closeConversation(handler))
	router.GET("/conversations/:id/messages", listMessages(handler))
	router.POST("/conversations/:id/messages", sendMessage(handler))
	router.POST("/conversations/:id/messages/:messageID/retry", retryMessage(handler))
	router.GET("/conversations/:id/status", sessionStatus(handler))
}

func openConversation(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := handler.Open(c.Request.Context(), auth.UserID(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to open conversation")
			return
		}
		c.JSON(http.StatusOK, responses.NewConversationResponse(s))
	}
}

func closeConversation(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("id")
		if err := handler.Close(c.Request.Context(), auth.UserID(c), conversationID); err != nil {
			responses.HandleError(c, err, "failed to close conversation")
			return
		}
		c.JSON(http.StatusOK, responses.ClosedResponse{
			ConversationID: conversationID,
			Closed:         true,
		})
	}
}

func listMessages(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := handler.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "conversation not open")
			return
		}
		c.JSON(http.StatusOK, responses.MessageListResponse{
			Object: "list",
			Data:   s.Snapshot(),
		})
	}
}

func sendMessage(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleValidationError(c, err)
			return
		}

		msg, err := handler.Send(c.Request.Context(), auth.UserID(c), c.Param("id"), req.Body)
		if err != nil {
			responses.HandleError(c, err, "failed to send message")
			return
		}
		c.JSON(http.StatusCreated, responses.MessageResponse{Message: msg})
	}
}

func retryMessage(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		msg, err := handler.Retry(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("messageID"))
		if err != nil {
			responses.HandleError(c, err, "failed to retry message")
			return
		}
		c.JSON(http.StatusCreated, responses.MessageResponse{Message: msg})
	}
}

func sessionStatus(handler *handlers.ChatHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := handler.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "conversation not open")
			return
		}
		c.JSON(http.StatusOK, responses.NewStatusResponse(s))
	}
}
