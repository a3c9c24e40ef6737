// Package v1 registers the versioned API routes.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Srinath10X/foundersTribe-sub002/internal/interfaces/httpserver/handlers"
)

// Routes holds the v1 route group.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes creates the v1 routes.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{handlers: handlerProvider}
}

// Register mounts /v1 with the given auth middleware.
func (r *Routes) Register(engine *gin.Engine, authMiddleware gin.HandlerFunc) {
	group := engine.Group("/v1")
	if authMiddleware != nil {
		group.Use(authMiddleware)
	}

	RegisterChatRoutes(group, r.handlers.Chat)
}
