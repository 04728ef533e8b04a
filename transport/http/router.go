package http

import (
	"github.com/gin-gonic/gin"
	"github.com/matehackers/badges-engine/ports"
	"github.com/matehackers/badges-engine/service"
)

// SetupRouter sets up the Gin router. Admin routes are only mounted when a tokenizer is given.
func SetupRouter(assertionService *service.AssertionService, tokenizer ports.Tokenizer, mountPath string) *gin.Engine {
	router := gin.Default()
	RegisterRoutes(router.Group(mountPath), assertionService, tokenizer)
	return router
}

// RegisterRoutes mounts the engine's routes on a host application's router group
func RegisterRoutes(group *gin.RouterGroup, assertionService *service.AssertionService, tokenizer ports.Tokenizer) {
	handlers := NewAssertionHandlers(assertionService)

	// Baking service callback, authenticated by the assertion token
	group.GET("/assertions/:id", handlers.Show)

	if tokenizer == nil {
		return
	}

	admin := group.Group("")
	admin.Use(AdminMiddleware(tokenizer))
	{
		admin.POST("/assertions", handlers.Create)
		admin.POST("/assertions/:id/bake", handlers.Bake)
		admin.GET("/admin/assertions/:id", handlers.Get)
	}
}
