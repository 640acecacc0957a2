package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spotcheck/spotfeed/pkg/config"
)

// Router sets up API routes
type Router struct {
	handlers *Handlers
	authCfg  *config.AuthConfig
}

// NewRouter creates a new API router
func NewRouter(handlers *Handlers, authCfg *config.AuthConfig) *Router {
	return &Router{handlers: handlers, authCfg: authCfg}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	v1 := engine.Group("/v1")

	// Reads work anonymously; vote projections are neutral without a viewer.
	reads := v1.Group("", authenticate(r.authCfg, false))
	reads.GET("/posts", r.handlers.listPosts)
	reads.GET("/posts/:id", r.handlers.getPost)
	reads.GET("/posts/:id/answers", r.handlers.listAnswers)
	reads.GET("/users/:id/posts", r.handlers.listPostsByUser)
	reads.GET("/users/:id/answers", r.handlers.listAnswersByUser)
	reads.GET("/exercises", r.handlers.listExercises)

	writes := v1.Group("", authenticate(r.authCfg, true))
	writes.POST("/posts", r.handlers.createPost)
	writes.PATCH("/posts/:id", r.handlers.updatePost)
	writes.DELETE("/posts/:id", r.handlers.deletePost)
	writes.POST("/posts/:id/image", r.handlers.attachImage)
	writes.POST("/posts/:id/answers", r.handlers.writeAnswer)
	writes.DELETE("/answers/:id", r.handlers.deleteAnswer)
	writes.POST("/posts/:id/votes", r.handlers.votePost)
	writes.POST("/answers/:id/votes", r.handlers.voteAnswer)
	writes.POST("/posts/:id/likes", r.handlers.likePost)
	writes.POST("/posts/:id/views", r.handlers.recordView)
	writes.POST("/cache/clear", r.handlers.clearCache)
}

func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "spotfeed-api",
	})
}
