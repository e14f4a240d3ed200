package handlers

import (
	"microblog/internal/cache"
	"microblog/internal/loader"
	"microblog/internal/logger"
	"microblog/internal/pubsub"
	"microblog/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	authors  loader.UserSource
	cache    *cache.Client
	hub      *pubsub.Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. respCache
// and hub may be nil; caching and live notifications degrade gracefully.
func NewHandler(services *service.Service, authors loader.UserSource, respCache *cache.Client, hub *pubsub.Hub, log *logger.Logger) *Handler {
	return &Handler{
		services: services,
		authors:  authors,
		cache:    respCache,
		hub:      hub,
		log:      log,
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	// The auth gate decodes tokens opportunistically for every request;
	// rejection happens per operation via requireAuth.
	router.Use(gin.Recovery(), h.authGate)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Liveness endpoint
	router.GET("/ping", h.ping)

	// Public post listing with per-request author batching
	router.GET("/posts", h.withUserLoader, h.listPosts)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live post-added stream, served over an HTTP upgrade on the same port
	router.GET("/ws/posts", h.wsPosts)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.requireAuth)
	{
		api.GET("/me", h.me)
		api.PUT("/me/password", h.changePassword)
		api.POST("/posts", h.createPost)
	}
}
