package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "mediumish/docs"
	"mediumish/internal/logger"
	"mediumish/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	allowedOrigins []string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithAllowedOrigins restricts CORS to the given origins. An empty list or
// "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) { h.allowedOrigins = origins }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(h.corsConfig()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)

	// Public browsing
	router.GET("/posts", h.listPosts)
	router.GET("/ws/feed", h.feedConnect)

	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	cfg.MaxAge = 12 * time.Hour

	origins := make([]string, 0, len(h.allowedOrigins))
	for _, o := range h.allowedOrigins {
		if o == "*" {
			origins = nil
			break
		}
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/forgot-password", h.forgotPassword)
		auth.POST("/reset-password", h.resetPassword)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/", h.userIdMiddleware)
	{
		h.registerPostRoutes(api)
		h.registerUserRoutes(api)
		api.GET("/leaderboard", h.leaderboard)
		api.GET("/notifications", h.notifications)
	}
}

func (h *Handler) registerPostRoutes(api *gin.RouterGroup) {
	posts := api.Group("/posts")
	{
		posts.GET("/search", h.searchPosts)
		posts.POST("", h.createPost)
		posts.GET("/:id", h.getPost)
		posts.POST("/:id/like", h.likePost)
		posts.POST("/:id/comment", h.commentPost)
		posts.POST("/:id/save", h.savePost)
	}
}

func (h *Handler) registerUserRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.POST("/:id/follow", h.followUser)
		users.GET("/profile/:userId", h.getProfile)
		users.PUT("/profile", h.updateProfile)
		users.GET("/library", h.library)
		users.POST("/lists", h.createList)
		users.GET("/stats", h.stats)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
