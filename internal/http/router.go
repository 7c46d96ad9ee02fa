package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/config"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/http/handler"
	httpmiddleware "github.com/MoosaAfzal2/poetry-todo-api/internal/http/middleware"
)

const apiPrefix = "/api/v1"

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, healthHandler *handler.HealthHandler, authHandler *handler.AuthHandler, todoHandler *handler.TodoHandler, authMiddleware *httpmiddleware.Auth, rateLimiter *httpmiddleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(httpmiddleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	api := r.Group(apiPrefix)

	api.GET("/", healthHandler.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/sign-up", authHandler.SignUp)
		auth.POST("/login", authHandler.Login)

		auth.GET("/profile", authMiddleware.Authenticate, authHandler.Profile)
		auth.PATCH("/profile", authMiddleware.Authenticate, authHandler.UpdateProfile)
		auth.DELETE("/delete-account", authMiddleware.Authenticate, authHandler.DeleteAccount)

		auth.GET("/users", authMiddleware.Authenticate, authMiddleware.RequireAdmin, authHandler.ListUsers)
	}

	todo := api.Group("/todo", authMiddleware.Authenticate)
	{
		todo.GET("/", todoHandler.List)
		todo.GET("/:todo_id", todoHandler.Get)
		todo.POST("/", todoHandler.Create)
		todo.PATCH("/:todo_id", todoHandler.Update)
		todo.DELETE("/:todo_id", todoHandler.Delete)
	}

	return r
}
