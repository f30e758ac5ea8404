package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/daylogapp/daylog/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Todo     *apiHandler.TodoHandler
	Activity *apiHandler.ActivityHandler
	Account  *apiHandler.AccountHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	r.GET("/api/v1/todos", authMiddleware(handlers.Todo.List))
	r.POST("/api/v1/todos", authMiddleware(handlers.Todo.Create))
	r.PATCH("/api/v1/todos/{id}", authMiddleware(handlers.Todo.Patch))
	r.DELETE("/api/v1/todos/{id}", authMiddleware(handlers.Todo.Delete))

	r.GET("/api/v1/activity", authMiddleware(handlers.Activity.Counts))
	r.DELETE("/api/v1/account", authMiddleware(handlers.Account.Delete))

	return r
}
