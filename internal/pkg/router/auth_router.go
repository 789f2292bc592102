package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subtrackhq/subtrack/app/controllers"
	"github.com/subtrackhq/subtrack/internal/pkg/middleware"
)

type AuthRouter struct {
}

func (h AuthRouter) InstallRouter(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/register", controllers.HandleRegister)
	auth.Post("/login", controllers.HandleLogin)
	auth.Post("/refresh", controllers.HandleRefresh)
	auth.Post("/logout", controllers.HandleLogout)
	auth.Get("/me", middleware.JWTAuthMiddleware(), controllers.HandleGetMe)
}

func NewAuthRouter() *AuthRouter {
	return &AuthRouter{}
}
