package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/subtrackhq/subtrack/app/controllers"
	"github.com/subtrackhq/subtrack/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(), middleware.JWTAuthMiddleware())

	subs := api.Group("/subscriptions")
	subs.Post("/", controllers.HandleCreateSubscription)
	subs.Get("/", controllers.HandleListSubscriptions)
	subs.Get("/:id", controllers.HandleGetSubscription)
	subs.Patch("/:id", controllers.HandleUpdateSubscription)
	subs.Post("/:id/archive", controllers.HandleArchiveSubscription)
	subs.Post("/:id/renew", controllers.HandleRenewSubscription)
	subs.Get("/:id/price-history", controllers.HandleGetPriceHistory)

	api.Get("/analytics", controllers.HandleOverallAnalytics)
	api.Get("/analytics/:category", controllers.HandleCategoryAnalytics)

	notifications := api.Group("/notifications")
	notifications.Get("/grouped", controllers.HandleGroupedNotifications)
	notifications.Get("/subscription/:id", controllers.HandleSubscriptionNotifications)
	notifications.Post("/subscription/:id/read-all", controllers.HandleMarkNotificationsRead)
	notifications.Get("/subscription/:id/unread-count", controllers.HandleUnreadCount)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
