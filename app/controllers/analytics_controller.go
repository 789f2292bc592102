package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/subtrackhq/subtrack/app/models"
	"github.com/subtrackhq/subtrack/app/repository"
	"github.com/subtrackhq/subtrack/internal/pkg/analytics"
	"github.com/subtrackhq/subtrack/internal/pkg/cache"
	"github.com/subtrackhq/subtrack/internal/pkg/usercontext"
)

const analyticsCacheTTL = 5 * time.Minute

// HandleOverallAnalytics returns the user's spend per category for a period.
// All subscriptions count, archived ones included.
func HandleOverallAnalytics(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	period, ok := periodFromQuery(c)
	if !ok {
		return nil
	}

	cacheKey := fmt.Sprintf("analytics:%d:overall:%s:%d:%d:%d",
		userCtx.UserID, period.Type, period.Year, period.Month, period.Quarter)
	if cached, err := cache.Get(cacheKey); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	repos := repository.GetGlobalRepositories()
	subs, err := repos.Subscription.GetByUserID(userCtx.UserID, true)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscriptions")
	}

	entries, err := repos.PriceHistory.GetStartingOnOrAfter(subscriptionIDs(subs), period.Start)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load price history")
	}

	report := analytics.Overall(subs, entries, period)

	if payload, err := json.Marshal(report); err == nil {
		_ = cache.Set(cacheKey, payload, analyticsCacheTTL)
	}

	return c.JSON(report)
}

// HandleCategoryAnalytics breaks one category's spend down per subscription.
func HandleCategoryAnalytics(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	category, err := models.ParseCategory(c.Params("category"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	period, ok := periodFromQuery(c)
	if !ok {
		return nil
	}

	cacheKey := fmt.Sprintf("analytics:%d:category:%s:%s:%d:%d:%d",
		userCtx.UserID, category, period.Type, period.Year, period.Month, period.Quarter)
	if cached, err := cache.Get(cacheKey); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	repos := repository.GetGlobalRepositories()
	subs, err := repos.Subscription.GetByUserIDAndCategory(userCtx.UserID, category)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscriptions")
	}

	entries, err := repos.PriceHistory.GetStartingOnOrAfter(subscriptionIDs(subs), period.Start)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load price history")
	}

	report := analytics.Category(category, subs, entries, period)

	if payload, err := json.Marshal(report); err == nil {
		_ = cache.Set(cacheKey, payload, analyticsCacheTTL)
	}

	return c.JSON(report)
}

// periodFromQuery parses and validates the period query parameters. On
// failure the 400 response is already written and ok is false.
func periodFromQuery(c *fiber.Ctx) (analytics.Period, bool) {
	periodType := analytics.PeriodType(c.Query("period"))
	year := c.QueryInt("year", 0)
	if year == 0 {
		_ = jsonError(c, fiber.StatusBadRequest, "bad_request", "year parameter is required")
		return analytics.Period{}, false
	}

	period, err := analytics.NewPeriod(periodType, year, c.QueryInt("month", 0), c.QueryInt("quarter", 0))
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidPeriodType) {
			_ = jsonError(c, fiber.StatusBadRequest, "bad_request", "period must be one of month, quarter, year")
		} else {
			_ = jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
		return analytics.Period{}, false
	}
	return period, true
}

func subscriptionIDs(subs []models.Subscription) []uint {
	ids := make([]uint, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}
	return ids
}
