package controllers

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/subtrackhq/subtrack/internal/pkg/billing"
	"github.com/subtrackhq/subtrack/internal/pkg/cache"
)

var validate = validator.New()

const dateLayout = "2006-01-02"

// jsonError writes the API error envelope.
func jsonError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// today returns the server's current calendar date. All date comparisons in
// the ledger and analytics use this single UTC calendar date.
func today() time.Time {
	return billing.DateOnly(time.Now().UTC())
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}

// invalidateAnalyticsCache drops a user's cached analytics responses after a
// subscription mutation. Best effort: a cache miss only costs a recompute.
func invalidateAnalyticsCache(userID uint) {
	if _, err := cache.DeleteByPattern(fmt.Sprintf("analytics:%d:*", userID)); err != nil {
		// Cache unavailability must not fail the mutation.
		return
	}
}

// firstValidationError flattens a validator error into one readable message.
func firstValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return fmt.Sprintf("field %s failed validation (%s)", errs[0].Field(), errs[0].Tag())
	}
	return err.Error()
}
