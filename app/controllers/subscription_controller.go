package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subtrackhq/subtrack/app/models"
	"github.com/subtrackhq/subtrack/app/repository"
	"github.com/subtrackhq/subtrack/internal/pkg/billing"
	"github.com/subtrackhq/subtrack/internal/pkg/database"
	"github.com/subtrackhq/subtrack/internal/pkg/usercontext"
)

type createSubscriptionRequest struct {
	Name                 string `json:"name" validate:"required,min=1,max=150"`
	CurrentAmount        int    `json:"current_amount" validate:"gte=0"`
	Category             string `json:"category" validate:"required"`
	BillingCycle         string `json:"billing_cycle"`
	ConnectedDate        string `json:"connected_date"`
	NextPaymentDate      string `json:"next_payment_date"`
	NotifyDays           *int   `json:"notify_days"`
	AutoRenewal          *bool  `json:"auto_renewal"`
	NotificationsEnabled *bool  `json:"notifications_enabled"`
}

type updateSubscriptionRequest struct {
	Name                 *string `json:"name"`
	CurrentAmount        *int    `json:"current_amount"`
	Category             *string `json:"category"`
	BillingCycle         *string `json:"billing_cycle"`
	NextPaymentDate      *string `json:"next_payment_date"`
	NotifyDays           *int    `json:"notify_days"`
	AutoRenewal          *bool   `json:"auto_renewal"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

// HandleCreateSubscription creates a subscription and, for a positive amount,
// opens the first price-history entry. Subscription, ledger entry and the
// lifecycle notification are committed in one transaction.
func HandleCreateSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", firstValidationError(err))
	}

	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}

	cycle := models.CycleMonthly
	if req.BillingCycle != "" {
		cycle, err = models.ParseBillingCycle(req.BillingCycle)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
	}

	notifyDays := models.NotifyDaysDefault
	if req.NotifyDays != nil {
		notifyDays = *req.NotifyDays
	}
	if notifyDays < models.NotifyDaysMin || notifyDays > models.NotifyDaysMax {
		return jsonError(c, fiber.StatusBadRequest, "bad_request",
			fmt.Sprintf("notify_days must be between %d and %d", models.NotifyDaysMin, models.NotifyDaysMax))
	}

	now := today()

	connectedDate := now
	if req.ConnectedDate != "" {
		connectedDate, err = parseDate(req.ConnectedDate)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "connected_date must be formatted as YYYY-MM-DD")
		}
		if connectedDate.After(now) {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "Connection date cannot be in the future")
		}
	}

	var nextPaymentDate *time.Time
	if req.NextPaymentDate != "" {
		parsed, err := parseDate(req.NextPaymentDate)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "next_payment_date must be formatted as YYYY-MM-DD")
		}
		if parsed.Before(now) {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "Next payment date cannot be in the past")
		}
		nextPaymentDate = &parsed
	} else {
		// Seed the payment schedule from the connection date.
		seeded := billing.NextPaymentDate(connectedDate, cycle)
		nextPaymentDate = &seeded
	}

	subRepo := repository.GetGlobalFactory().GetSubscriptionRepository()
	if _, err := subRepo.GetByName(req.Name); err == nil {
		return jsonError(c, fiber.StatusConflict, "conflict", "Subscription with this name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Subscription lookup failed")
	}

	sub := models.Subscription{
		UserID:               userCtx.UserID,
		Name:                 req.Name,
		CurrentAmount:        req.CurrentAmount,
		Category:             category,
		BillingCycle:         cycle,
		ConnectedDate:        connectedDate,
		NextPaymentDate:      nextPaymentDate,
		NotifyDays:           notifyDays,
		AutoRenewal:          req.AutoRenewal != nil && *req.AutoRenewal,
		NotificationsEnabled: req.NotificationsEnabled == nil || *req.NotificationsEnabled,
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		if sub.CurrentAmount > 0 {
			plan := billing.Reconcile(nil, sub.ID, sub.CurrentAmount, now)
			if err := applyReconcilePlan(tx, plan); err != nil {
				return err
			}
		}
		if sub.NotificationsEnabled {
			return models.CreateNotification(tx, sub.UserID, sub.ID, models.NotificationTypeCreated,
				"Subscription created", fmt.Sprintf("Subscription %q was created", sub.Name))
		}
		return nil
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Subscription creation failed, please try again")
	}

	invalidateAnalyticsCache(userCtx.UserID)

	ledger, err := repository.GetGlobalFactory().GetPriceHistoryRepository().GetBySubscriptionID(sub.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load price history")
	}
	sub.PriceHistory = ledger

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// HandleListSubscriptions returns the user's subscriptions ordered by next
// payment date; archived ones only with ?archived=true.
func HandleListSubscriptions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	includeArchived := c.QueryBool("archived", false)

	subs, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetByUserID(userCtx.UserID, includeArchived)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscriptions")
	}

	return c.JSON(subs)
}

// HandleGetSubscription returns one owned subscription with its ledger.
func HandleGetSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	sub, err := ownedSubscription(c, userCtx.UserID)
	if sub == nil {
		return err
	}

	ledger, err := repository.GetGlobalFactory().GetPriceHistoryRepository().GetBySubscriptionID(sub.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load price history")
	}
	sub.PriceHistory = ledger

	return c.JSON(sub)
}

// HandleGetPriceHistory returns a subscription's ledger, newest first.
func HandleGetPriceHistory(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	sub, err := ownedSubscription(c, userCtx.UserID)
	if sub == nil {
		return err
	}

	ledger, err := repository.GetGlobalFactory().GetPriceHistoryRepository().GetBySubscriptionID(sub.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load price history")
	}

	return c.JSON(ledger)
}

// HandleUpdateSubscription applies a partial patch. An amount change runs the
// ledger reconciler; a cycle change recomputes the next payment date from the
// existing one. Archived subscriptions are immutable.
func HandleUpdateSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	sub, err := ownedSubscription(c, userCtx.UserID)
	if sub == nil {
		return err
	}
	if sub.IsArchived() {
		return jsonError(c, fiber.StatusConflict, "conflict", "Archived subscriptions cannot be modified")
	}

	var req updateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	now := today()
	subRepo := repository.GetGlobalFactory().GetSubscriptionRepository()

	if req.Name != nil && *req.Name != sub.Name {
		if *req.Name == "" {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "name must not be empty")
		}
		if existing, err := subRepo.GetByName(*req.Name); err == nil && existing.ID != sub.ID {
			return jsonError(c, fiber.StatusConflict, "conflict", "Subscription with this name already exists")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Subscription lookup failed")
		}
		sub.Name = *req.Name
	}

	if req.Category != nil {
		category, err := models.ParseCategory(*req.Category)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
		sub.Category = category
	}

	if req.BillingCycle != nil && models.BillingCycle(*req.BillingCycle) != sub.BillingCycle {
		cycle, err := models.ParseBillingCycle(*req.BillingCycle)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		}
		sub.BillingCycle = cycle
		// The schedule follows the new cycle from the current anchor.
		if sub.NextPaymentDate != nil {
			next := billing.NextPaymentDate(*sub.NextPaymentDate, cycle)
			sub.NextPaymentDate = &next
		}
	}

	if req.NextPaymentDate != nil {
		parsed, err := parseDate(*req.NextPaymentDate)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "next_payment_date must be formatted as YYYY-MM-DD")
		}
		if parsed.Before(now) {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "Next payment date cannot be in the past")
		}
		sub.NextPaymentDate = &parsed
	}

	if req.NotifyDays != nil {
		if *req.NotifyDays < models.NotifyDaysMin || *req.NotifyDays > models.NotifyDaysMax {
			return jsonError(c, fiber.StatusBadRequest, "bad_request",
				fmt.Sprintf("notify_days must be between %d and %d", models.NotifyDaysMin, models.NotifyDaysMax))
		}
		sub.NotifyDays = *req.NotifyDays
	}

	if req.AutoRenewal != nil {
		sub.AutoRenewal = *req.AutoRenewal
	}
	if req.NotificationsEnabled != nil {
		sub.NotificationsEnabled = *req.NotificationsEnabled
	}

	amountChanged := req.CurrentAmount != nil && *req.CurrentAmount != sub.CurrentAmount
	if amountChanged {
		if *req.CurrentAmount < 0 {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "current_amount must not be negative")
		}
		sub.CurrentAmount = *req.CurrentAmount
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if amountChanged {
			ledger, err := repository.GetGlobalFactory().GetPriceHistoryRepository().GetBySubscriptionID(sub.ID)
			if err != nil {
				return err
			}
			plan := billing.Reconcile(ledger, sub.ID, sub.CurrentAmount, now)
			if err := applyReconcilePlan(tx, plan); err != nil {
				return err
			}
		}
		return tx.Save(sub).Error
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Subscription update failed, please try again")
	}

	invalidateAnalyticsCache(userCtx.UserID)

	return c.JSON(sub)
}

// HandleArchiveSubscription archives a subscription: a one-way transition
// that freezes the record and disables its notifications.
func HandleArchiveSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	sub, err := ownedSubscription(c, userCtx.UserID)
	if sub == nil {
		return err
	}
	if sub.IsArchived() {
		return jsonError(c, fiber.StatusConflict, "conflict", "Subscription is already archived")
	}

	now := today()
	sub.ArchivedDate = &now
	sub.NotificationsEnabled = false

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sub).Error; err != nil {
			return err
		}
		return models.CreateNotification(tx, sub.UserID, sub.ID, models.NotificationTypeArchived,
			"Subscription archived", fmt.Sprintf("Subscription %q was archived", sub.Name))
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Subscription archiving failed, please try again")
	}

	invalidateAnalyticsCache(userCtx.UserID)

	return c.JSON(sub)
}

// HandleRenewSubscription advances the next payment date by one billing cycle
// without touching the price ledger.
func HandleRenewSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	sub, err := ownedSubscription(c, userCtx.UserID)
	if sub == nil {
		return err
	}
	if sub.IsArchived() {
		return jsonError(c, fiber.StatusConflict, "conflict", "Archived subscriptions cannot be renewed")
	}

	anchor := today()
	if sub.NextPaymentDate != nil {
		anchor = *sub.NextPaymentDate
	}
	next := billing.NextPaymentDate(anchor, sub.BillingCycle)
	sub.NextPaymentDate = &next

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sub).Error; err != nil {
			return err
		}
		if sub.NotificationsEnabled {
			return models.CreateNotification(tx, sub.UserID, sub.ID, models.NotificationTypeRenewed,
				"Subscription renewed", fmt.Sprintf("Subscription %q renews on %s", sub.Name, next.Format(dateLayout)))
		}
		return nil
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Subscription renewal failed, please try again")
	}

	invalidateAnalyticsCache(userCtx.UserID)

	return c.JSON(sub)
}

// ownedSubscription resolves the :id route param against the caller's own
// subscriptions; foreign or missing IDs both read as 404. On failure the
// error response is already written and the returned subscription is nil.
func ownedSubscription(c *fiber.Ctx, userID uint) (*models.Subscription, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid subscription id")
	}

	sub, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetOwnedByID(uint(id), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "not_found", "Subscription not found")
		}
		return nil, jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Subscription lookup failed")
	}
	return sub, nil
}

// applyReconcilePlan persists a reconciler decision inside the caller's
// transaction. Closing the superseded entry and opening the new one commit
// together or not at all.
func applyReconcilePlan(tx *gorm.DB, plan billing.Plan) error {
	if plan.Action == billing.ActionNone {
		return nil
	}
	for i := range plan.Close {
		if err := tx.Save(&plan.Close[i]).Error; err != nil {
			return err
		}
	}
	if plan.Upsert == nil {
		return nil
	}
	if plan.Upsert.ID == 0 {
		return tx.Create(plan.Upsert).Error
	}
	return tx.Save(plan.Upsert).Error
}
