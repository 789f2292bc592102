package controllers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/subtrackhq/subtrack/app/models"
	"github.com/subtrackhq/subtrack/app/repository"
	"github.com/subtrackhq/subtrack/internal/pkg/usercontext"
)

type notificationGroup struct {
	SubscriptionID       uint                  `json:"subscription_id"`
	SubscriptionName     string                `json:"subscription_name"`
	SubscriptionAmount   int                   `json:"subscription_amount"`
	SubscriptionCategory models.Category       `json:"subscription_category"`
	Notifications        []models.Notification `json:"notifications"`
	UnreadCount          int                   `json:"unread_count"`
	LastNotificationDate string                `json:"last_notification_date,omitempty"`
}

// HandleGroupedNotifications returns the user's notifications grouped per
// subscription, newest group first. Notifications of deleted subscriptions
// are skipped.
func HandleGroupedNotifications(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	repos := repository.GetGlobalRepositories()

	notifications, err := repos.Notification.GetByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load notifications")
	}

	subs, err := repos.Subscription.GetByUserID(userCtx.UserID, true)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscriptions")
	}
	subByID := make(map[uint]models.Subscription, len(subs))
	for _, sub := range subs {
		subByID[sub.ID] = sub
	}

	groupByID := map[uint]*notificationGroup{}
	order := []uint{}
	for _, n := range notifications {
		sub, ok := subByID[n.SubscriptionID]
		if !ok {
			continue
		}
		group, ok := groupByID[n.SubscriptionID]
		if !ok {
			group = &notificationGroup{
				SubscriptionID:       sub.ID,
				SubscriptionName:     sub.Name,
				SubscriptionAmount:   sub.CurrentAmount,
				SubscriptionCategory: sub.Category,
			}
			groupByID[n.SubscriptionID] = group
			order = append(order, n.SubscriptionID)
		}
		group.Notifications = append(group.Notifications, n)
		if !n.Read {
			group.UnreadCount++
		}
	}

	groups := make([]notificationGroup, 0, len(order))
	for _, id := range order {
		group := groupByID[id]
		// Source list is newest first, so the first entry is the latest.
		if len(group.Notifications) > 0 {
			group.LastNotificationDate = group.Notifications[0].CreatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		groups = append(groups, *group)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].LastNotificationDate > groups[j].LastNotificationDate
	})

	return c.JSON(groups)
}

// HandleSubscriptionNotifications lists a subscription's notifications with
// read/unread counts.
func HandleSubscriptionNotifications(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	sub, err := ownedSubscription(c, userCtx.UserID)
	if sub == nil {
		return err
	}

	notifications, err := repository.GetGlobalRepositories().Notification.GetBySubscriptionID(userCtx.UserID, sub.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load notifications")
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	return c.JSON(fiber.Map{
		"subscription": fiber.Map{
			"id":       sub.ID,
			"name":     sub.Name,
			"amount":   sub.CurrentAmount,
			"category": sub.Category,
		},
		"notifications": notifications,
		"total_count":   len(notifications),
		"unread_count":  unread,
	})
}

// HandleMarkNotificationsRead marks a subscription's notifications as read.
func HandleMarkNotificationsRead(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	sub, err := ownedSubscription(c, userCtx.UserID)
	if sub == nil {
		return err
	}

	count, err := repository.GetGlobalRepositories().Notification.MarkAllRead(userCtx.UserID, sub.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update notifications")
	}

	return c.JSON(fiber.Map{
		"message":           "All notifications marked as read",
		"subscription_id":   sub.ID,
		"subscription_name": sub.Name,
		"count":             count,
	})
}

// HandleUnreadCount returns the unread badge count for one subscription.
func HandleUnreadCount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	sub, err := ownedSubscription(c, userCtx.UserID)
	if sub == nil {
		return err
	}

	count, err := repository.GetGlobalRepositories().Notification.CountUnread(userCtx.UserID, sub.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to count notifications")
	}

	return c.JSON(fiber.Map{
		"subscription_id":   sub.ID,
		"subscription_name": sub.Name,
		"unread_count":      count,
	})
}
