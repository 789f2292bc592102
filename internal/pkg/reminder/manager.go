package reminder

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/subtrackhq/subtrack/app/models"
	"github.com/subtrackhq/subtrack/app/repository"
	"github.com/subtrackhq/subtrack/internal/pkg/billing"
	"github.com/subtrackhq/subtrack/internal/pkg/cache"
	"github.com/subtrackhq/subtrack/internal/pkg/database"
	"github.com/subtrackhq/subtrack/internal/pkg/env"
)

// Manager runs the periodic sweep that turns upcoming payment dates into
// user notifications
type Manager struct {
	sweepTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global reminder manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// Start starts the background sweep
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true

	interval := time.Duration(env.GetEnvInt("REMINDER_SWEEP_INTERVAL_MINUTES", 60)) * time.Minute
	m.sweepTicker = time.NewTicker(interval)
	m.wg.Add(1)
	go m.sweepWorker()

	log.Info("[Reminder Manager] Started payment reminder sweep")
}

// Stop stops the background sweep and waits for it to finish
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.sweepTicker != nil {
		m.sweepTicker.Stop()
	}
	close(m.stopCh)
	m.wg.Wait()
	m.running = false

	log.Info("[Reminder Manager] Stopped")
}

func (m *Manager) sweepWorker() {
	defer m.wg.Done()

	// Run once at startup so restarts do not delay reminders a full interval
	if err := m.Sweep(time.Now().UTC()); err != nil {
		log.Errorf("[Reminder Manager] Sweep failed: %v", err)
	}

	for {
		select {
		case <-m.sweepTicker.C:
			if err := m.Sweep(time.Now().UTC()); err != nil {
				log.Errorf("[Reminder Manager] Sweep failed: %v", err)
			}
		case <-m.stopCh:
			return
		}
	}
}

// Sweep creates a payment reminder for every active subscription whose next
// payment date falls inside its notify window. A Redis guard keeps the sweep
// idempotent: each subscription gets at most one reminder per payment date.
func (m *Manager) Sweep(now time.Time) error {
	today := billing.DateOnly(now)
	repo := repository.GetGlobalFactory().GetSubscriptionRepository()

	due, err := repo.GetDueForReminder(today)
	if err != nil {
		return fmt.Errorf("querying due subscriptions: %w", err)
	}

	for i := range due {
		sub := &due[i]
		if sub.NextPaymentDate == nil {
			continue
		}

		key := reminderKey(sub.ID, *sub.NextPaymentDate)
		created, err := cache.SetNX(key, 1, reminderGuardTTL(today, *sub.NextPaymentDate))
		if err != nil {
			log.Errorf("[Reminder Manager] Guard check failed for subscription %d: %v", sub.ID, err)
			continue
		}
		if !created {
			continue
		}

		notification := models.Notification{
			UserID:         sub.UserID,
			SubscriptionID: sub.ID,
			Type:           models.NotificationTypePaymentUpcoming,
			Title:          "Upcoming payment",
			Message:        reminderMessage(sub, today),
			ScheduledDate:  sub.NextPaymentDate,
		}
		if err := database.GetDB().Create(&notification).Error; err != nil {
			// Drop the guard so the next sweep retries this subscription
			_ = cache.Delete(key)
			log.Errorf("[Reminder Manager] Creating reminder for subscription %d failed: %v", sub.ID, err)
			continue
		}
	}

	return nil
}

func reminderKey(subscriptionID uint, paymentDate time.Time) string {
	return fmt.Sprintf("reminder:%d:%s", subscriptionID, paymentDate.Format("2006-01-02"))
}

// reminderGuardTTL keeps the dedupe key alive until the day after the payment
func reminderGuardTTL(today, paymentDate time.Time) time.Duration {
	ttl := paymentDate.Sub(today) + 48*time.Hour
	if ttl < 48*time.Hour {
		ttl = 48 * time.Hour
	}
	return ttl
}

func reminderMessage(sub *models.Subscription, today time.Time) string {
	days := sub.DaysRemaining(today)
	switch days {
	case 0:
		return fmt.Sprintf("%s renews today", sub.Name)
	case 1:
		return fmt.Sprintf("%s renews tomorrow", sub.Name)
	default:
		return fmt.Sprintf("%s renews in %d days", sub.Name, days)
	}
}
