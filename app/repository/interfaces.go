package repository

import (
	"time"

	"github.com/subtrackhq/subtrack/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
}

// SubscriptionRepository defines the interface for subscription-related database operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	// GetOwnedByID returns the subscription only when it belongs to userID;
	// a foreign subscription reads as not found.
	GetOwnedByID(id uint, userID uint) (*models.Subscription, error)
	GetByName(name string) (*models.Subscription, error)
	GetByUserID(userID uint, includeArchived bool) ([]models.Subscription, error)
	GetByUserIDAndCategory(userID uint, category models.Category) ([]models.Subscription, error)
	// GetDueForReminder returns active subscriptions whose next payment date
	// falls within their notify window as of the given day.
	GetDueForReminder(today time.Time) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
	Delete(id uint) error
	CountByUserID(userID uint) (int64, error)
}

// PriceHistoryRepository defines the interface for price ledger operations
type PriceHistoryRepository interface {
	Create(entry *models.PriceHistory) error
	GetBySubscriptionID(subscriptionID uint) ([]models.PriceHistory, error)
	GetBySubscriptionIDs(subscriptionIDs []uint) ([]models.PriceHistory, error)
	GetStartingOnOrAfter(subscriptionIDs []uint, start time.Time) ([]models.PriceHistory, error)
	Update(entry *models.PriceHistory) error
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByUserID(userID uint) ([]models.Notification, error)
	GetBySubscriptionID(userID uint, subscriptionID uint) ([]models.Notification, error)
	CountUnread(userID uint, subscriptionID uint) (int64, error)
	MarkAllRead(userID uint, subscriptionID uint) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	PriceHistory PriceHistoryRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Subscription: NewSubscriptionRepository(db),
		PriceHistory: NewPriceHistoryRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
