package repository

import (
	"time"

	"github.com/subtrackhq/subtrack/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription in the database
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByID retrieves a subscription by its ID
func (r *subscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetOwnedByID retrieves a subscription scoped to its owner. Foreign IDs
// surface as gorm.ErrRecordNotFound so ownership is never revealed.
func (r *subscriptionRepository) GetOwnedByID(id uint, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByName retrieves a subscription by its globally unique name
func (r *subscriptionRepository) GetByName(name string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("name = ?", name).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByUserID lists a user's subscriptions ordered by upcoming payment date.
// Archived subscriptions are excluded unless includeArchived is set.
func (r *subscriptionRepository) GetByUserID(userID uint, includeArchived bool) ([]models.Subscription, error) {
	var subs []models.Subscription
	query := r.db.Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("archived_date IS NULL")
	}
	err := query.Order("next_payment_date ASC").Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// GetByUserIDAndCategory lists all of a user's subscriptions in one category,
// archived ones included (analytics keeps archived spend history).
func (r *subscriptionRepository) GetByUserIDAndCategory(userID uint, category models.Category) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ? AND category = ?", userID, category).Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// GetDueForReminder finds active subscriptions with notifications enabled
// whose next payment date is at most notify_days days away
func (r *subscriptionRepository) GetDueForReminder(today time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.
		Where("archived_date IS NULL AND notifications_enabled = ? AND next_payment_date IS NOT NULL", true).
		Where("next_payment_date >= ?", today).
		Where("next_payment_date <= DATE_ADD(?, INTERVAL notify_days DAY)", today).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Update updates an existing subscription
func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// Delete removes a subscription; its price history cascades
func (r *subscriptionRepository) Delete(id uint) error {
	return r.db.Delete(&models.Subscription{}, id).Error
}

// CountByUserID returns the number of subscriptions owned by a user
func (r *subscriptionRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
