package repository

import (
	"github.com/subtrackhq/subtrack/app/models"
	"gorm.io/gorm"
)

// notificationRepository implements the NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create persists a new notification
func (r *notificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetByUserID returns all of a user's notifications, newest first
func (r *notificationRepository) GetByUserID(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// GetBySubscriptionID returns a user's notifications for one subscription, newest first
func (r *notificationRepository) GetBySubscriptionID(userID uint, subscriptionID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("user_id = ? AND subscription_id = ?", userID, subscriptionID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread counts unread notifications for one subscription
func (r *notificationRepository) CountUnread(userID uint, subscriptionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND subscription_id = ? AND `read` = ?", userID, subscriptionID, false).
		Count(&count).Error
	return count, err
}

// MarkAllRead marks a subscription's unread notifications as read and returns
// the number of affected rows
func (r *notificationRepository) MarkAllRead(userID uint, subscriptionID uint) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND subscription_id = ? AND `read` = ?", userID, subscriptionID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
