package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeCreated         = "subscription_created"
	NotificationTypeArchived        = "subscription_archived"
	NotificationTypeRenewed         = "subscription_renewed"
	NotificationTypePaymentUpcoming = "payment_upcoming"
)

// Notification is a message about a subscription lifecycle event.
type Notification struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	SubscriptionID uint       `gorm:"not null;index" json:"subscription_id"`
	Type           string     `gorm:"type:varchar(50);not null" json:"type"`
	Title          string     `gorm:"type:varchar(200);not null" json:"title"`
	Message        string     `gorm:"type:text;not null" json:"message"`
	Read           bool       `gorm:"default:false" json:"read"`
	ScheduledDate  *time.Time `gorm:"type:timestamp;default:null" json:"scheduled_date,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// MarkAsRead marks a notification as read.
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.Read = true
	return db.Model(n).Update("read", true).Error
}

// CreateNotification persists a new notification for a subscription event.
func CreateNotification(db *gorm.DB, userID uint, subscriptionID uint, notificationType string, title string, message string) error {
	notification := Notification{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		Type:           notificationType,
		Title:          title,
		Message:        message,
		Read:           false,
	}

	return db.Create(&notification).Error
}
