package repository

import (
	"time"

	"github.com/subtrackhq/subtrack/app/models"
	"gorm.io/gorm"
)

// priceHistoryRepository implements the PriceHistoryRepository interface
type priceHistoryRepository struct {
	db *gorm.DB
}

// NewPriceHistoryRepository creates a new price history repository instance
func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

// Create appends a new ledger entry
func (r *priceHistoryRepository) Create(entry *models.PriceHistory) error {
	return r.db.Create(entry).Error
}

// GetBySubscriptionID returns a subscription's ledger, newest start date first
func (r *priceHistoryRepository) GetBySubscriptionID(subscriptionID uint) ([]models.PriceHistory, error) {
	var entries []models.PriceHistory
	err := r.db.Where("subscription_id = ?", subscriptionID).
		Order("start_date DESC, created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetBySubscriptionIDs returns the combined ledgers of several subscriptions
func (r *priceHistoryRepository) GetBySubscriptionIDs(subscriptionIDs []uint) ([]models.PriceHistory, error) {
	if len(subscriptionIDs) == 0 {
		return nil, nil
	}
	var entries []models.PriceHistory
	err := r.db.Where("subscription_id IN ?", subscriptionIDs).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetStartingOnOrAfter returns ledger entries whose interval starts on or
// after the given date, across several subscriptions
func (r *priceHistoryRepository) GetStartingOnOrAfter(subscriptionIDs []uint, start time.Time) ([]models.PriceHistory, error) {
	if len(subscriptionIDs) == 0 {
		return nil, nil
	}
	var entries []models.PriceHistory
	err := r.db.Where("subscription_id IN ? AND start_date >= ?", subscriptionIDs, start).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Update rewrites an existing ledger entry (close or amend)
func (r *priceHistoryRepository) Update(entry *models.PriceHistory) error {
	return r.db.Save(entry).Error
}
