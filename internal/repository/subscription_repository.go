package repository

import (
	"context"
	"errors"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

// FindActive returns the newest active subscription of the user.
func (r *SubscriptionRepository) FindActive(ctx context.Context, userID string) (*model.Subscription, error) {
	var s model.Subscription
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		Order("started_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Replace cancels any active subscription, stores the new one and queues
// the confirmation email in a single transaction.
func (r *SubscriptionRepository) Replace(ctx context.Context, sub *model.Subscription, mail *model.EmailLog) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ?", sub.UserID, model.SubscriptionActive).
			Update("status", model.SubscriptionCancelled).Error; err != nil {
			return err
		}
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		return tx.Create(mail).Error
	})
}

// Cancel marks the active subscriptions of the user cancelled.
func (r *SubscriptionRepository) Cancel(ctx context.Context, userID string, mail *model.EmailLog) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
			Update("status", model.SubscriptionCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrSubscriptionNotFound
		}
		return tx.Create(mail).Error
	})
}

// ExpireDue flips active subscriptions past their end date to expired.
func (r *SubscriptionRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.Subscription{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", model.SubscriptionActive, now).
		Update("status", model.SubscriptionExpired)
	return res.RowsAffected, res.Error
}
