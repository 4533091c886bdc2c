package service

import (
	"context"
	"errors"
	"fmt"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/repository"
	"prepaena_backend/internal/util"
	"prepaena_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

type SubscriptionService struct {
	Repo *repository.SubscriptionRepository
	now  func() time.Time
}

func NewSubscriptionService(repo *repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{Repo: repo, now: time.Now}
}

func (s *SubscriptionService) Plans() []model.Plan {
	return model.Plans
}

// SubscriptionStatus is what the client shows on the account page.
type SubscriptionStatus struct {
	Plan         model.PlanID        `json:"plan"`
	Premium      bool                `json:"premium"`
	Subscription *model.Subscription `json:"subscription,omitempty"`
}

func (s *SubscriptionService) Current(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := s.Repo.FindActive(ctx, userID)
	if errors.Is(err, util.ErrSubscriptionNotFound) {
		return &SubscriptionStatus{Plan: model.PlanFree}, nil
	}
	if err != nil {
		return nil, err
	}
	premium := sub.IsPremiumAt(s.now())
	status := &SubscriptionStatus{Plan: sub.Plan, Premium: premium, Subscription: sub}
	if !premium {
		status.Plan = model.PlanFree
	}
	return status, nil
}

// IsPremium implements SubscriptionChecker.
func (s *SubscriptionService) IsPremium(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	sub, err := s.Repo.FindActive(ctx, userID)
	if errors.Is(err, util.ErrSubscriptionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub.IsPremiumAt(s.now()), nil
}

// Subscribe replaces the user's active subscription with planID and queues
// the confirmation email. Payment is settled outside this service.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, email string, planID model.PlanID) (*model.Subscription, error) {
	plan, ok := model.FindPlan(planID)
	if !ok || !plan.Premium {
		return nil, util.ErrUnknownPlan
	}
	now := s.now()
	expires := now.AddDate(0, 0, plan.DurationDays)
	sub := &model.Subscription{
		UserID:    userID,
		Plan:      plan.ID,
		Status:    model.SubscriptionActive,
		StartedAt: now,
		ExpiresAt: &expires,
	}
	mail := &model.EmailLog{
		UserID:   userID,
		Email:    email,
		Template: model.EmailSubscriptionStarted,
		Status:   model.EmailStatusQueued,
	}
	if err := s.Repo.Replace(ctx, sub, mail); err != nil {
		return nil, fmt.Errorf("replace subscription: %w", err)
	}
	logger.Log.Info("Subscription started", zap.String("user", userID), zap.String("plan", string(plan.ID)))
	return sub, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, userID, email string) error {
	mail := &model.EmailLog{
		UserID:   userID,
		Email:    email,
		Template: model.EmailSubscriptionCancelled,
		Status:   model.EmailStatusQueued,
	}
	if err := s.Repo.Cancel(ctx, userID, mail); err != nil {
		return err
	}
	logger.Log.Info("Subscription cancelled", zap.String("user", userID))
	return nil
}

func (s *SubscriptionService) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.Repo.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("Expired subscriptions", zap.Int64("count", n))
	}
	return n, nil
}

// RunExpiry flips overdue subscriptions every interval until ctx is done.
func (s *SubscriptionService) RunExpiry(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpireDue(ctx); err != nil {
				logger.Log.Error("Subscription expiry failed", zap.Error(err))
			}
		}
	}
}
