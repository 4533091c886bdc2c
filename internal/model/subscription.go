package model

import "time"

type PlanID string

const (
	PlanFree           PlanID = "free"
	PlanPremiumMonthly PlanID = "premium_monthly"
	PlanPremiumYearly  PlanID = "premium_yearly"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Plan describes an offer shown on the pricing page. Prices are in FCFA.
type Plan struct {
	ID           PlanID   `json:"id"`
	Name         string   `json:"name"`
	PriceXOF     int      `json:"priceXof"`
	DurationDays int      `json:"durationDays"`
	Premium      bool     `json:"premium"`
	Features     []string `json:"features"`
}

var Plans = []Plan{
	{
		ID:       PlanFree,
		Name:     "Gratuit",
		Features: []string{"Quiz du jour", "2 tests d'entraînement"},
	},
	{
		ID:           PlanPremiumMonthly,
		Name:         "Premium mensuel",
		PriceXOF:     5000,
		DurationDays: 30,
		Premium:      true,
		Features:     []string{"Quiz du jour", "Tous les tests d'entraînement", "Examens blancs", "Suivi de progression"},
	},
	{
		ID:           PlanPremiumYearly,
		Name:         "Premium annuel",
		PriceXOF:     45000,
		DurationDays: 365,
		Premium:      true,
		Features:     []string{"Quiz du jour", "Tous les tests d'entraînement", "Examens blancs", "Suivi de progression"},
	},
}

func FindPlan(id PlanID) (Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// swagger:model Subscription
type Subscription struct {
	UUIDBase
	UserID    string             `gorm:"type:varchar(36);index;not null" json:"userId"`
	Plan      PlanID             `gorm:"size:32;not null" json:"plan"`
	Status    SubscriptionStatus `gorm:"size:16;not null" json:"status"`
	StartedAt time.Time          `json:"startedAt"`
	ExpiresAt *time.Time         `json:"expiresAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsPremiumAt reports whether the subscription grants premium access at t.
func (s *Subscription) IsPremiumAt(t time.Time) bool {
	if s == nil || s.Status != SubscriptionActive {
		return false
	}
	plan, ok := FindPlan(s.Plan)
	if !ok || !plan.Premium {
		return false
	}
	return s.ExpiresAt == nil || t.Before(*s.ExpiresAt)
}
