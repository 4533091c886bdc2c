package model

import "time"

const (
	EmailSubscriptionStarted   = "subscription_started"
	EmailSubscriptionCancelled = "subscription_cancelled"

	EmailStatusQueued = "queued"
)

type EmailLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index" json:"userId"`
	Email     string    `gorm:"size:255" json:"email"`
	Template  string    `gorm:"size:64" json:"template"`
	Status    string    `gorm:"size:16" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}
