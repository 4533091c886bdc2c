package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UUIDBase is used by tables whose rows are referenced from the client.
// Rows are hard-deleted so the admin cascade leaves nothing behind.
// swagger:model
type UUIDBase struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

// All lists every table the service migrates.
func All() []interface{} {
	return []interface{}{
		&Question{},
		&Profile{},
		&Subscription{},
		&TestResult{},
		&UserAttempt{},
		&EmailLog{},
		&Visitor{},
	}
}
