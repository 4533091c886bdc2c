package model

import "time"

type Visitor struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	VisitorHash string    `gorm:"size:64;index" json:"visitorHash"`
	UserID      string    `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	Path        string    `gorm:"size:255" json:"path"`
	UserAgent   string    `gorm:"size:512" json:"userAgent"`
	VisitedOn   string    `gorm:"size:10;index" json:"visitedOn"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Visitor) TableName() string {
	return "visitors"
}

// DailyVisits is one row of the visitor statistics.
type DailyVisits struct {
	Day      string `json:"day"`
	Visits   int64  `json:"visits"`
	Visitors int64  `json:"visitors"`
}
