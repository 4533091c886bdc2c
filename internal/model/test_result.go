package model

import "gorm.io/datatypes"

// TestResult 存储一次已完成的测验
// swagger:model TestResult
type TestResult struct {
	UUIDBase
	UserID          string         `gorm:"type:varchar(36);index;not null" json:"userId"`
	SessionID       string         `gorm:"type:varchar(36);uniqueIndex" json:"sessionId"`
	Mode            string         `gorm:"size:16;not null" json:"mode"`
	Subjects        string         `gorm:"size:255" json:"subjects"`
	ExamLevel       string         `gorm:"size:16" json:"examLevel"`
	TestNumber      int            `json:"testNumber"`
	Correct         int            `json:"correct"`
	Total           int            `json:"total"`
	Percentage      int            `json:"percentage"`
	FinishReason    string         `gorm:"size:16" json:"finishReason"`
	DurationSeconds int            `json:"durationSeconds"`
	Breakdown       datatypes.JSON `json:"breakdown" swaggertype:"object"`
}

func (TestResult) TableName() string {
	return "test_results"
}

// UserAttempt is one answered (or skipped) question of a result.
type UserAttempt struct {
	BaseModel
	UserID       string `gorm:"type:varchar(36);index;not null" json:"userId"`
	TestResultID string `gorm:"type:varchar(36);index;not null" json:"testResultId"`
	QuestionID   string `gorm:"size:64;not null" json:"questionId"`
	Subject      string `gorm:"size:64" json:"subject"`
	Choice       int    `json:"choice"`
	IsCorrect    bool   `json:"isCorrect"`
}

func (UserAttempt) TableName() string {
	return "user_attempts"
}
