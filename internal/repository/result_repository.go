package repository

import (
	"context"
	"errors"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/util"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

// Save stores the result and its attempts atomically.
func (r *ResultRepository) Save(ctx context.Context, result *model.TestResult, attempts []model.UserAttempt) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		for i := range attempts {
			attempts[i].TestResultID = result.ID
			attempts[i].UserID = result.UserID
		}
		if len(attempts) == 0 {
			return nil
		}
		return tx.CreateInBatches(attempts, 100).Error
	})
}

func (r *ResultRepository) FindByID(ctx context.Context, id string) (*model.TestResult, error) {
	var res model.TestResult
	err := r.DB.WithContext(ctx).First(&res, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResultRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.TestResult, error) {
	var rows []model.TestResult
	err := r.DB.WithContext(ctx).
		Omit("breakdown").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// SubjectStat aggregates a user's attempts for one subject.
type SubjectStat struct {
	Subject  string `json:"subject"`
	Answered int    `json:"answered"`
	Correct  int    `json:"correct"`
}

func (r *ResultRepository) SubjectStats(ctx context.Context, userID string) ([]SubjectStat, error) {
	var stats []SubjectStat
	err := r.DB.WithContext(ctx).Model(&model.UserAttempt{}).
		Select("subject, COUNT(*) AS answered, SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) AS correct").
		Where("user_id = ?", userID).
		Group("subject").
		Order("subject").
		Scan(&stats).Error
	return stats, err
}

// ModeStat aggregates a user's results for one quiz mode.
type ModeStat struct {
	Mode    string  `json:"mode"`
	Taken   int     `json:"taken"`
	Average float64 `json:"average"`
	Best    int     `json:"best"`
}

func (r *ResultRepository) ModeStats(ctx context.Context, userID string) ([]ModeStat, error) {
	var stats []ModeStat
	err := r.DB.WithContext(ctx).Model(&model.TestResult{}).
		Select("mode, COUNT(*) AS taken, AVG(percentage) AS average, MAX(percentage) AS best").
		Where("user_id = ?", userID).
		Group("mode").
		Order("mode").
		Scan(&stats).Error
	return stats, err
}
