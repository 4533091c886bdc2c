package repository

import (
	"context"
	"fmt"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) scope(ctx context.Context, f quiz.Filter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&model.Question{})
	if f.Subject != "" {
		q = q.Where("LOWER(subject) = ?", strings.ToLower(f.Subject))
	}
	if f.ExamLevel != "" {
		q = q.Where("(exam_level = ? OR exam_level = '')", strings.ToUpper(f.ExamLevel))
	}
	if f.Mode != "" {
		q = q.Where("(test_type = ? OR test_type = '' OR test_type IS NULL)", string(f.Mode))
	}
	return q
}

// Questions implements quiz.Pool. Rows whose key cannot be normalized are
// skipped and logged so one bad row does not take a whole quiz down.
func (r *QuestionRepository) Questions(ctx context.Context, f quiz.Filter) ([]quiz.Question, error) {
	var rows []model.Question
	if err := r.scope(ctx, f).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	out := make([]quiz.Question, 0, len(rows))
	for i := range rows {
		q, err := rows[i].ToQuiz()
		if err != nil {
			logger.Log.Warn("Skipping invalid question", zap.Uint("id", rows[i].ID), zap.Error(err))
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *QuestionRepository) List(ctx context.Context, f quiz.Filter, page, limit int) ([]model.Question, int64, error) {
	var total int64
	if err := r.scope(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []model.Question
	err := r.scope(ctx, f).Order("id").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (r *QuestionRepository) CreateBatch(ctx context.Context, rows []model.Question) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
}

// PoolCount is the number of questions per subject and difficulty.
type PoolCount struct {
	Subject    string `json:"subject"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

func (r *QuestionRepository) CountByPool(ctx context.Context, examLevel string, mode quiz.Mode) ([]PoolCount, error) {
	var counts []PoolCount
	err := r.scope(ctx, quiz.Filter{ExamLevel: examLevel, Mode: mode}).
		Select("subject, difficulty, COUNT(*) AS count").
		Group("subject, difficulty").
		Order("subject, difficulty").
		Scan(&counts).Error
	return counts, err
}
