package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/repository"
	"prepaena_backend/internal/util"
	"prepaena_backend/pkg/logger"

	"go.uber.org/zap"
)

const maxStoredOptions = 4

type QuestionAdminService struct {
	Repo     *repository.QuestionRepository
	Practice *PracticeTestService
}

func NewQuestionAdminService(repo *repository.QuestionRepository, practice *PracticeTestService) *QuestionAdminService {
	return &QuestionAdminService{Repo: repo, Practice: practice}
}

// QuestionPage is one page of the bank plus the pool sizes per subject.
type QuestionPage struct {
	util.PageResponse
	Pools []repository.PoolCount `json:"pools,omitempty"`
}

func (s *QuestionAdminService) List(ctx context.Context, f quiz.Filter, page, limit int) (*QuestionPage, error) {
	rows, total, err := s.Repo.List(ctx, f, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	pools, err := s.Repo.CountByPool(ctx, f.ExamLevel, f.Mode)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	return &QuestionPage{
		PageResponse: util.PageResponse{List: rows, Total: total, Page: page, Limit: limit},
		Pools:        pools,
	}, nil
}

// Import validates a YAML question document and stores every entry, or
// none when one entry is invalid.
func (s *QuestionAdminService) Import(ctx context.Context, r io.Reader) (int, error) {
	body, err := io.ReadAll(io.LimitReader(r, util.MaxImportBytes+1))
	if err != nil {
		return 0, err
	}
	if len(body) == 0 {
		return 0, fmt.Errorf("%w: empty document", quiz.ErrInvalidQuestion)
	}
	if len(body) > util.MaxImportBytes {
		return 0, fmt.Errorf("%w: document larger than %d bytes", quiz.ErrInvalidQuestion, util.MaxImportBytes)
	}
	if _, err := util.ValidateMimeType(bytes.NewReader(body), util.TextUploadTypes); err != nil {
		return 0, fmt.Errorf("%w: %v", quiz.ErrInvalidQuestion, err)
	}

	questions, err := quiz.DecodeBank(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", quiz.ErrInvalidQuestion, err)
	}
	rows := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if len(q.Options) > maxStoredOptions {
			return 0, fmt.Errorf("%w: question %s has more than %d options", quiz.ErrInvalidQuestion, q.ID, maxStoredOptions)
		}
		if q.Subject == "" {
			return 0, fmt.Errorf("%w: question %s has no subject", quiz.ErrInvalidQuestion, q.ID)
		}
		rows = append(rows, model.QuestionFromQuiz(q))
	}
	if err := s.Repo.CreateBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("store questions: %w", err)
	}
	if s.Practice != nil {
		s.Practice.ClearCache()
	}
	logger.Log.Info("Questions imported", zap.Int("count", len(rows)))
	return len(rows), nil
}
