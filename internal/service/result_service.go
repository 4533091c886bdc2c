package service

import (
	"context"
	"encoding/json"
	"fmt"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/repository"
	"prepaena_backend/internal/util"
	"strings"

	"gorm.io/datatypes"
)

const recentResultsLimit = 10

type ResultService struct {
	Repo *repository.ResultRepository
}

func NewResultService(repo *repository.ResultRepository) *ResultService {
	return &ResultService{Repo: repo}
}

// SaveResult implements ResultSaver. The review is frozen into the
// breakdown column so later edits of the question bank do not rewrite history.
func (s *ResultService) SaveResult(ctx context.Context, fs FinishedSession) (string, error) {
	review := quiz.Present(fs.Questions, fs.Answers, fs.Score)
	breakdown, err := json.Marshal(review)
	if err != nil {
		return "", fmt.Errorf("encode breakdown: %w", err)
	}

	result := &model.TestResult{
		UserID:          fs.UserID,
		SessionID:       fs.SessionID,
		Mode:            string(fs.Meta.Mode),
		Subjects:        strings.Join(fs.Meta.Subjects, ","),
		ExamLevel:       fs.Meta.ExamLevel,
		TestNumber:      fs.Meta.TestNumber,
		Correct:         fs.Score.Correct,
		Total:           fs.Score.Total,
		Percentage:      fs.Score.Percentage,
		FinishReason:    string(fs.Reason),
		DurationSeconds: int(fs.Duration.Seconds()),
		Breakdown:       datatypes.JSON(breakdown),
	}

	attempts := make([]model.UserAttempt, len(fs.Questions))
	for i, q := range fs.Questions {
		choice := quiz.Unanswered
		if i < len(fs.Answers) {
			choice = fs.Answers[i]
		}
		attempts[i] = model.UserAttempt{
			QuestionID: q.ID,
			Subject:    q.Subject,
			Choice:     int(choice),
			IsCorrect:  i < len(fs.Score.PerQuestion) && fs.Score.PerQuestion[i],
		}
	}

	if err := s.Repo.Save(ctx, result, attempts); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return result.ID, nil
}

type ResultDetail struct {
	model.TestResult
	Review []quiz.QuestionReview `json:"review"`
}

// Result returns a stored result of the user with its review decoded.
func (s *ResultService) Result(ctx context.Context, id, userID string) (*ResultDetail, error) {
	res, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, util.ErrResultNotFound
	}
	detail := &ResultDetail{TestResult: *res}
	if len(res.Breakdown) > 0 {
		if err := json.Unmarshal(res.Breakdown, &detail.Review); err != nil {
			return nil, fmt.Errorf("decode breakdown: %w", err)
		}
	}
	detail.Breakdown = nil
	return detail, nil
}

type Progress struct {
	Subjects []repository.SubjectStat `json:"subjects"`
	Modes    []repository.ModeStat    `json:"modes"`
	Recent   []model.TestResult       `json:"recent"`
}

func (s *ResultService) Progress(ctx context.Context, userID string) (*Progress, error) {
	subjects, err := s.Repo.SubjectStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("subject stats: %w", err)
	}
	modes, err := s.Repo.ModeStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("mode stats: %w", err)
	}
	recent, err := s.Repo.ListByUser(ctx, userID, recentResultsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	return &Progress{Subjects: subjects, Modes: modes, Recent: recent}, nil
}
