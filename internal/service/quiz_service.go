package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"prepaena_backend/internal/config"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/util"
	"prepaena_backend/pkg/logger"
	"prepaena_backend/pkg/monitoring"
	"prepaena_backend/pkg/tracing"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const maxQuestionsPerSubject = 100

type SubscriptionChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

type CreateSessionReq struct {
	Mode         string         `json:"mode" binding:"required" example:"practice"`
	Subjects     []string       `json:"subjects" example:"culture_generale,anglais"`
	ExamLevel    string         `json:"examLevel" example:"CM"`
	Count        int            `json:"count" example:"10"`
	Distribution map[string]int `json:"distribution"`
	TestNumber   int            `json:"testNumber" example:"1"`
}

type QuizService struct {
	mu       sync.RWMutex
	cfg      config.QuizConfig
	source   *quiz.Source
	pool     quiz.Pool
	cache    *redis.Client
	sessions *SessionManager
	subs     SubscriptionChecker
	storage  *StorageService
	now      func() time.Time
}

func NewQuizService(cfg config.QuizConfig, pool quiz.Pool, cache *redis.Client, sessions *SessionManager, subs SubscriptionChecker, storage *StorageService) (*QuizService, error) {
	s := &QuizService{
		pool:     pool,
		cache:    cache,
		sessions: sessions,
		subs:     subs,
		storage:  storage,
		now:      time.Now,
	}
	if err := s.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyConfig swaps the quiz settings; live sessions keep their budgets.
func (s *QuizService) ApplyConfig(cfg config.QuizConfig) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.source = quiz.NewSource(s.pool, loc)
	s.mu.Unlock()
	s.sessions.SetTTL(cfg.SessionTTL)
	return nil
}

func (s *QuizService) settings() (config.QuizConfig, *quiz.Source) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.source
}

// Config returns the quiz settings currently in effect.
func (s *QuizService) Config() config.QuizConfig {
	cfg, _ := s.settings()
	return cfg
}

func (s *QuizService) Pool() quiz.Pool {
	return s.pool
}

func (s *QuizService) Sessions() *SessionManager {
	return s.sessions
}

func normalizeSubjects(subjects, fallback []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, subj := range subjects {
		subj = strings.ToLower(strings.TrimSpace(subj))
		if subj != "" && !seen[subj] {
			seen[subj] = true
			out = append(out, subj)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

func parseDistribution(raw map[string]int) (quiz.Distribution, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	d := make(quiz.Distribution, len(raw))
	for k, pct := range raw {
		diff, err := quiz.ParseDifficulty(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", quiz.ErrInvalidRequest, err)
		}
		d[diff] += pct
	}
	return d, d.Validate()
}

func (s *QuizService) selectQuestions(ctx context.Context, src *quiz.Source, req quiz.Request) ([]quiz.Question, error) {
	ctx, span := tracing.Start(ctx, "quiz.select",
		attribute.String("quiz.mode", string(req.Mode)),
		attribute.String("quiz.level", req.ExamLevel),
		attribute.Int("quiz.count", req.Count),
	)
	questions, err := src.Select(ctx, req)
	tracing.End(span, err)
	if errors.Is(err, quiz.ErrInsufficientQuestions) {
		monitoring.SelectionFailures.WithLabelValues(string(req.Mode), "insufficient").Inc()
	}
	return questions, err
}

// dailyCacheKey includes the per-subject count so a reloaded daily_count
// never serves a set of the old size.
func dailyCacheKey(date, level string, count int, subjects []string) string {
	return fmt.Sprintf("quiz:daily:%s:%s:%d:%s", date, level, count, strings.Join(subjects, ","))
}

// Daily returns the question set of the day. Every caller asking for the
// same level and subjects on the same exam-zone date gets the same list.
func (s *QuizService) Daily(ctx context.Context, level string, subjects []string) ([]quiz.Question, string, error) {
	cfg, src := s.settings()
	if level == "" {
		level = cfg.DefaultLevel
	}
	level = strings.ToUpper(level)
	subjects = normalizeSubjects(subjects, cfg.Subjects)
	date := src.DateKey(s.now())
	key := dailyCacheKey(date, level, cfg.DailyCount, subjects)

	if cached, ok := s.loadCachedDaily(ctx, key, level, subjects); ok {
		return cached, date, nil
	}

	questions, err := s.selectQuestions(ctx, src, quiz.Request{
		Mode:      quiz.ModeDaily,
		Subjects:  subjects,
		ExamLevel: level,
		Count:     cfg.DailyCount,
		Date:      s.now(),
	})
	if err != nil {
		return nil, date, err
	}
	s.storeCachedDaily(ctx, key, questions, cfg.DailyCacheTTL)
	return questions, date, nil
}

// loadCachedDaily resolves cached ids against the current pool. Any miss,
// including a redis outage or a deleted question, falls back to selection.
func (s *QuizService) loadCachedDaily(ctx context.Context, key, level string, subjects []string) ([]quiz.Question, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("Daily cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || len(ids) == 0 {
		return nil, false
	}
	byID := map[string]quiz.Question{}
	for _, subject := range subjects {
		qs, err := s.pool.Questions(ctx, quiz.Filter{Subject: subject, ExamLevel: level, Mode: quiz.ModeDaily})
		if err != nil {
			return nil, false
		}
		for _, q := range qs {
			byID[q.ID] = q
		}
	}
	out := make([]quiz.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, false
		}
		out = append(out, q)
	}
	return out, true
}

func (s *QuizService) storeCachedDaily(ctx context.Context, key string, questions []quiz.Question, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	payload, _ := json.Marshal(ids)
	if err := s.cache.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Log.Warn("Daily cache write failed", zap.Error(err))
	}
}

func (s *QuizService) requirePremium(ctx context.Context, userID string) error {
	if userID == "" {
		return util.ErrLoginRequired
	}
	if s.subs == nil {
		return util.ErrPremiumRequired
	}
	ok, err := s.subs.IsPremium(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrPremiumRequired
	}
	return nil
}

// CreateSession selects the questions and registers a session in intro.
func (s *QuizService) CreateSession(ctx context.Context, userID string, req CreateSessionReq) (*SessionView, error) {
	cfg, src := s.settings()
	mode, err := quiz.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	level := strings.ToUpper(strings.TrimSpace(req.ExamLevel))
	if level == "" {
		level = cfg.DefaultLevel
	}
	subjects := normalizeSubjects(req.Subjects, cfg.Subjects)
	meta := SessionMeta{Mode: mode, Subjects: subjects, ExamLevel: level}

	var questions []quiz.Question
	switch mode {
	case quiz.ModeDaily:
		questions, meta.DateKey, err = s.Daily(ctx, level, subjects)
	case quiz.ModePractice:
		if req.TestNumber <= 0 {
			return nil, fmt.Errorf("%w: practice tests are numbered from 1", quiz.ErrInvalidRequest)
		}
		if req.TestNumber > cfg.FreePracticeTests {
			if err := s.requirePremium(ctx, userID); err != nil {
				return nil, err
			}
		}
		meta.TestNumber = req.TestNumber
		questions, err = s.selectQuestions(ctx, src, quiz.Request{
			Mode:         mode,
			Subjects:     subjects,
			ExamLevel:    level,
			Count:        cfg.PracticeCount,
			Distribution: configDistribution(cfg),
			TestNumber:   req.TestNumber,
		})
	case quiz.ModeMock:
		if err := s.requirePremium(ctx, userID); err != nil {
			return nil, err
		}
		count := req.Count
		if count == 0 {
			count = cfg.MockCount
		}
		if count < 0 || count > maxQuestionsPerSubject {
			return nil, fmt.Errorf("%w: count must be between 1 and %d", quiz.ErrInvalidRequest, maxQuestionsPerSubject)
		}
		dist, derr := parseDistribution(req.Distribution)
		if derr != nil {
			return nil, derr
		}
		if dist == nil {
			dist = configDistribution(cfg)
		}
		questions, err = s.selectQuestions(ctx, src, quiz.Request{
			Mode:         mode,
			Subjects:     subjects,
			ExamLevel:    level,
			Count:        count,
			Distribution: dist,
		})
	}
	if err != nil {
		return nil, err
	}

	view, err := s.sessions.Create(userID, meta, questions, cfg.Budget(string(mode), len(questions)))
	if err != nil {
		return nil, err
	}
	logger.Log.Debug("Quiz session created",
		zap.String("session", view.ID),
		zap.String("mode", string(mode)),
		zap.Int("questions", view.Total),
	)
	return view, nil
}

func configDistribution(cfg config.QuizConfig) quiz.Distribution {
	d, err := parseDistribution(cfg.Distribution)
	if err != nil {
		return nil
	}
	return d
}

// Export archives a finished session of the user to object storage.
func (s *QuizService) Export(ctx context.Context, id, userID string) (string, error) {
	if userID == "" {
		return "", util.ErrLoginRequired
	}
	if s.storage == nil {
		return "", errors.New("export storage is not configured")
	}
	view, err := s.sessions.Snapshot(ctx, id, userID)
	if err != nil {
		return "", err
	}
	return s.storage.ExportSession(ctx, userID, view)
}
