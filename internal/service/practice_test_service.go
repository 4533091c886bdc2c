package service

import (
	"context"
	"fmt"
	"prepaena_backend/internal/quiz"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// PracticeTest describes one numbered practice test of a level.
type PracticeTest struct {
	Number    int      `json:"number"`
	Free      bool     `json:"free"`
	Questions int      `json:"questions"`
	Subjects  []string `json:"subjects"`
	Available bool     `json:"available"`
}

// PracticeTestService computes the practice test catalogue from the pool.
// Results are memoized per level until ClearCache is called.
type PracticeTestService struct {
	quiz  *QuizService
	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]PracticeTest
}

func NewPracticeTestService(q *QuizService) *PracticeTestService {
	return &PracticeTestService{quiz: q, cache: make(map[string][]PracticeTest)}
}

func (s *PracticeTestService) List(ctx context.Context, level string) ([]PracticeTest, error) {
	cfg := s.quiz.Config()
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "" {
		level = cfg.DefaultLevel
	}

	s.mu.RLock()
	cached, ok := s.cache[level]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(level, func() (interface{}, error) {
		s.mu.RLock()
		cached, ok := s.cache[level]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}
		tests, err := s.compute(ctx, level)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[level] = tests
		s.mu.Unlock()
		return tests, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]PracticeTest), nil
}

// compute marks a test available when every subject still has enough
// unused questions for it, given that tests draw disjoint sets. With a
// distribution each difficulty bucket is windowed on its own, so the
// scarcest bucket bounds the number of tests.
func (s *PracticeTestService) compute(ctx context.Context, level string) ([]PracticeTest, error) {
	cfg := s.quiz.Config()
	pool := s.quiz.Pool()

	var need map[quiz.Difficulty]int
	if dist := configDistribution(cfg); len(dist) > 0 {
		need = dist.Counts(cfg.PracticeCount)
	}

	capacity := -1
	for _, subject := range cfg.Subjects {
		qs, err := pool.Questions(ctx, quiz.Filter{Subject: subject, ExamLevel: level, Mode: quiz.ModePractice})
		if err != nil {
			return nil, fmt.Errorf("load practice pool: %w", err)
		}
		if n := practiceCapacity(qs, cfg.PracticeCount, need); capacity < 0 || n < capacity {
			capacity = n
		}
	}
	if capacity < 0 {
		capacity = 0
	}

	tests := make([]PracticeTest, cfg.PracticeTests)
	for i := range tests {
		number := i + 1
		tests[i] = PracticeTest{
			Number:    number,
			Free:      number <= cfg.FreePracticeTests,
			Questions: cfg.PracticeCount * len(cfg.Subjects),
			Subjects:  append([]string(nil), cfg.Subjects...),
			Available: number <= capacity,
		}
	}
	return tests, nil
}

// practiceCapacity is how many disjoint tests of count questions the
// subject pool yields, per difficulty when need is set.
func practiceCapacity(qs []quiz.Question, count int, need map[quiz.Difficulty]int) int {
	if len(need) == 0 {
		return len(qs) / count
	}
	buckets := make(map[quiz.Difficulty]int, len(quiz.Difficulties))
	for _, q := range qs {
		buckets[q.Difficulty]++
	}
	capacity := -1
	for _, d := range quiz.Difficulties {
		k := need[d]
		if k == 0 {
			continue
		}
		if n := buckets[d] / k; capacity < 0 || n < capacity {
			capacity = n
		}
	}
	if capacity < 0 {
		return len(qs) / count
	}
	return capacity
}

func (s *PracticeTestService) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string][]PracticeTest)
	s.mu.Unlock()
}
