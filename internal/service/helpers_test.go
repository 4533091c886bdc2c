package service

import (
	"context"
	"fmt"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/quiz"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func mustQuestion(t *testing.T, raw quiz.RawQuestion) quiz.Question {
	t.Helper()
	q, err := raw.Normalize()
	if err != nil {
		t.Fatalf("normalize %s: %v", raw.ID, err)
	}
	return q
}

// testPool builds n multiple choice questions per subject and difficulty,
// each keyed on option B.
func testPool(t *testing.T, subjects []string, perDifficulty int) []quiz.Question {
	t.Helper()
	var out []quiz.Question
	for _, subject := range subjects {
		for _, d := range quiz.Difficulties {
			for i := 0; i < perDifficulty; i++ {
				out = append(out, mustQuestion(t, quiz.RawQuestion{
					ID:         fmt.Sprintf("%s-%s-%d", subject, d, i),
					Prompt:     fmt.Sprintf("%s %s question %d", subject, d, i),
					Options:    []string{"w", "x", "y", "z"},
					Correct:    "B",
					Subject:    subject,
					Difficulty: string(d),
				}))
			}
		}
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeSaver struct {
	mu    sync.Mutex
	calls []FinishedSession
	err   error
}

func (f *fakeSaver) SaveResult(_ context.Context, fs FinishedSession) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, fs)
	return fmt.Sprintf("result-%d", len(f.calls)), nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSubscriptions map[string]bool

func (f fakeSubscriptions) IsPremium(_ context.Context, userID string) (bool, error) {
	return f[userID], nil
}
