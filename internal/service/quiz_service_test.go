package service

import (
	"context"
	"errors"
	"prepaena_backend/internal/config"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/util"
	"testing"
	"time"
)

func testQuizConfig() config.QuizConfig {
	return config.QuizConfig{
		Source:            config.SourceStatic,
		Timezone:          "UTC",
		DefaultLevel:      "CM",
		Subjects:          []string{"anglais", "logique"},
		DailyCount:        3,
		PracticeCount:     3,
		MockCount:         3,
		PracticeTests:     4,
		FreePracticeTests: 2,
		TimeBudget:        config.TimeBudgetConfig{Daily: 300, Practice: 600, Mock: 900},
		SessionTTL:        time.Hour,
	}
}

func newTestQuizService(t *testing.T, subs SubscriptionChecker) (*QuizService, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	bank := quiz.NewBank(testPool(t, []string{"anglais", "logique"}, 3))
	sessions := NewSessionManager(nil, time.Hour)
	sessions.now = clock.Now
	s, err := NewQuizService(testQuizConfig(), bank, nil, sessions, subs, nil)
	if err != nil {
		t.Fatalf("NewQuizService: %v", err)
	}
	s.now = clock.Now
	return s, clock
}

func questionIDs(views []quiz.QuestionView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.QuestionID
	}
	return ids
}

func TestDailyIsStablePerDate(t *testing.T) {
	s, clock := newTestQuizService(t, nil)
	ctx := context.Background()

	first, date, err := s.Daily(ctx, "cm", nil)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if date != "2026-03-02" {
		t.Errorf("date = %s", date)
	}
	if len(first) != 6 {
		t.Fatalf("expected 3 questions for each of 2 subjects, got %d", len(first))
	}
	again, _, _ := s.Daily(ctx, "CM", []string{"anglais", "logique"})
	for i := range first {
		if first[i].ID != again[i].ID {
			t.Fatalf("daily selection changed within the day at %d: %s vs %s", i, first[i].ID, again[i].ID)
		}
	}

	clock.Advance(24 * time.Hour)
	_, next, _ := s.Daily(ctx, "CM", nil)
	if next != "2026-03-03" {
		t.Errorf("next date = %s", next)
	}
}

// TestDailyFollowsReloadedCount verifies a new daily_count yields a new cache entry and size.
func TestDailyFollowsReloadedCount(t *testing.T) {
	subjects := []string{"anglais", "logique"}
	if dailyCacheKey("2026-03-02", "CM", 3, subjects) == dailyCacheKey("2026-03-02", "CM", 2, subjects) {
		t.Fatal("cache key must change with the daily count")
	}

	s, _ := newTestQuizService(t, nil)
	ctx := context.Background()
	cfg := s.Config()
	cfg.DailyCount = 2
	if err := s.ApplyConfig(cfg); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	qs, _, err := s.Daily(ctx, "CM", nil)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if len(qs) != 4 {
		t.Fatalf("expected 2 questions for each of 2 subjects, got %d", len(qs))
	}
}

func TestCreateSessionBudgetsPerMode(t *testing.T) {
	s, _ := newTestQuizService(t, fakeSubscriptions{"premium": true})
	ctx := context.Background()

	daily, err := s.CreateSession(ctx, "", CreateSessionReq{Mode: "daily"})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if daily.Budget != 300 || daily.Meta.DateKey == "" {
		t.Errorf("daily view: budget %d, date %q", daily.Budget, daily.Meta.DateKey)
	}
	for _, q := range daily.Questions {
		if len(q.Options) == 0 {
			t.Fatalf("question %s has no options", q.QuestionID)
		}
	}

	mock, err := s.CreateSession(ctx, "premium", CreateSessionReq{Mode: "mock", Subjects: []string{"logique"}, Count: 2})
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if mock.Budget != 900 || mock.Total != 2 {
		t.Errorf("mock view: budget %d, total %d", mock.Budget, mock.Total)
	}
}

func TestCreateSessionPremiumGating(t *testing.T) {
	s, _ := newTestQuizService(t, fakeSubscriptions{"premium": true})
	ctx := context.Background()

	if _, err := s.CreateSession(ctx, "", CreateSessionReq{Mode: "practice", TestNumber: 1}); err != nil {
		t.Fatalf("free practice test should be open: %v", err)
	}
	if _, err := s.CreateSession(ctx, "", CreateSessionReq{Mode: "practice", TestNumber: 3}); !errors.Is(err, util.ErrLoginRequired) {
		t.Errorf("anonymous premium test: got %v", err)
	}
	if _, err := s.CreateSession(ctx, "free-user", CreateSessionReq{Mode: "practice", TestNumber: 3}); !errors.Is(err, util.ErrPremiumRequired) {
		t.Errorf("free user premium test: got %v", err)
	}
	if _, err := s.CreateSession(ctx, "free-user", CreateSessionReq{Mode: "mock"}); !errors.Is(err, util.ErrPremiumRequired) {
		t.Errorf("free user mock: got %v", err)
	}
	if _, err := s.CreateSession(ctx, "premium", CreateSessionReq{Mode: "practice", TestNumber: 3}); err != nil {
		t.Errorf("premium user: %v", err)
	}
}

func TestCreateSessionRejectsBadRequests(t *testing.T) {
	s, _ := newTestQuizService(t, fakeSubscriptions{"premium": true})
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateSessionReq
		want error
	}{
		{"unknown mode", CreateSessionReq{Mode: "exam"}, quiz.ErrInvalidRequest},
		{"practice without number", CreateSessionReq{Mode: "practice"}, quiz.ErrInvalidRequest},
		{"count too large", CreateSessionReq{Mode: "mock", Count: 1000}, quiz.ErrInvalidRequest},
		{"bad distribution", CreateSessionReq{Mode: "mock", Distribution: map[string]int{"easy": 50}}, quiz.ErrInvalidRequest},
		{"not enough questions", CreateSessionReq{Mode: "mock", Count: 10}, quiz.ErrInsufficientQuestions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateSession(ctx, "premium", tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	var insufficient *quiz.InsufficientQuestionsError
	_, err := s.CreateSession(ctx, "premium", CreateSessionReq{Mode: "mock", Count: 10})
	if !errors.As(err, &insufficient) || insufficient.Available != 9 {
		t.Fatalf("expected pool size in error, got %v", err)
	}
}

func TestPracticeTestsAreDisjoint(t *testing.T) {
	s, _ := newTestQuizService(t, fakeSubscriptions{"premium": true})
	ctx := context.Background()

	seen := map[string]int{}
	for n := 1; n <= 3; n++ {
		view, err := s.CreateSession(ctx, "premium", CreateSessionReq{Mode: "practice", TestNumber: n, Subjects: []string{"anglais"}})
		if err != nil {
			t.Fatalf("practice %d: %v", n, err)
		}
		for _, id := range questionIDs(view.Questions) {
			if prev, ok := seen[id]; ok {
				t.Fatalf("question %s used by tests %d and %d", id, prev, n)
			}
			seen[id] = n
		}
	}
}

func TestApplyConfigKeepsLiveSessions(t *testing.T) {
	s, _ := newTestQuizService(t, nil)
	ctx := context.Background()

	view, err := s.CreateSession(ctx, "", CreateSessionReq{Mode: "daily"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	cfg := testQuizConfig()
	cfg.TimeBudget.Daily = 120
	if err := s.ApplyConfig(cfg); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}

	live, _ := s.Sessions().Get(ctx, view.ID, "")
	if live.Budget != 300 {
		t.Errorf("live session budget changed to %d", live.Budget)
	}
	fresh, _ := s.CreateSession(ctx, "", CreateSessionReq{Mode: "daily"})
	if fresh.Budget != 120 {
		t.Errorf("new session budget = %d, want 120", fresh.Budget)
	}

	cfg.Timezone = "Nowhere/Invalid"
	if err := s.ApplyConfig(cfg); err == nil {
		t.Errorf("invalid timezone accepted")
	}
}

func TestExportRequiresLogin(t *testing.T) {
	s, _ := newTestQuizService(t, nil)
	if _, err := s.Export(context.Background(), "id", ""); !errors.Is(err, util.ErrLoginRequired) {
		t.Fatalf("got %v", err)
	}
}
