package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakePool struct {
	questions []Question
	calls     int
	err       error
}

func (f *fakePool) Questions(_ context.Context, filter Filter) ([]Question, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []Question
	for _, q := range f.questions {
		if filter.Subject != "" && q.Subject != filter.Subject {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func makePool(subject string, perDifficulty int) *fakePool {
	p := &fakePool{}
	for _, d := range Difficulties {
		for i := 0; i < perDifficulty; i++ {
			p.questions = append(p.questions, Question{
				ID:         fmt.Sprintf("%s-%s-%02d", subject, d, i),
				Prompt:     "prompt",
				Kind:       KindMultipleChoice,
				Options:    []string{"a", "b"},
				Key:        KeyFromIndex(0),
				Subject:    subject,
				Difficulty: d,
			})
		}
	}
	return p
}

func ids(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func sameOrder(a, b []Question) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// TestDailySelectionIsDeterministicPerDate verifies every caller sees the same set on a given day.
func TestDailySelectionIsDeterministicPerDate(t *testing.T) {
	pool := makePool("logique", 10)
	src := NewSource(pool, time.UTC)
	req := Request{
		Mode:      ModeDaily,
		Subjects:  []string{"logique"},
		ExamLevel: "cm",
		Count:     5,
		Date:      time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC),
	}

	first, err := src.Select(context.Background(), req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	req.Date = time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)
	second, err := src.Select(context.Background(), req)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !sameOrder(first, second) {
		t.Fatalf("same day produced different sets: %v vs %v", ids(first), ids(second))
	}

	// Reversed pool order must not change the outcome.
	reversed := &fakePool{}
	for i := len(pool.questions) - 1; i >= 0; i-- {
		reversed.questions = append(reversed.questions, pool.questions[i])
	}
	third, err := NewSource(reversed, time.UTC).Select(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !sameOrder(first, third) {
		t.Fatalf("pool order leaked into daily selection")
	}

	req.Date = time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	other, err := src.Select(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if sameOrder(first, other) {
		t.Fatalf("next day should differ: %v", ids(other))
	}
}

// TestDailySelectionUsesExamTimezone verifies the calendar day is taken in the configured zone.
func TestDailySelectionUsesExamTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	src := NewSource(makePool("anglais", 4), loc)
	late := time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC)
	if got := src.DateKey(late); got != "2026-01-02" {
		t.Fatalf("DateKey = %s", got)
	}
}

// TestPracticeTestsAreDisjoint verifies different test numbers do not repeat questions.
func TestPracticeTestsAreDisjoint(t *testing.T) {
	src := NewSource(makePool("anglais", 8), time.UTC)
	seen := map[string]int{}
	for n := 1; n <= 3; n++ {
		qs, err := src.Select(context.Background(), Request{
			Mode:       ModePractice,
			Subjects:   []string{"anglais"},
			Count:      8,
			TestNumber: n,
		})
		if err != nil {
			t.Fatalf("test %d: %v", n, err)
		}
		if len(qs) != 8 {
			t.Fatalf("test %d: got %d questions", n, len(qs))
		}
		for _, q := range qs {
			if prev, ok := seen[q.ID]; ok {
				t.Fatalf("question %s repeated in tests %d and %d", q.ID, prev, n)
			}
			seen[q.ID] = n
		}
	}

	again, err := src.Select(context.Background(), Request{
		Mode: ModePractice, Subjects: []string{"anglais"}, Count: 8, TestNumber: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range again {
		if seen[q.ID] != 2 {
			t.Fatalf("practice test 2 is not stable: %s came from test %d", q.ID, seen[q.ID])
		}
	}
}

// TestDistributionCounts verifies largest-remainder splitting.
func TestDistributionCounts(t *testing.T) {
	d := Distribution{Easy: 40, Medium: 40, Hard: 20}
	got := d.Counts(20)
	if got[Easy] != 8 || got[Medium] != 8 || got[Hard] != 4 {
		t.Fatalf("Counts(20) = %v", got)
	}
	got = d.Counts(7)
	if got[Easy]+got[Medium]+got[Hard] != 7 {
		t.Fatalf("Counts(7) does not sum to 7: %v", got)
	}
	if got[Easy] != 3 || got[Medium] != 3 || got[Hard] != 1 {
		t.Fatalf("Counts(7) = %v", got)
	}
	if err := (Distribution{Easy: 50, Hard: 20}).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected distribution error, got %v", err)
	}
	if err := (Distribution{"facile": 100}).Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("alias keys must be rejected, got %v", err)
	}
}

// TestSelectRejectsAliasDistribution verifies an alias key never yields an empty selection.
func TestSelectRejectsAliasDistribution(t *testing.T) {
	pool := makePool("logique", 3)
	src := NewSource(pool, time.UTC)
	qs, err := src.Select(context.Background(), Request{
		Mode:         ModeMock,
		Subjects:     []string{"logique"},
		Count:        2,
		Distribution: Distribution{"facile": 100},
	})
	if !errors.Is(err, ErrInvalidRequest) || len(qs) != 0 {
		t.Fatalf("expected invalid request, got %v (%d questions)", err, len(qs))
	}
	if pool.calls != 0 {
		t.Fatalf("pool read %d times for an invalid request", pool.calls)
	}
}

// TestSelectWithDistribution verifies per-difficulty quotas across subjects.
func TestSelectWithDistribution(t *testing.T) {
	pool := makePool("logique", 5)
	pool.questions = append(pool.questions, makePool("anglais", 5).questions...)
	src := NewSource(pool, time.UTC)
	qs, err := src.Select(context.Background(), Request{
		Mode:         ModeMock,
		Subjects:     []string{"logique", "anglais"},
		Count:        10,
		Distribution: Distribution{Easy: 40, Medium: 40, Hard: 20},
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(qs) != 20 {
		t.Fatalf("expected 20 questions, got %d", len(qs))
	}
	perSubject := map[string]map[Difficulty]int{}
	for i, q := range qs {
		if perSubject[q.Subject] == nil {
			perSubject[q.Subject] = map[Difficulty]int{}
		}
		perSubject[q.Subject][q.Difficulty]++
		if i < 10 && q.Subject != "logique" {
			t.Fatalf("subjects must stay in request order")
		}
	}
	for subject, counts := range perSubject {
		if counts[Easy] != 4 || counts[Medium] != 4 || counts[Hard] != 2 {
			t.Fatalf("%s: unexpected counts %v", subject, counts)
		}
	}
}

// TestSelectInsufficientFailsFast verifies short pools return a typed error.
func TestSelectInsufficientFailsFast(t *testing.T) {
	src := NewSource(makePool("logique", 2), time.UTC)
	_, err := src.Select(context.Background(), Request{
		Mode:         ModeDaily,
		Subjects:     []string{"logique"},
		Count:        10,
		Distribution: Distribution{Easy: 40, Medium: 40, Hard: 20},
	})
	if !errors.Is(err, ErrInsufficientQuestions) {
		t.Fatalf("expected insufficient error, got %v", err)
	}
	var ie *InsufficientQuestionsError
	if !errors.As(err, &ie) || ie.Requested != 4 || ie.Available != 2 || ie.Difficulty != Easy {
		t.Fatalf("unexpected error detail %+v", ie)
	}

	_, err = src.Select(context.Background(), Request{Mode: ModeDaily, Subjects: []string{"anglais"}, Count: 1})
	if !errors.As(err, &ie) || ie.Available != 0 || ie.Subject != "anglais" {
		t.Fatalf("unknown subject must report zero available, got %v", err)
	}
}

// TestSelectValidatesRequest verifies malformed requests never hit the pool.
func TestSelectValidatesRequest(t *testing.T) {
	pool := makePool("logique", 2)
	src := NewSource(pool, time.UTC)
	bad := []Request{
		{Mode: "weekly", Subjects: []string{"logique"}, Count: 1},
		{Mode: ModeDaily, Count: 1},
		{Mode: ModeDaily, Subjects: []string{"logique"}},
		{Mode: ModePractice, Subjects: []string{"logique"}, Count: 1},
	}
	for i, req := range bad {
		if _, err := src.Select(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("request %d: expected invalid request, got %v", i, err)
		}
	}
	if pool.calls != 0 {
		t.Fatalf("pool read for invalid requests")
	}
}

// TestSelectPropagatesPoolErrors verifies backend failures surface unchanged.
func TestSelectPropagatesPoolErrors(t *testing.T) {
	boom := errors.New("backend down")
	src := NewSource(&fakePool{err: boom}, time.UTC)
	_, err := src.Select(context.Background(), Request{Mode: ModeMock, Subjects: []string{"x"}, Count: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

// TestDefaultBankLoads verifies the embedded bank normalizes every entry.
func TestDefaultBankLoads(t *testing.T) {
	bank, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}
	if bank.Len() < 20 {
		t.Fatalf("expected a populated bank, got %d", bank.Len())
	}
	qs, err := bank.Questions(context.Background(), Filter{Subject: "culture_generale", ExamLevel: "CM"})
	if err != nil || len(qs) == 0 {
		t.Fatalf("expected culture_generale questions: %v", err)
	}
	for _, q := range qs {
		if q.ID == "cg-005" && q.Key.Letter() != "B" {
			t.Fatalf("text key resolved to %s", q.Key.Letter())
		}
		if q.ID == "cg-004" && q.Key.Index() != 2 {
			t.Fatalf("answerN key resolved to %d", q.Key.Index())
		}
	}
}
