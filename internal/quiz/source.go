package quiz

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"time"
)

type Mode string

const (
	ModeDaily    Mode = "daily"
	ModePractice Mode = "practice"
	ModeMock     Mode = "mock"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDaily, ModePractice, ModeMock:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
}

// Filter narrows a pool read. Empty fields match everything.
type Filter struct {
	Subject   string
	ExamLevel string
	Mode      Mode
}

// Pool is anything that can list candidate questions: the question table or the static bank.
type Pool interface {
	Questions(ctx context.Context, f Filter) ([]Question, error)
}

// Distribution holds percentages per difficulty; they must add up to 100.
// Keys are the canonical Difficulty values, aliases are resolved by callers.
type Distribution map[Difficulty]int

func (d Distribution) Validate() error {
	total := 0
	for diff, pct := range d {
		canonical, err := ParseDifficulty(string(diff))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if canonical != diff {
			return fmt.Errorf("%w: distribution key %q must be written %q", ErrInvalidRequest, diff, canonical)
		}
		if pct < 0 {
			return fmt.Errorf("%w: negative share for %s", ErrInvalidRequest, diff)
		}
		total += pct
	}
	if total != 100 {
		return fmt.Errorf("%w: distribution adds up to %d, want 100", ErrInvalidRequest, total)
	}
	return nil
}

// Counts splits n by the largest remainder method so the parts sum to n.
func (d Distribution) Counts(n int) map[Difficulty]int {
	type part struct {
		diff Difficulty
		rem  int
	}
	counts := make(map[Difficulty]int, len(d))
	parts := make([]part, 0, len(d))
	assigned := 0
	for _, diff := range Difficulties {
		pct, ok := d[diff]
		if !ok {
			continue
		}
		exact := n * pct
		counts[diff] = exact / 100
		assigned += exact / 100
		parts = append(parts, part{diff: diff, rem: exact % 100})
	}
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].rem > parts[j].rem })
	for i := 0; assigned < n && len(parts) > 0; i = (i + 1) % len(parts) {
		counts[parts[i].diff]++
		assigned++
	}
	return counts
}

// Request describes the question set a quiz needs.
type Request struct {
	Mode         Mode
	Subjects     []string
	ExamLevel    string
	Count        int // per subject
	Distribution Distribution
	Date         time.Time
	TestNumber   int
}

func (r Request) Validate() error {
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	if len(r.Subjects) == 0 {
		return fmt.Errorf("%w: at least one subject is required", ErrInvalidRequest)
	}
	if r.Count <= 0 {
		return fmt.Errorf("%w: count must be positive", ErrInvalidRequest)
	}
	if r.Mode == ModePractice && r.TestNumber <= 0 {
		return fmt.Errorf("%w: practice tests are numbered from 1", ErrInvalidRequest)
	}
	if len(r.Distribution) > 0 {
		return r.Distribution.Validate()
	}
	return nil
}

// Source selects fixed-size question lists from a pool.
//
// Daily selections are seeded by calendar date so every caller gets the same
// set that day. Practice selections are windows over a stable permutation so
// different test numbers do not repeat questions while the pool allows.
type Source struct {
	pool     Pool
	location *time.Location
	now      func() time.Time
	seed     func() int64
}

func NewSource(pool Pool, location *time.Location) *Source {
	if location == nil {
		location = time.UTC
	}
	return &Source{
		pool:     pool,
		location: location,
		now:      time.Now,
		seed:     func() int64 { return time.Now().UnixNano() },
	}
}

// DateKey is the calendar day a daily selection belongs to.
func (s *Source) DateKey(t time.Time) string {
	if t.IsZero() {
		t = s.now()
	}
	return t.In(s.location).Format("2006-01-02")
}

// Select fails with *InsufficientQuestionsError instead of returning a short list.
func (s *Source) Select(ctx context.Context, req Request) ([]Question, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	level := strings.ToUpper(strings.TrimSpace(req.ExamLevel))

	var out []Question
	for _, subject := range req.Subjects {
		pool, err := s.pool.Questions(ctx, Filter{Subject: subject, ExamLevel: level, Mode: req.Mode})
		if err != nil {
			return nil, fmt.Errorf("load pool %s: %w", subject, err)
		}
		block, err := s.selectSubject(req, level, subject, pool)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

func (s *Source) selectSubject(req Request, level, subject string, pool []Question) ([]Question, error) {
	sorted := make([]Question, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if len(req.Distribution) == 0 {
		block, err := s.pick(req, level, subject, "", sorted, req.Count)
		if err != nil {
			return nil, err
		}
		return block, nil
	}

	buckets := make(map[Difficulty][]Question, len(Difficulties))
	for _, q := range sorted {
		buckets[q.Difficulty] = append(buckets[q.Difficulty], q)
	}

	counts := req.Distribution.Counts(req.Count)
	var block []Question
	for _, diff := range Difficulties {
		k := counts[diff]
		if k == 0 {
			continue
		}
		picked, err := s.pick(req, level, subject, diff, buckets[diff], k)
		if err != nil {
			return nil, err
		}
		block = append(block, picked...)
	}
	s.rng(req, level, subject, "order").Shuffle(len(block), func(i, j int) {
		block[i], block[j] = block[j], block[i]
	})
	return block, nil
}

func (s *Source) pick(req Request, level, subject string, diff Difficulty, candidates []Question, k int) ([]Question, error) {
	if len(candidates) < k {
		return nil, &InsufficientQuestionsError{
			Subject:    subject,
			Difficulty: diff,
			Requested:  k,
			Available:  len(candidates),
		}
	}

	perm := make([]Question, len(candidates))
	copy(perm, candidates)

	switch req.Mode {
	case ModePractice:
		base := seeded("practice", level, subject, string(diff))
		base.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		start := ((req.TestNumber - 1) * k) % len(perm)
		window := make([]Question, k)
		for i := 0; i < k; i++ {
			window[i] = perm[(start+i)%len(perm)]
		}
		seeded("practice", level, subject, string(diff), fmt.Sprint(req.TestNumber)).
			Shuffle(k, func(i, j int) { window[i], window[j] = window[j], window[i] })
		return window, nil
	default:
		s.rng(req, level, subject, string(diff)).Shuffle(len(perm), func(i, j int) {
			perm[i], perm[j] = perm[j], perm[i]
		})
		return perm[:k], nil
	}
}

func (s *Source) rng(req Request, level, subject, salt string) *rand.Rand {
	switch req.Mode {
	case ModeDaily:
		return seeded("daily", s.DateKey(req.Date), level, subject, salt)
	case ModePractice:
		return seeded("practice", level, subject, fmt.Sprint(req.TestNumber), salt)
	default:
		return rand.New(rand.NewSource(s.seed()))
	}
}

func seeded(parts ...string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(parts, "|")))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
