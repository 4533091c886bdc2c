package service

import (
	"context"
	"errors"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/util"
	"testing"
	"time"
)

func newTestManager(t *testing.T, saver ResultSaver) (*SessionManager, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	m := NewSessionManager(saver, time.Hour)
	m.now = clock.Now
	return m, clock
}

func TestSessionManagerLifecycle(t *testing.T) {
	saver := &fakeSaver{}
	m, _ := newTestManager(t, saver)
	ctx := context.Background()
	questions := testPool(t, []string{"anglais"}, 1)

	view, err := m.Create("user-1", SessionMeta{Mode: quiz.ModeDaily}, questions, 60)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if view.State != quiz.StateIntro || view.Total != len(questions) {
		t.Fatalf("unexpected initial view: %+v", view)
	}

	if _, err := m.Start(ctx, view.ID, "user-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := range questions {
		if _, err := m.Answer(ctx, view.ID, "user-1", quiz.Choice(1)); err != nil {
			t.Fatalf("Answer %d: %v", i, err)
		}
		if i < len(questions)-1 {
			if _, err := m.Next(ctx, view.ID, "user-1"); err != nil {
				t.Fatalf("Next %d: %v", i, err)
			}
		}
	}
	done, err := m.Finish(ctx, view.ID, "user-1")
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if done.Score == nil || done.Score.Percentage != 100 {
		t.Fatalf("expected 100%%, got %+v", done.Score)
	}
	if done.FinishReason != quiz.FinishCompleted {
		t.Errorf("finish reason = %s", done.FinishReason)
	}
	if done.ResultID != "result-1" || saver.count() != 1 {
		t.Errorf("expected one saved result, got id %q and %d saves", done.ResultID, saver.count())
	}
	if len(done.Review) != len(questions) {
		t.Errorf("review has %d rows", len(done.Review))
	}

	if _, err := m.Finish(ctx, view.ID, "user-1"); !errors.Is(err, quiz.ErrInvalidTransition) {
		t.Fatalf("second Finish should fail with invalid transition, got %v", err)
	}
	if saver.count() != 1 {
		t.Errorf("result saved %d times", saver.count())
	}
}

func TestSessionManagerTimeoutWinsOverPendingAnswer(t *testing.T) {
	saver := &fakeSaver{}
	m, clock := newTestManager(t, saver)
	ctx := context.Background()

	view, err := m.Create("user-1", SessionMeta{Mode: quiz.ModeDaily}, testPool(t, []string{"logique"}, 1), 30)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Start(ctx, view.ID, "user-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.Advance(10 * time.Second)
	mid, err := m.Get(ctx, view.ID, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if mid.Remaining != 20 {
		t.Errorf("remaining = %d, want 20", mid.Remaining)
	}

	clock.Advance(25 * time.Second)
	after, err := m.Answer(ctx, view.ID, "user-1", quiz.Choice(1))
	if !errors.Is(err, quiz.ErrInvalidTransition) {
		t.Fatalf("answer after expiry should be rejected, got %v", err)
	}
	if after.State != quiz.StateResults || after.FinishReason != quiz.FinishTimeout {
		t.Fatalf("expected timeout results, got %s/%s", after.State, after.FinishReason)
	}
	if after.Score == nil || after.Score.Correct != 0 {
		t.Errorf("unanswered questions must score zero, got %+v", after.Score)
	}
	if saver.count() != 1 {
		t.Errorf("expected the timed out session to be saved once, got %d", saver.count())
	}
}

func TestSessionManagerSweepFinishesAndEvicts(t *testing.T) {
	saver := &fakeSaver{}
	m, clock := newTestManager(t, saver)
	ctx := context.Background()

	view, err := m.Create("user-1", SessionMeta{Mode: quiz.ModeMock}, testPool(t, []string{"anglais"}, 1), 5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Start(ctx, view.ID, "user-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.Advance(6 * time.Second)
	m.Sweep(ctx)
	if saver.count() != 1 {
		t.Fatalf("sweeper should save the expired session, saves = %d", saver.count())
	}
	if m.Len() != 1 {
		t.Fatalf("session evicted before ttl")
	}

	clock.Advance(2 * time.Hour)
	m.Sweep(ctx)
	if m.Len() != 0 {
		t.Fatalf("session not evicted after ttl")
	}
	if _, err := m.Get(ctx, view.ID, "user-1"); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("expected not found after eviction, got %v", err)
	}
}

func TestSessionManagerRetriesFailedSave(t *testing.T) {
	saver := &fakeSaver{err: errors.New("db down")}
	m, _ := newTestManager(t, saver)
	ctx := context.Background()

	view, _ := m.Create("user-1", SessionMeta{Mode: quiz.ModeDaily}, testPool(t, []string{"anglais"}, 1), 60)
	m.Start(ctx, view.ID, "user-1")
	done, err := m.Finish(ctx, view.ID, "user-1")
	if err != nil {
		t.Fatalf("Finish must not fail on save errors: %v", err)
	}
	if done.ResultID != "" {
		t.Fatalf("unexpected result id %q", done.ResultID)
	}

	saver.mu.Lock()
	saver.err = nil
	saver.mu.Unlock()
	m.Sweep(ctx)
	m.Sweep(ctx)
	if saver.count() != 1 {
		t.Fatalf("expected exactly one successful save, got %d", saver.count())
	}
}

func TestSessionManagerOwnership(t *testing.T) {
	saver := &fakeSaver{}
	m, _ := newTestManager(t, saver)
	ctx := context.Background()

	owned, _ := m.Create("user-1", SessionMeta{Mode: quiz.ModeDaily}, testPool(t, []string{"anglais"}, 1), 60)
	if _, err := m.Start(ctx, owned.ID, "user-2"); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("foreign user should be denied, got %v", err)
	}

	anon, _ := m.Create("", SessionMeta{Mode: quiz.ModeDaily}, testPool(t, []string{"anglais"}, 1), 60)
	if _, err := m.Start(ctx, anon.ID, ""); err != nil {
		t.Fatalf("anonymous start: %v", err)
	}
	if _, err := m.Finish(ctx, anon.ID, ""); err != nil {
		t.Fatalf("anonymous finish: %v", err)
	}
	if saver.count() != 0 {
		t.Errorf("anonymous sessions must not be saved")
	}

	if _, err := m.Get(ctx, "missing", ""); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestSessionManagerSnapshotRequiresResults(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()
	view, _ := m.Create("user-1", SessionMeta{Mode: quiz.ModeDaily}, testPool(t, []string{"anglais"}, 1), 60)

	if _, err := m.Snapshot(ctx, view.ID, "user-1"); !errors.Is(err, quiz.ErrInvalidTransition) {
		t.Fatalf("snapshot before results should fail, got %v", err)
	}
	m.Start(ctx, view.ID, "user-1")
	m.Finish(ctx, view.ID, "user-1")
	snap, err := m.Snapshot(ctx, view.ID, "user-1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Score == nil {
		t.Errorf("snapshot has no score")
	}
}
