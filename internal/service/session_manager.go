package service

import (
	"context"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/util"
	"prepaena_backend/pkg/logger"
	"prepaena_backend/pkg/monitoring"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionMeta describes how a session's questions were chosen.
type SessionMeta struct {
	Mode       quiz.Mode `json:"mode"`
	Subjects   []string  `json:"subjects"`
	ExamLevel  string    `json:"examLevel"`
	TestNumber int       `json:"testNumber,omitempty"`
	DateKey    string    `json:"date,omitempty"`
}

// FinishedSession is handed to the ResultSaver once a session reaches results.
type FinishedSession struct {
	SessionID string
	UserID    string
	Meta      SessionMeta
	Questions []quiz.Question
	Answers   []quiz.Choice
	Score     quiz.Score
	Reason    quiz.FinishReason
	Duration  time.Duration
}

type ResultSaver interface {
	SaveResult(ctx context.Context, fs FinishedSession) (string, error)
}

type liveSession struct {
	mu        sync.Mutex
	id        string
	userID    string
	meta      SessionMeta
	session   *quiz.Session
	createdAt time.Time
	startedAt time.Time
	ticked    int
	observed  bool
	saved     bool
	resultID  string
}

// SessionView is the JSON shape of a session. Score and Review are only
// set once the session reached results.
type SessionView struct {
	ID           string                `json:"id"`
	Meta         SessionMeta           `json:"meta"`
	State        quiz.State            `json:"state"`
	Index        int                   `json:"index"`
	Total        int                   `json:"total"`
	Budget       int                   `json:"budget"`
	Remaining    int                   `json:"remaining"`
	Answers      []quiz.Choice         `json:"answers"`
	Questions    []quiz.QuestionView   `json:"questions"`
	FinishReason quiz.FinishReason     `json:"finishReason,omitempty"`
	Score        *quiz.Score           `json:"score,omitempty"`
	Review       []quiz.QuestionReview `json:"review,omitempty"`
	ResultID     string                `json:"resultId,omitempty"`
}

// SessionManager keeps live quiz sessions in memory and binds them to the
// wall clock. Each session has its own lock; the elapsed seconds since
// Start are replayed as ticks before every operation, so an expired
// session finishes with reason timeout before the pending call runs.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
	ttl      time.Duration
	saver    ResultSaver
	now      func() time.Time
}

func NewSessionManager(saver ResultSaver, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionManager{
		sessions: make(map[string]*liveSession),
		ttl:      ttl,
		saver:    saver,
		now:      time.Now,
	}
}

func (m *SessionManager) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.ttl = ttl
	m.mu.Unlock()
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) Create(userID string, meta SessionMeta, questions []quiz.Question, budget int) (*SessionView, error) {
	s, err := quiz.NewSession(questions, budget)
	if err != nil {
		return nil, err
	}
	ls := &liveSession{
		id:        uuid.New().String(),
		userID:    userID,
		meta:      meta,
		session:   s,
		createdAt: m.now(),
	}
	m.mu.Lock()
	m.sessions[ls.id] = ls
	n := len(m.sessions)
	m.mu.Unlock()
	monitoring.ActiveSessions.Set(float64(n))

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.view(), nil
}

func (m *SessionManager) lookup(id, userID string) (*liveSession, error) {
	m.mu.RLock()
	ls, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if ls.userID != "" && ls.userID != userID {
		return nil, util.ErrPermissionDenied
	}
	return ls, nil
}

// catchUp replays the wall-clock seconds not yet applied. Caller holds ls.mu.
func (m *SessionManager) catchUp(ls *liveSession) {
	if ls.session.State() != quiz.StateInProgress {
		return
	}
	due := int(m.now().Sub(ls.startedAt) / time.Second)
	for ls.ticked < due && ls.session.State() == quiz.StateInProgress {
		if err := ls.session.Tick(); err != nil {
			return
		}
		ls.ticked++
	}
}

// settle records metrics and saves the result once a session reached
// results. Caller holds ls.mu. A failed save is retried by the sweeper.
func (m *SessionManager) settle(ctx context.Context, ls *liveSession) {
	if ls.session.State() != quiz.StateResults {
		return
	}
	score, _ := ls.session.Score()
	if !ls.observed {
		ls.observed = true
		monitoring.ObserveFinished(string(ls.meta.Mode), string(ls.session.FinishReason()), score.Percentage)
		logger.Log.Info("Quiz session finished",
			zap.String("session", ls.id),
			zap.String("mode", string(ls.meta.Mode)),
			zap.String("reason", string(ls.session.FinishReason())),
			zap.Int("percentage", score.Percentage),
		)
	}
	if ls.saved || ls.userID == "" || m.saver == nil {
		return
	}
	resultID, err := m.saver.SaveResult(ctx, FinishedSession{
		SessionID: ls.id,
		UserID:    ls.userID,
		Meta:      ls.meta,
		Questions: ls.session.Questions(),
		Answers:   ls.session.Answers(),
		Score:     score,
		Reason:    ls.session.FinishReason(),
		Duration:  time.Duration(ls.session.Budget()-ls.session.Remaining()) * time.Second,
	})
	if err != nil {
		logger.Log.Error("Failed to save quiz result", zap.String("session", ls.id), zap.Error(err))
		return
	}
	ls.saved = true
	ls.resultID = resultID
}

// do runs op on the session after replaying the clock. The returned view
// reflects the state after op even when op failed.
func (m *SessionManager) do(ctx context.Context, id, userID string, op func(*liveSession) error) (*SessionView, error) {
	ls, err := m.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	m.catchUp(ls)
	opErr := op(ls)
	m.settle(ctx, ls)
	if opErr != nil {
		return ls.view(), opErr
	}
	return ls.view(), nil
}

func (m *SessionManager) Start(ctx context.Context, id, userID string) (*SessionView, error) {
	return m.do(ctx, id, userID, func(ls *liveSession) error {
		if err := ls.session.Start(); err != nil {
			return err
		}
		ls.startedAt = m.now()
		ls.ticked = 0
		monitoring.SessionsStarted.WithLabelValues(string(ls.meta.Mode)).Inc()
		return nil
	})
}

func (m *SessionManager) Answer(ctx context.Context, id, userID string, choice quiz.Choice) (*SessionView, error) {
	return m.do(ctx, id, userID, func(ls *liveSession) error {
		return ls.session.SelectAnswer(choice)
	})
}

func (m *SessionManager) Next(ctx context.Context, id, userID string) (*SessionView, error) {
	return m.do(ctx, id, userID, func(ls *liveSession) error {
		return ls.session.GoNext()
	})
}

func (m *SessionManager) Prev(ctx context.Context, id, userID string) (*SessionView, error) {
	return m.do(ctx, id, userID, func(ls *liveSession) error {
		return ls.session.GoPrev()
	})
}

func (m *SessionManager) Finish(ctx context.Context, id, userID string) (*SessionView, error) {
	return m.do(ctx, id, userID, func(ls *liveSession) error {
		return ls.session.Finish()
	})
}

func (m *SessionManager) Get(ctx context.Context, id, userID string) (*SessionView, error) {
	return m.do(ctx, id, userID, func(*liveSession) error { return nil })
}

// Sweep ticks running sessions so timeouts finish without traffic, retries
// pending saves and evicts sessions older than the TTL.
func (m *SessionManager) Sweep(ctx context.Context) {
	m.mu.RLock()
	live := make([]*liveSession, 0, len(m.sessions))
	for _, ls := range m.sessions {
		live = append(live, ls)
	}
	ttl := m.ttl
	m.mu.RUnlock()

	now := m.now()
	var expired []string
	for _, ls := range live {
		ls.mu.Lock()
		m.catchUp(ls)
		m.settle(ctx, ls)
		if now.Sub(ls.createdAt) > ttl {
			expired = append(expired, ls.id)
		}
		ls.mu.Unlock()
	}

	if len(expired) == 0 {
		return
	}
	m.mu.Lock()
	for _, id := range expired {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()
	monitoring.ActiveSessions.Set(float64(n))
	logger.Log.Debug("Evicted quiz sessions", zap.Int("count", len(expired)))
}

// Run sweeps once per second until ctx is done.
func (m *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Snapshot returns the finished data of a session for export.
func (m *SessionManager) Snapshot(ctx context.Context, id, userID string) (*SessionView, error) {
	view, err := m.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if view.State != quiz.StateResults {
		return view, &quiz.TransitionError{Op: "export", State: view.State}
	}
	return view, nil
}

// view builds the JSON shape. Caller holds ls.mu.
func (ls *liveSession) view() *SessionView {
	s := ls.session
	v := &SessionView{
		ID:           ls.id,
		Meta:         ls.meta,
		State:        s.State(),
		Index:        s.Index(),
		Total:        s.Len(),
		Budget:       s.Budget(),
		Remaining:    s.Remaining(),
		Answers:      s.Answers(),
		Questions:    s.View(),
		FinishReason: s.FinishReason(),
		ResultID:     ls.resultID,
	}
	if score, ok := s.Score(); ok {
		v.Score = &score
		if review, err := s.Review(); err == nil {
			v.Review = review
		}
	}
	return v
}
