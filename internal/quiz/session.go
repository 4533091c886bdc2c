package quiz

import "fmt"

type State string

const (
	StateIntro      State = "intro"
	StateInProgress State = "in_progress"
	StateResults    State = "results"
)

type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishTimeout   FinishReason = "timeout"
)

// DefaultTimeBudget is the ten minute budget every quiz page used.
const DefaultTimeBudget = 600

// Session owns the mutable state of one quiz attempt. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	questions []Question
	answers   []Choice
	index     int
	budget    int
	remaining int
	state     State
	reason    FinishReason
	score     *Score
}

// NewSession fixes the question list for the attempt. budget is in seconds.
func NewSession(questions []Question, budget int) (*Session, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w: time budget must be positive, got %d", ErrInvalidRequest, budget)
	}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	qs := make([]Question, len(questions))
	copy(qs, questions)
	return &Session{
		questions: qs,
		answers:   unansweredList(len(qs)),
		budget:    budget,
		remaining: budget,
		state:     StateIntro,
	}, nil
}

func unansweredList(n int) []Choice {
	answers := make([]Choice, n)
	for i := range answers {
		answers[i] = Unanswered
	}
	return answers
}

func (s *Session) guard(op string, want State) error {
	if s.state != want {
		return &TransitionError{Op: op, State: s.state}
	}
	return nil
}

func (s *Session) Start() error {
	if err := s.guard("start", StateIntro); err != nil {
		return err
	}
	if len(s.questions) == 0 {
		return ErrEmptyQuiz
	}
	s.answers = unansweredList(len(s.questions))
	s.index = 0
	s.remaining = s.budget
	s.state = StateInProgress
	return nil
}

// SelectAnswer records choice for the current question, replacing any earlier one.
func (s *Session) SelectAnswer(choice Choice) error {
	if err := s.guard("select answer", StateInProgress); err != nil {
		return err
	}
	q := s.questions[s.index]
	if !q.validChoice(choice) {
		return fmt.Errorf("%w: %d for question %s with %d options", ErrInvalidChoice, choice, q.ID, len(q.Options))
	}
	s.answers[s.index] = choice
	return nil
}

// GoNext moves forward; on the last question it finishes the session.
func (s *Session) GoNext() error {
	if err := s.guard("next", StateInProgress); err != nil {
		return err
	}
	if s.index >= len(s.questions)-1 {
		s.finish(FinishCompleted)
		return nil
	}
	s.index++
	return nil
}

func (s *Session) GoPrev() error {
	if err := s.guard("previous", StateInProgress); err != nil {
		return err
	}
	if s.index > 0 {
		s.index--
	}
	return nil
}

// Tick consumes one second. Reaching zero forces Finish with FinishTimeout.
func (s *Session) Tick() error {
	if err := s.guard("tick", StateInProgress); err != nil {
		return err
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.finish(FinishTimeout)
	}
	return nil
}

func (s *Session) Finish() error {
	if err := s.guard("finish", StateInProgress); err != nil {
		return err
	}
	s.finish(FinishCompleted)
	return nil
}

func (s *Session) finish(reason FinishReason) {
	score := ScoreAnswers(s.questions, s.answers)
	s.score = &score
	s.reason = reason
	s.state = StateResults
}

func (s *Session) State() State               { return s.state }
func (s *Session) Index() int                 { return s.index }
func (s *Session) Len() int                   { return len(s.questions) }
func (s *Session) Remaining() int             { return s.remaining }
func (s *Session) Budget() int                { return s.budget }
func (s *Session) FinishReason() FinishReason { return s.reason }

// Score returns the frozen score once the session reached results.
func (s *Session) Score() (Score, bool) {
	if s.score == nil {
		return Score{}, false
	}
	return *s.score, true
}

// Answers returns a copy of the recorded choices.
func (s *Session) Answers() []Choice {
	out := make([]Choice, len(s.answers))
	copy(out, s.answers)
	return out
}

// Questions returns a copy of the fixed question list.
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Current returns the question under the cursor.
func (s *Session) Current() (Question, bool) {
	if len(s.questions) == 0 {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Review builds the result breakdown. It is only available in results.
func (s *Session) Review() ([]QuestionReview, error) {
	if err := s.guard("review", StateResults); err != nil {
		return nil, err
	}
	return Present(s.questions, s.answers, *s.score), nil
}

// View lists the questions as the candidate sees them, without keys.
func (s *Session) View() []QuestionView {
	return ViewsOf(s.questions)
}
