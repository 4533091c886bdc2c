package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKey            = errors.New("invalid answer key")
	ErrInvalidQuestion       = errors.New("invalid question")
	ErrInvalidChoice         = errors.New("invalid choice")
	ErrEmptyQuiz             = errors.New("quiz has no questions")
	ErrInvalidTransition     = errors.New("invalid session transition")
	ErrInsufficientQuestions = errors.New("insufficient questions")
	ErrInvalidRequest        = errors.New("invalid question request")
)

// InsufficientQuestionsError is returned when the pool cannot satisfy a request.
// Callers may relax the request (fewer questions, no distribution) and retry.
type InsufficientQuestionsError struct {
	Subject    string
	Difficulty Difficulty
	Requested  int
	Available  int
}

func (e *InsufficientQuestionsError) Error() string {
	if e.Difficulty != "" {
		return fmt.Sprintf("insufficient questions for %s/%s: requested %d, available %d",
			e.Subject, e.Difficulty, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient questions for %s: requested %d, available %d",
		e.Subject, e.Requested, e.Available)
}

func (e *InsufficientQuestionsError) Is(target error) bool {
	return target == ErrInsufficientQuestions
}

// TransitionError reports an operation attempted from a state that does not allow it.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
