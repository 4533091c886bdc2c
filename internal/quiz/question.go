package quiz

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var Difficulties = []Difficulty{Easy, Medium, Hard}

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	case "facile":
		return Easy, nil
	case "moyen", "moyenne":
		return Medium, nil
	case "difficile":
		return Hard, nil
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidQuestion, s)
}

// Question is a single quiz item with its normalized answer key.
type Question struct {
	ID          string
	Prompt      string
	Kind        Kind
	Options     []string
	Key         AnswerKey
	Subject     string
	ExamLevel   string
	Difficulty  Difficulty
	Explanation string
}

// RawQuestion is a question as stored or authored, before normalization.
type RawQuestion struct {
	ID          string   `yaml:"id" json:"id"`
	Prompt      string   `yaml:"prompt" json:"prompt"`
	Kind        string   `yaml:"kind" json:"kind"`
	Options     []string `yaml:"options" json:"options"`
	Correct     string   `yaml:"correct" json:"correct"`
	Subject     string   `yaml:"subject" json:"subject"`
	ExamLevel   string   `yaml:"exam_level" json:"examLevel"`
	Difficulty  string   `yaml:"difficulty" json:"difficulty"`
	Explanation string   `yaml:"explanation" json:"explanation"`
}

// Normalize converts a raw question into a validated Question.
func (r RawQuestion) Normalize() (Question, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(r.Kind)))
	switch kind {
	case "", "qcm", "mcq":
		kind = KindMultipleChoice
	case "vrai_faux", "boolean":
		kind = KindTrueFalse
	}

	var options []string
	if kind == KindTrueFalse {
		options = append([]string(nil), trueFalseOptions...)
	} else {
		var err error
		if options, err = positionalOptions(r.ID, r.Options); err != nil {
			return Question{}, err
		}
	}

	q := Question{
		ID:          strings.TrimSpace(r.ID),
		Prompt:      strings.TrimSpace(r.Prompt),
		Kind:        kind,
		Options:     options,
		Subject:     strings.TrimSpace(r.Subject),
		ExamLevel:   strings.ToUpper(strings.TrimSpace(r.ExamLevel)),
		Explanation: strings.TrimSpace(r.Explanation),
	}

	if r.Difficulty != "" {
		d, err := ParseDifficulty(r.Difficulty)
		if err != nil {
			return Question{}, fmt.Errorf("question %s: %w", q.ID, err)
		}
		q.Difficulty = d
	} else {
		q.Difficulty = Medium
	}

	key, err := ParseAnswerKey(r.Correct, kind, options)
	if err != nil {
		return Question{}, fmt.Errorf("question %s: %w", q.ID, err)
	}
	q.Key = key

	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// positionalOptions trims the options and drops trailing blanks. A blank
// before a filled option would shift every later index under the key, so
// it is rejected.
func positionalOptions(id string, raw []string) ([]string, error) {
	options := make([]string, len(raw))
	last := -1
	for i, o := range raw {
		options[i] = strings.TrimSpace(o)
		if options[i] != "" {
			last = i
		}
	}
	options = options[:last+1]
	for i, o := range options {
		if o == "" {
			return nil, fmt.Errorf("%w: question %s has a blank option %s before a filled one", ErrInvalidQuestion, strings.TrimSpace(id), OptionLetter(i))
		}
	}
	return options, nil
}

// Validate checks the session invariant: at least one option and a key
// resolving to exactly one of them.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if q.Prompt == "" {
		return fmt.Errorf("%w: question %s has no prompt", ErrInvalidQuestion, q.ID)
	}
	switch q.Kind {
	case KindMultipleChoice:
	case KindTrueFalse:
		if len(q.Options) != len(trueFalseOptions) {
			return fmt.Errorf("%w: true/false question %s must have 2 options", ErrInvalidQuestion, q.ID)
		}
	default:
		return fmt.Errorf("%w: question %s has unknown kind %q", ErrInvalidQuestion, q.ID, q.Kind)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: question %s has no options", ErrInvalidQuestion, q.ID)
	}
	if idx := q.Key.Index(); idx < 0 || idx >= len(q.Options) {
		return fmt.Errorf("%w: question %s key does not resolve to an option", ErrInvalidQuestion, q.ID)
	}
	return nil
}

func (q Question) validChoice(c Choice) bool {
	return int(c) >= 0 && int(c) < len(q.Options)
}
