package quiz

import (
	"fmt"
	"strconv"
	"strings"
)

// Choice is a recorded answer: the zero-based option index the candidate picked.
// For true/false questions 0 means "vrai" and 1 means "faux".
type Choice int

// Unanswered marks a question the candidate never answered. It never matches a key.
const Unanswered Choice = -1

const (
	TruthTrue  = 0
	TruthFalse = 1
)

var trueFalseOptions = []string{"Vrai", "Faux"}

// AnswerKey is the canonical form of a question's correct answer.
// Raw encodings (index, letter, "vrai"/"faux", option text) are converted
// once and every comparison goes through Matches.
type AnswerKey struct {
	index int
	valid bool
}

func KeyFromIndex(i int) AnswerKey {
	if i < 0 {
		return AnswerKey{}
	}
	return AnswerKey{index: i, valid: true}
}

func KeyFromLetter(letter string) (AnswerKey, error) {
	l := strings.ToUpper(strings.TrimSpace(letter))
	l = strings.TrimRight(l, ").")
	if len(l) != 1 || l[0] < 'A' || l[0] > 'Z' {
		return AnswerKey{}, fmt.Errorf("%w: %q is not an option letter", ErrInvalidKey, letter)
	}
	return KeyFromIndex(int(l[0] - 'A')), nil
}

func KeyFromBool(v bool) AnswerKey {
	if v {
		return KeyFromIndex(TruthTrue)
	}
	return KeyFromIndex(TruthFalse)
}

// ParseTruth reads the boolean encodings used by true/false questions.
func ParseTruth(raw string) (AnswerKey, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "vrai", "v", "true", "t", "oui":
		return KeyFromBool(true), nil
	case "faux", "f", "false", "non":
		return KeyFromBool(false), nil
	}
	return AnswerKey{}, fmt.Errorf("%w: %q is not vrai/faux", ErrInvalidKey, raw)
}

// ParseAnswerKey normalizes a raw correct-answer field.
//
// Accepted encodings, in order: vrai/faux for true/false questions, zero-based
// integer indexes, letters A-Z with an optional ")" or "." suffix, "answerN"
// column names (1-based, as in answer1..answer4), and finally the literal
// text of exactly one option.
func ParseAnswerKey(raw string, kind Kind, options []string) (AnswerKey, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return AnswerKey{}, fmt.Errorf("%w: empty correct answer", ErrInvalidKey)
	}

	if kind == KindTrueFalse {
		if key, err := ParseTruth(trimmed); err == nil {
			return key, nil
		}
		options = trueFalseOptions
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		return checkRange(KeyFromIndex(n), options, raw)
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "answer") {
		if n, err := strconv.Atoi(strings.TrimPrefix(lower, "answer")); err == nil {
			return checkRange(KeyFromIndex(n-1), options, raw)
		}
	}

	if key, err := KeyFromLetter(trimmed); err == nil {
		return checkRange(key, options, raw)
	}

	return keyFromText(trimmed, options)
}

func checkRange(key AnswerKey, options []string, raw string) (AnswerKey, error) {
	if !key.valid || key.index >= len(options) {
		return AnswerKey{}, fmt.Errorf("%w: %q is outside %d options", ErrInvalidKey, raw, len(options))
	}
	return key, nil
}

func keyFromText(text string, options []string) (AnswerKey, error) {
	want := foldText(text)
	found := -1
	for i, opt := range options {
		if foldText(opt) != want {
			continue
		}
		if found >= 0 {
			return AnswerKey{}, fmt.Errorf("%w: %q matches several options", ErrInvalidKey, text)
		}
		found = i
	}
	if found < 0 {
		return AnswerKey{}, fmt.Errorf("%w: %q matches no option", ErrInvalidKey, text)
	}
	return KeyFromIndex(found), nil
}

func foldText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func (k AnswerKey) Valid() bool { return k.valid }

// Index returns the canonical option index, or -1 for the zero key.
func (k AnswerKey) Index() int {
	if !k.valid {
		return -1
	}
	return k.index
}

func (k AnswerKey) Letter() string {
	if !k.valid {
		return ""
	}
	return OptionLetter(k.index)
}

// Bool reports the truth value for true/false questions.
func (k AnswerKey) Bool() bool { return k.valid && k.index == TruthTrue }

// Matches reports whether a recorded choice is the correct one.
func (k AnswerKey) Matches(c Choice) bool {
	return k.valid && c != Unanswered && int(c) == k.index
}

func OptionLetter(i int) string {
	if i < 0 || i >= 26 {
		return ""
	}
	return string(rune('A' + i))
}
