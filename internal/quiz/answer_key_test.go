package quiz

import (
	"errors"
	"testing"
)

var abcd = []string{"Alpha", "Bravo", "Charlie", "Delta"}

// TestParseAnswerKeyEncodings verifies every stored encoding lands on the same index.
func TestParseAnswerKeyEncodings(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"1", 1},
		{" 1 ", 1},
		{"B", 1},
		{"b", 1},
		{"B)", 1},
		{"b.", 1},
		{"answer2", 1},
		{"Answer2", 1},
		{"bravo", 1},
		{"  Bravo ", 1},
		{"0", 0},
		{"D", 3},
	}
	for _, tc := range cases {
		key, err := ParseAnswerKey(tc.raw, KindMultipleChoice, abcd)
		if err != nil {
			t.Fatalf("ParseAnswerKey(%q) failed: %v", tc.raw, err)
		}
		if key.Index() != tc.want {
			t.Fatalf("ParseAnswerKey(%q) = %d, want %d", tc.raw, key.Index(), tc.want)
		}
	}
}

// TestParseAnswerKeyTrueFalse verifies boolean strings map to vrai=0 and faux=1.
func TestParseAnswerKeyTrueFalse(t *testing.T) {
	cases := map[string]int{
		"vrai":  TruthTrue,
		"VRAI":  TruthTrue,
		"true":  TruthTrue,
		"faux":  TruthFalse,
		"False": TruthFalse,
		"0":     TruthTrue,
		"1":     TruthFalse,
		"A":     TruthTrue,
		"B":     TruthFalse,
	}
	for raw, want := range cases {
		key, err := ParseAnswerKey(raw, KindTrueFalse, nil)
		if err != nil {
			t.Fatalf("ParseAnswerKey(%q) failed: %v", raw, err)
		}
		if key.Index() != want {
			t.Fatalf("ParseAnswerKey(%q) = %d, want %d", raw, key.Index(), want)
		}
	}
	if !KeyFromBool(true).Bool() || KeyFromBool(false).Bool() {
		t.Fatalf("KeyFromBool round trip broken")
	}
}

// TestParseAnswerKeyRejects verifies unresolvable keys are errors, never silent misses.
func TestParseAnswerKeyRejects(t *testing.T) {
	for _, raw := range []string{"", "4", "-1", "E", "answer5", "answer0", "Echo", "peut-être"} {
		if _, err := ParseAnswerKey(raw, KindMultipleChoice, abcd); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("ParseAnswerKey(%q) error = %v, want ErrInvalidKey", raw, err)
		}
	}
	if _, err := ParseAnswerKey("peut-être", KindTrueFalse, nil); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected true/false parse failure, got %v", err)
	}
}

// TestParseAnswerKeyAmbiguousText verifies a text key must match exactly one option.
func TestParseAnswerKeyAmbiguousText(t *testing.T) {
	_, err := ParseAnswerKey("Oui", KindMultipleChoice, []string{"Oui", "Non", "oui"})
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
}

// TestAnswerKeyMatches verifies Unanswered never matches.
func TestAnswerKeyMatches(t *testing.T) {
	key := KeyFromIndex(0)
	if key.Matches(Unanswered) {
		t.Fatalf("Unanswered must never match")
	}
	if !key.Matches(0) || key.Matches(1) {
		t.Fatalf("unexpected match result")
	}
	var zero AnswerKey
	if zero.Matches(0) || zero.Valid() || zero.Letter() != "" {
		t.Fatalf("zero key must match nothing")
	}
	if KeyFromIndex(2).Letter() != "C" {
		t.Fatalf("expected letter C")
	}
}

// TestNormalizeKeepsOptionPositions verifies keys resolve against the authored columns.
func TestNormalizeKeepsOptionPositions(t *testing.T) {
	q, err := RawQuestion{ID: "q", Prompt: "p", Options: []string{" Paris ", "Lyon", "", ""}, Correct: "B"}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(q.Options) != 2 || q.Options[q.Key.Index()] != "Lyon" {
		t.Fatalf("options %v key %d", q.Options, q.Key.Index())
	}

	for _, correct := range []string{"C", "answer3", "2", "Lyon"} {
		_, err := RawQuestion{ID: "q", Prompt: "p", Options: []string{"Paris", "", "Lyon", "Nice"}, Correct: correct}.Normalize()
		if !errors.Is(err, ErrInvalidQuestion) {
			t.Errorf("correct %q: expected invalid question, got %v", correct, err)
		}
	}
}
