package quiz

import "math"

// Score is derived from a frozen answer list; it is never stored by the core.
type Score struct {
	Correct     int    `json:"correct"`
	Total       int    `json:"total"`
	Percentage  int    `json:"percentage"`
	PerQuestion []bool `json:"perQuestion"`
}

// ScoreAnswers compares every recorded choice with the question's normalized key.
// Missing entries count as Unanswered.
func ScoreAnswers(questions []Question, answers []Choice) Score {
	s := Score{
		Total:       len(questions),
		PerQuestion: make([]bool, len(questions)),
	}
	for i, q := range questions {
		choice := Unanswered
		if i < len(answers) {
			choice = answers[i]
		}
		if q.Key.Matches(choice) {
			s.PerQuestion[i] = true
			s.Correct++
		}
	}
	s.Percentage = Percentage(s.Correct, s.Total)
	return s
}

// Percentage rounds half away from zero and returns 0 for an empty quiz.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
