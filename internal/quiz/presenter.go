package quiz

type OptionReview struct {
	Letter   string `json:"letter"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
	Correct  bool   `json:"correct"`
}

// QuestionReview is the display-ready result row for one question.
type QuestionReview struct {
	QuestionID    string         `json:"questionId"`
	Prompt        string         `json:"prompt"`
	Kind          Kind           `json:"kind"`
	Subject       string         `json:"subject,omitempty"`
	Options       []OptionReview `json:"options"`
	Answered      bool           `json:"answered"`
	IsCorrect     bool           `json:"isCorrect"`
	CorrectLetter string         `json:"correctLetter"`
	Explanation   string         `json:"explanation,omitempty"`
}

// Present renders the frozen score into a per-question breakdown with
// option-level highlighting.
func Present(questions []Question, answers []Choice, score Score) []QuestionReview {
	out := make([]QuestionReview, len(questions))
	for i, q := range questions {
		choice := Unanswered
		if i < len(answers) {
			choice = answers[i]
		}
		opts := make([]OptionReview, len(q.Options))
		for j, text := range q.Options {
			opts[j] = OptionReview{
				Letter:   OptionLetter(j),
				Text:     text,
				Selected: int(choice) == j,
				Correct:  q.Key.Index() == j,
			}
		}
		correct := false
		if i < len(score.PerQuestion) {
			correct = score.PerQuestion[i]
		}
		out[i] = QuestionReview{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			Kind:          q.Kind,
			Subject:       q.Subject,
			Options:       opts,
			Answered:      choice != Unanswered,
			IsCorrect:     correct,
			CorrectLetter: q.Key.Letter(),
			Explanation:   q.Explanation,
		}
	}
	return out
}

// QuestionView is what a candidate sees while the session runs: no keys.
type QuestionView struct {
	QuestionID string   `json:"questionId"`
	Prompt     string   `json:"prompt"`
	Kind       Kind     `json:"kind"`
	Subject    string   `json:"subject,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Options    []string `json:"options"`
}

func ViewOf(q Question) QuestionView {
	return QuestionView{
		QuestionID: q.ID,
		Prompt:     q.Prompt,
		Kind:       q.Kind,
		Subject:    q.Subject,
		Difficulty: string(q.Difficulty),
		Options:    append([]string(nil), q.Options...),
	}
}

func ViewsOf(questions []Question) []QuestionView {
	out := make([]QuestionView, len(questions))
	for i, q := range questions {
		out[i] = ViewOf(q)
	}
	return out
}
