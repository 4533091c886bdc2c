package model

import (
	"prepaena_backend/internal/quiz"
	"strconv"
	"time"
)

// Question mirrors the hosted questions table. The correct column keeps
// whatever encoding the author typed; ToQuiz normalizes it.
// swagger:model Question
type Question struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Subject      string    `gorm:"size:64;index:idx_questions_pool" json:"subject"`
	ExamLevel    string    `gorm:"size:16;index:idx_questions_pool" json:"examLevel"`
	Difficulty   string    `gorm:"size:16;default:'medium'" json:"difficulty"`
	TestType     string    `gorm:"size:16" json:"testType"`
	TestNumber   int       `gorm:"default:0" json:"testNumber"`
	Kind         string    `gorm:"size:32;default:'multiple_choice'" json:"kind"`
	QuestionText string    `gorm:"type:text;not null" json:"questionText"`
	Answer1      string    `gorm:"type:text" json:"answer1"`
	Answer2      string    `gorm:"type:text" json:"answer2"`
	Answer3      string    `gorm:"type:text" json:"answer3"`
	Answer4      string    `gorm:"type:text" json:"answer4"`
	Correct      string    `gorm:"size:64;not null" json:"correct"`
	Explanation  string    `gorm:"type:text" json:"explanation"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Question) TableName() string {
	return "questions"
}

// Options returns the four answer columns by position. Trailing blanks are
// dropped during normalization; a blank column between filled ones makes
// ToQuiz fail.
func (q *Question) Options() []string {
	return []string{q.Answer1, q.Answer2, q.Answer3, q.Answer4}
}

func (q *Question) ToQuiz() (quiz.Question, error) {
	return quiz.RawQuestion{
		ID:          strconv.FormatUint(uint64(q.ID), 10),
		Prompt:      q.QuestionText,
		Kind:        q.Kind,
		Options:     q.Options(),
		Correct:     q.Correct,
		Subject:     q.Subject,
		ExamLevel:   q.ExamLevel,
		Difficulty:  q.Difficulty,
		Explanation: q.Explanation,
	}.Normalize()
}

// QuestionFromQuiz builds a row from a normalized question. The key is
// stored as a letter, or vrai/faux for true/false questions.
func QuestionFromQuiz(q quiz.Question) Question {
	row := Question{
		Subject:      q.Subject,
		ExamLevel:    q.ExamLevel,
		Difficulty:   string(q.Difficulty),
		Kind:         string(q.Kind),
		QuestionText: q.Prompt,
		Correct:      q.Key.Letter(),
		Explanation:  q.Explanation,
	}
	if q.Kind == quiz.KindTrueFalse {
		row.Correct = "faux"
		if q.Key.Bool() {
			row.Correct = "vrai"
		}
		return row
	}
	cols := []*string{&row.Answer1, &row.Answer2, &row.Answer3, &row.Answer4}
	for i, opt := range q.Options {
		if i < len(cols) {
			*cols[i] = opt
		}
	}
	return row
}
