package service

import (
	"context"
	"errors"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/repository"
	"strings"
	"testing"
)

const importDoc = `questions:
  - id: imp-1
    prompt: "Capitale de la Côte d'Ivoire ?"
    options: [Abidjan, Yamoussoukro, Bouaké]
    correct: B
    subject: culture_generale
    difficulty: facile
  - id: imp-2
    prompt: "Le soleil est une étoile."
    kind: true_false
    correct: vrai
    subject: culture_generale
`

func TestQuestionImport(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewQuestionRepository(db)
	svc := NewQuestionAdminService(repo, nil)
	ctx := context.Background()

	n, err := svc.Import(ctx, strings.NewReader(importDoc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d", n)
	}

	stored, err := repo.Questions(ctx, quiz.Filter{Subject: "culture_generale"})
	if err != nil || len(stored) != 2 {
		t.Fatalf("stored = %d, err %v", len(stored), err)
	}
	for _, q := range stored {
		if q.Kind == quiz.KindTrueFalse && !q.Key.Bool() {
			t.Errorf("true/false key lost")
		}
		if q.Kind == quiz.KindMultipleChoice && q.Key.Index() != 1 {
			t.Errorf("multiple choice key = %d", q.Key.Index())
		}
	}

	page, err := svc.List(ctx, quiz.Filter{}, 1, 10)
	if err != nil || page.Total != 2 {
		t.Fatalf("List total = %v, err %v", page, err)
	}
}

func TestQuestionImportRejectsInvalidDocuments(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionAdminService(repository.NewQuestionRepository(db), nil)
	ctx := context.Background()

	docs := map[string]string{
		"empty":        "",
		"bad key":      "questions:\n  - id: x\n    prompt: p\n    options: [a, b]\n    correct: Z\n    subject: s\n",
		"five options": "questions:\n  - id: x\n    prompt: p\n    options: [a, b, c, d, e]\n    correct: A\n    subject: s\n",
		"no subject":   "questions:\n  - id: x\n    prompt: p\n    options: [a, b]\n    correct: A\n",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Import(ctx, strings.NewReader(doc)); !errors.Is(err, quiz.ErrInvalidQuestion) {
				t.Fatalf("got %v", err)
			}
		})
	}
}
