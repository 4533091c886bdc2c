package quiz

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var bankFiles embed.FS

type bankFile struct {
	Questions []RawQuestion `yaml:"questions"`
}

// Bank is a static in-memory question pool.
type Bank struct {
	questions []Question
}

// DecodeBank reads a YAML document with a top-level "questions" list.
// Every entry is normalized; the first invalid one aborts the load.
func DecodeBank(r io.Reader) ([]Question, error) {
	var file bankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	seen := make(map[string]bool, len(file.Questions))
	out := make([]Question, 0, len(file.Questions))
	for i, raw := range file.Questions {
		q, err := raw.Normalize()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = true
		out = append(out, q)
	}
	return out, nil
}

func NewBank(questions []Question) *Bank {
	return &Bank{questions: append([]Question(nil), questions...)}
}

// DefaultBank loads the questions embedded in the binary.
func DefaultBank() (*Bank, error) {
	var all []Question
	err := fs.WalkDir(bankFiles, "data", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := bankFiles.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		qs, err := DecodeBank(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, qs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewBank(all), nil
}

func (b *Bank) Questions(_ context.Context, f Filter) ([]Question, error) {
	out := make([]Question, 0, len(b.questions))
	for _, q := range b.questions {
		if f.Subject != "" && !strings.EqualFold(q.Subject, f.Subject) {
			continue
		}
		if f.ExamLevel != "" && q.ExamLevel != "" && !strings.EqualFold(q.ExamLevel, f.ExamLevel) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (b *Bank) Len() int { return len(b.questions) }

// Subjects lists the distinct subjects in bank order.
func (b *Bank) Subjects() []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range b.questions {
		if !seen[q.Subject] {
			seen[q.Subject] = true
			out = append(out, q.Subject)
		}
	}
	return out
}
