package feed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/crowdguess/internal/domain/corpus"
	"github.com/okian/crowdguess/internal/domain/model"
)

// bankFile is the on-disk question bank layout:
//
//	questions:
//	  - id: pets
//	    title: What is the best pet?
//	    answers:
//	      - text: Dogs
//	        popularity: 120
type bankFile struct {
	Questions []struct {
		ID      string         `yaml:"id"`
		Title   string         `yaml:"title"`
		Answers []corpus.Entry `yaml:"answers"`
	} `yaml:"questions"`
}

// Static serves a fixed, in-order list of questions.
type Static struct {
	questions []model.Question
}

// NewStatic wraps questions already in memory.
func NewStatic(questions ...model.Question) *Static {
	return &Static{questions: questions}
}

// LoadFile reads a YAML question bank.
func LoadFile(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", path, err)
	}
	return ParseBank(raw)
}

// ParseBank decodes a YAML question bank.
func ParseBank(raw []byte) (*Static, error) {
	var bank bankFile
	if err := yaml.Unmarshal(raw, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	qs := make([]model.Question, 0, len(bank.Questions))
	for i, q := range bank.Questions {
		id := q.ID
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		qs = append(qs, model.Question{ID: id, Title: q.Title, Corpus: corpus.New(q.Answers...)})
	}
	return NewStatic(qs...), nil
}

// Len returns the number of questions.
func (s *Static) Len() int { return len(s.questions) }

// Question implements Provider.
func (s *Static) Question(_ context.Context, index int) (model.Question, error) {
	if index < 0 || index >= len(s.questions) {
		return model.Question{}, ErrNotFound
	}
	return s.questions[index], nil
}
