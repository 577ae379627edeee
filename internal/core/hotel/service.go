// Package hotel answers LuxeStay guest questions from retrieved FAQ chunks.
package hotel

import (
	"ai-concierge/config"
	"ai-concierge/internal/core/chat"
	"ai-concierge/internal/core/prompt"
	"ai-concierge/internal/core/retriever"
	"ai-concierge/internal/core/vectorstore"
	"ai-concierge/pkg/logger"
	"context"
	"errors"
	"strings"
)

var ErrEmptyQuestion = errors.New("question is empty")

// Searcher is the retrieval step; *retriever.Retriever satisfies it.
type Searcher interface {
	Search(ctx context.Context, question string) ([]vectorstore.Hit, error)
}

type Prompts struct {
	System   string
	Template string
	Fallback string
}

func PromptsFromConfig() Prompts {
	p := config.Cfg.Prompts.Hotel
	return Prompts{System: p.System, Template: p.Template, Fallback: p.Fallback}
}

type Service struct {
	searcher Searcher
	client   chat.Client
	prompts  Prompts
	user     prompt.Template
}

func NewService(searcher Searcher, client chat.Client, prompts Prompts) *Service {
	return &Service{
		searcher: searcher,
		client:   client,
		prompts:  prompts,
		user:     prompt.New(prompts.Template, "context", "ask"),
	}
}

// Ask retrieves context for question and asks the model. Without any hit
// above the threshold the fallback answer is returned and the model is not
// called.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	hits, err := s.searcher.Search(ctx, question)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		logger.WithModule(config.ModuleHotel).Debug("hotel: no context above threshold, using fallback")
		return s.prompts.Fallback, nil
	}

	user, err := s.user.Render(map[string]any{
		"context": prompt.RenderContext(retriever.Contents(hits)),
		"ask":     question,
	})
	if err != nil {
		return "", err
	}

	answer, err := s.client.Complete(ctx, s.prompts.System, user)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return s.prompts.Fallback, nil
	}
	return answer, nil
}
