// Package roster answers questions about the student roster kept in the
// prompt configuration.
package roster

import (
	"ai-concierge/config"
	"ai-concierge/internal/core/chat"
	"ai-concierge/internal/core/prompt"
	"ai-concierge/pkg/logger"
	"context"
	"errors"
	"strings"
)

var ErrEmptyQuestion = errors.New("question is empty")

type Student struct {
	Name   string `json:"name"`
	School string `json:"school"`
	Phone  string `json:"phone"`
}

type Prompts struct {
	System       string
	Students     string
	UserTemplate string
	NotFound     string
}

// PromptsFromConfig reads prompts.roster from config.Cfg.
func PromptsFromConfig() Prompts {
	p := config.Cfg.Prompts.Roster
	return Prompts{
		System:       p.System,
		Students:     p.Students,
		UserTemplate: p.UserTemplate,
		NotFound:     p.NotFound,
	}
}

type Service struct {
	client  chat.Client
	prompts Prompts
	user    prompt.Template
}

func NewService(client chat.Client, prompts Prompts) *Service {
	return &Service{
		client:  client,
		prompts: prompts,
		user:    prompt.New(prompts.UserTemplate, "students", "question"),
	}
}

// Ask returns the matching students. When nobody matches the result is a
// single record whose name carries the not-found phrase.
func (s *Service) Ask(ctx context.Context, question string) ([]Student, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	user, err := s.user.Render(map[string]any{
		"students": strings.TrimSpace(s.prompts.Students),
		"question": question,
	})
	if err != nil {
		return nil, err
	}

	answer, err := s.client.Complete(ctx, s.prompts.System, user)
	if err != nil {
		return nil, err
	}

	students, err := chat.DecodeRecords[Student](answer)
	if err != nil {
		if s.notFound(answer) {
			return s.notFoundRecord(), nil
		}
		logger.WithFields(map[string]interface{}{
			"module": config.ModuleChat,
			"answer": answer,
		}).Warn("roster: model answer is not a student list")
		return nil, err
	}

	students = dropEmpty(students)
	if len(students) == 0 {
		return s.notFoundRecord(), nil
	}
	if len(students) == 1 && s.notFound(students[0].Name) {
		return s.notFoundRecord(), nil
	}
	return students, nil
}

func (s *Service) notFound(text string) bool {
	return s.prompts.NotFound != "" && strings.Contains(text, s.prompts.NotFound)
}

func (s *Service) notFoundRecord() []Student {
	return []Student{{Name: s.prompts.NotFound}}
}

func dropEmpty(in []Student) []Student {
	out := in[:0]
	for _, st := range in {
		if strings.TrimSpace(st.Name+st.School+st.Phone) == "" {
			continue
		}
		out = append(out, st)
	}
	return out
}
