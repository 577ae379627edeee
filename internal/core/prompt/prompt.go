// Package prompt renders f-string prompt templates ("{name}" placeholders)
// and the retrieved-context block handed to the chat model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

type Template struct {
	tpl prompts.PromptTemplate
}

// New wraps text as an f-string template expecting vars.
func New(text string, vars ...string) Template {
	return Template{tpl: prompts.PromptTemplate{
		Template:       text,
		InputVariables: vars,
		TemplateFormat: prompts.TemplateFormatFString,
	}}
}

// Render fills every declared variable; a missing one is an error.
func (t Template) Render(values map[string]any) (string, error) {
	for _, v := range t.tpl.InputVariables {
		if _, ok := values[v]; !ok {
			return "", fmt.Errorf("prompt: missing variable %q", v)
		}
	}
	out, err := t.tpl.Format(values)
	if err != nil {
		return "", fmt.Errorf("prompt: render: %w", err)
	}
	return out, nil
}

// RenderContext lays out retrieved contents in retrieval order as
// "[i] content" blocks separated by a blank line. Blank contents are skipped
// without consuming a number.
func RenderContext(contents []string) string {
	var b strings.Builder
	n := 0
	for _, c := range contents {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if n > 0 {
			b.WriteString("\n\n")
		}
		n++
		fmt.Fprintf(&b, "[%d] %s", n, c)
	}
	return b.String()
}
