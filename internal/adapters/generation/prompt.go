package generation

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	portssvc "github.com/SscSPs/fortune_desk/internal/core/ports/services"
)

const defaultPrompt = `You are an experienced fortune teller writing a personal {{.TypeName}} reading.

Client details:
{{- range .Fields}}
- {{.Name}}: {{.Value}}
{{- end}}

Write a warm, specific reading of about 800 words. Address the client's
consultation directly, structure the reading with short headed sections and
close with practical advice. Do not mention that you are an AI.
`

type promptField struct {
	Name  string
	Value string
}

type promptData struct {
	TypeName string
	Fields   []promptField
}

// PromptRenderer turns a generation input into the text sent to the model.
type PromptRenderer struct {
	tmpl *template.Template
}

// NewPromptRenderer parses text as a text/template. An empty text selects
// the built-in prompt.
func NewPromptRenderer(text string) (*PromptRenderer, error) {
	if text == "" {
		text = defaultPrompt
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return &PromptRenderer{tmpl: tmpl}, nil
}

// Render fills the template. Input fields are listed in name order.
func (r *PromptRenderer) Render(in portssvc.GenerationInput) (string, error) {
	names := make([]string, 0, len(in.Input))
	for k := range in.Input {
		names = append(names, k)
	}
	sort.Strings(names)

	data := promptData{TypeName: in.TypeName}
	for _, name := range names {
		value := strings.TrimSpace(fmt.Sprint(in.Input[name]))
		if value == "" {
			continue
		}
		data.Fields = append(data.Fields, promptField{Name: name, Value: value})
	}

	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}
