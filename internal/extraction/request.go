package extraction

import (
	"fmt"
	"strings"
	"text/template"
)

// Request is a provider-neutral extraction call
type Request struct {
	Engine          string
	Model           string
	System          string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int
	// JSONMode asks the provider to constrain output to a JSON object.
	// Only the gpt engine supports it.
	JSONMode bool
}

// Builder assembles extraction requests from acquired text
type Builder struct {
	prompts *PromptConfig
	user    *template.Template
}

// NewBuilder parses the user template once so Build cannot fail on it later
func NewBuilder(prompts *PromptConfig) (*Builder, error) {
	tmpl, err := template.New("invoice_extraction").Parse(prompts.InvoiceExtraction.UserTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Builder{prompts: prompts, user: tmpl}, nil
}

// Build returns the request for engine with the model resolved and the
// prompt contract followed by text.
func (b *Builder) Build(engine, model, text string) (Request, error) {
	engine, err := ParseEngine(engine)
	if err != nil {
		return Request{}, err
	}

	prompt, err := renderTemplate(b.user, struct{ Text string }{Text: strings.TrimSpace(text)})
	if err != nil {
		return Request{}, err
	}

	cfg := b.prompts.InvoiceExtraction
	return Request{
		Engine:          engine,
		Model:           ResolveModel(engine, model),
		System:          cfg.System,
		Prompt:          prompt,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		JSONMode:        engine == EngineGPT,
	}, nil
}
