package extraction

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// PromptConfig holds the extraction prompt contract and model parameters
type PromptConfig struct {
	InvoiceExtraction struct {
		Temperature     float32 `yaml:"temperature"`
		MaxOutputTokens int     `yaml:"max_output_tokens"`
		System          string  `yaml:"system"`
		UserTemplate    string  `yaml:"user_template"`
	} `yaml:"invoice_extraction"`
}

// DefaultPrompts returns the prompt contract compiled into the binary
func DefaultPrompts() (*PromptConfig, error) {
	return parsePrompts(defaultPromptsYAML)
}

// LoadPrompts loads prompt configuration from a YAML file. An empty path
// selects the built-in prompts.
func LoadPrompts(promptsPath string) (*PromptConfig, error) {
	if promptsPath == "" {
		return DefaultPrompts()
	}

	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return parsePrompts(data)
}

func parsePrompts(data []byte) (*PromptConfig, error) {
	var prompts PromptConfig
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if prompts.InvoiceExtraction.UserTemplate == "" {
		return nil, errors.New("prompts: invoice_extraction.user_template is empty")
	}
	return &prompts, nil
}

// renderTemplate renders a template with provided data
func renderTemplate(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
