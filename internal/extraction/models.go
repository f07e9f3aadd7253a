package extraction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

// Supported extraction engines
const (
	EngineGemini = "gemini"
	EngineGPT    = "gpt"

	DefaultEngine = EngineGemini
)

// modelTable lists the models one engine accepts. Names starting with
// prefix are passed through verbatim; anything else goes through aliases
// and falls back to fallback.
type modelTable struct {
	prefix   string
	fallback string
	aliases  map[string]string
}

var modelTables = map[string]modelTable{
	EngineGemini: {
		prefix:   "gemini-",
		fallback: "gemini-flash-latest",
		aliases: map[string]string{
			"flash":      "gemini-flash-latest",
			"flash-2":    "gemini-2.5-flash",
			"flash-lite": "gemini-2.5-flash-lite",
		},
	},
	EngineGPT: {
		prefix:   "gpt-",
		fallback: "gpt-4o-mini",
		aliases: map[string]string{
			"mini": "gpt-4o-mini",
		},
	},
}

// ParseEngine validates an engine name. Matching is case-insensitive and
// an empty name selects the default engine.
func ParseEngine(name string) (string, error) {
	engine := strings.ToLower(strings.TrimSpace(name))
	if engine == "" {
		return DefaultEngine, nil
	}
	if _, ok := modelTables[engine]; !ok {
		return "", fmt.Errorf("%w: %q (expected one of %s)", entity.ErrUnknownEngine, name, strings.Join(Engines(), ", "))
	}
	return engine, nil
}

// Engines returns the supported engine names in sorted order
func Engines() []string {
	names := make([]string, 0, len(modelTables))
	for name := range modelTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultModel returns the model used when none is requested
func DefaultModel(engine string) string {
	return modelTables[engine].fallback
}

// ResolveModel maps a requested model name to the model identifier sent to
// the provider. It never fails for a supported engine: an empty or unknown
// name resolves to the engine default. Unsupported engines yield "".
func ResolveModel(engine, name string) string {
	table, ok := modelTables[engine]
	if !ok {
		return ""
	}

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return table.fallback
	case strings.HasPrefix(name, table.prefix):
		return name
	}

	if model, ok := table.aliases[strings.ToLower(name)]; ok {
		return model
	}
	return table.fallback
}
