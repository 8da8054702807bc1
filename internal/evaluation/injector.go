package evaluation

import (
	"log/slog"

	"github.com/terra-clan/archsim/internal/catalog"
)

// Payload keys read by the injector
const (
	keyScenario     = "scenario"
	keyIsCustom     = "isCustom"
	keyDifficulty   = "difficulty"
	keyRequirements = "requirements"
)

// InjectRequirements replaces the requirements of a custom scenario with the
// canonical spec for its declared difficulty, whatever the client sent.
// Payloads without a custom scenario are left untouched. It reports whether
// the payload was rewritten.
func InjectRequirements(payload map[string]any, c *catalog.Catalog) bool {
	scenario, ok := payload[keyScenario].(map[string]any)
	if !ok {
		return false
	}

	if isCustom, _ := scenario[keyIsCustom].(bool); !isCustom {
		return false
	}

	tag, _ := scenario[keyDifficulty].(string)
	if !catalog.IsKnownDifficulty(tag) {
		slog.Warn("custom scenario difficulty not recognized, using default requirements",
			"difficulty", scenario[keyDifficulty],
		)
	}

	scenario[keyRequirements] = c.DifficultySpec(tag).AsMap()

	slog.Info("injected canonical requirements", "difficulty", tag)
	return true
}
