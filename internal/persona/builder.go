// Package persona assembles the system instruction a simulated stakeholder answers under.
package persona

import (
	"strings"

	"github.com/terra-clan/archsim/internal/catalog"
	"github.com/terra-clan/archsim/internal/models"
)

// Instruction is the assembled persona instruction
type Instruction struct {
	// Context is the scenario knowledge: a hidden context, the content of a
	// custom scenario's leading system turn, or one of the fallback texts.
	Context string
	// Directive tells a fixed-scenario persona how to answer. Empty for custom scenarios.
	Directive string
	Overlay   string
	// Consumed is the number of leading turns absorbed into the instruction (0 or 1).
	Consumed int
}

// String renders the instruction as the single text sent ahead of the transcript
func (i Instruction) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{i.Context, i.Directive, i.Overlay} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Builder builds instructions from the read-only catalog
type Builder struct {
	catalog *catalog.Catalog
}

// NewBuilder creates a builder over a loaded catalog
func NewBuilder(c *catalog.Catalog) *Builder {
	return &Builder{catalog: c}
}

// Build assembles the instruction for a scenario and partner role.
// For custom scenarios a leading system turn supplies the context and is consumed.
func (b *Builder) Build(scenarioID models.ScenarioID, role models.PersonaRole, turns []models.ChatTurn) Instruction {
	inst := Instruction{Overlay: b.catalog.Overlay(role)}

	if scenarioID.IsCustom() {
		if len(turns) > 0 && turns[0].Role == models.TurnSystem {
			inst.Context = turns[0].Content
			inst.Consumed = 1
		}
		if inst.Context == "" {
			inst.Context = b.catalog.CustomFallback()
		}
		return inst
	}

	inst.Context = b.catalog.HiddenContext(scenarioID)
	inst.Directive = b.catalog.ChatDirective()
	return inst
}
