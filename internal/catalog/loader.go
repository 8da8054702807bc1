package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/archsim/internal/config"
	"github.com/terra-clan/archsim/internal/models"
)

//go:embed scenarios.yaml
var defaultScenarios []byte

//go:embed evaluation_prompt.txt
var evaluationTemplate string

// Catalog is the read-only table of scenarios, persona overlays and difficulty tiers.
// It is built once at startup and never mutated.
type Catalog struct {
	scenarios    map[models.ScenarioID]*models.Scenario
	order        []models.ScenarioID
	personas     map[models.PersonaRole]string
	difficulties map[models.Difficulty]models.DifficultySpec

	fallbackPersona string
	customFallback  string
	chatDirective   string
}

// catalogFile represents the YAML structure
type catalogFile struct {
	FallbackPersona string                           `yaml:"fallback_persona"`
	CustomFallback  string                           `yaml:"custom_fallback"`
	ChatDirective   string                           `yaml:"chat_directive"`
	Scenarios       []scenarioFile                   `yaml:"scenarios"`
	Personas        map[string]string                `yaml:"personas"`
	Difficulties    map[string]models.DifficultySpec `yaml:"difficulties"`
}

type scenarioFile struct {
	ID            string                `yaml:"id"`
	Title         string                `yaml:"title"`
	Description   string                `yaml:"description"`
	Requirements  models.DifficultySpec `yaml:"requirements"`
	HiddenContext string                `yaml:"hidden_context"`
}

var requiredRoles = []models.PersonaRole{models.RoleCEO, models.RoleCTO, models.RoleCFO, models.RoleGeneric}

var requiredDifficulties = []models.Difficulty{
	models.DifficultySmall, models.DifficultyMedium, models.DifficultyLarge, models.DifficultyDefault,
}

// Load reads the catalog from a YAML file, or the embedded catalog when path is empty
func Load(path string) (*Catalog, error) {
	data := defaultScenarios
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read scenario catalog: %v", config.ErrConfiguration, err)
		}
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}

	slog.Info("scenario catalog loaded",
		"source", sourceName(path),
		"scenarios", len(c.scenarios),
		"personas", len(c.personas),
	)

	return c, nil
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultScenarios)
}

// Parse builds a catalog from YAML data
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse scenario catalog: %v", config.ErrConfiguration, err)
	}

	if f.FallbackPersona == "" || f.CustomFallback == "" || f.ChatDirective == "" {
		return nil, fmt.Errorf("%w: fallback_persona, custom_fallback and chat_directive are required", config.ErrConfiguration)
	}

	c := &Catalog{
		scenarios:       make(map[models.ScenarioID]*models.Scenario, len(f.Scenarios)),
		personas:        make(map[models.PersonaRole]string, len(f.Personas)),
		difficulties:    make(map[models.Difficulty]models.DifficultySpec, len(f.Difficulties)),
		fallbackPersona: f.FallbackPersona,
		customFallback:  f.CustomFallback,
		chatDirective:   f.ChatDirective,
	}

	for _, s := range f.Scenarios {
		id := models.ScenarioID(s.ID)
		if s.ID == "" {
			return nil, fmt.Errorf("%w: scenario id is required", config.ErrConfiguration)
		}
		if id.IsCustom() {
			return nil, fmt.Errorf("%w: scenario id %q is reserved", config.ErrConfiguration, s.ID)
		}
		if _, dup := c.scenarios[id]; dup {
			return nil, fmt.Errorf("%w: duplicate scenario %q", config.ErrConfiguration, s.ID)
		}
		if s.HiddenContext == "" {
			return nil, fmt.Errorf("%w: scenario %q has no hidden_context", config.ErrConfiguration, s.ID)
		}

		c.scenarios[id] = &models.Scenario{
			ID:            id,
			Title:         s.Title,
			Description:   s.Description,
			Requirements:  s.Requirements,
			HiddenContext: s.HiddenContext,
		}
		c.order = append(c.order, id)
	}

	for role, overlay := range f.Personas {
		c.personas[models.PersonaRole(role)] = overlay
	}
	for _, role := range requiredRoles {
		if c.personas[role] == "" {
			return nil, fmt.Errorf("%w: persona overlay %q is required", config.ErrConfiguration, role)
		}
	}

	for tier, spec := range f.Difficulties {
		c.difficulties[models.Difficulty(tier)] = spec
	}
	for _, tier := range requiredDifficulties {
		if _, ok := c.difficulties[tier]; !ok {
			return nil, fmt.Errorf("%w: difficulty %q is required", config.ErrConfiguration, tier)
		}
	}

	return c, nil
}

// Scenario returns a fixed scenario by id
func (c *Catalog) Scenario(id models.ScenarioID) (*models.Scenario, bool) {
	s, ok := c.scenarios[id]
	return s, ok
}

// HiddenContext returns the hidden context for a fixed scenario.
// Unknown ids get the generic customer persona.
func (c *Catalog) HiddenContext(id models.ScenarioID) string {
	if s, ok := c.scenarios[id]; ok {
		return s.HiddenContext
	}
	return c.fallbackPersona
}

// FallbackPersona is the persona text used for unknown scenario ids
func (c *Catalog) FallbackPersona() string {
	return c.fallbackPersona
}

// CustomFallback is the base instruction for custom scenarios sent without a system turn
func (c *Catalog) CustomFallback() string {
	return c.customFallback
}

// ChatDirective is appended to fixed-scenario hidden contexts
func (c *Catalog) ChatDirective() string {
	return c.chatDirective
}

// Overlay returns the behavioral overlay for a role; unknown roles get the generic overlay
func (c *Catalog) Overlay(role models.PersonaRole) string {
	if o, ok := c.personas[role]; ok {
		return o
	}
	return c.personas[models.RoleGeneric]
}

// DifficultySpec returns the canonical requirements for a difficulty tag.
// Anything outside small, medium and large resolves to the default tier.
func (c *Catalog) DifficultySpec(tag string) models.DifficultySpec {
	switch d := models.Difficulty(tag); d {
	case models.DifficultySmall, models.DifficultyMedium, models.DifficultyLarge:
		return c.difficulties[d]
	default:
		return c.difficulties[models.DifficultyDefault]
	}
}

// IsKnownDifficulty reports whether tag names one of the explicit tiers
func IsKnownDifficulty(tag string) bool {
	switch models.Difficulty(tag) {
	case models.DifficultySmall, models.DifficultyMedium, models.DifficultyLarge:
		return true
	}
	return false
}

// ListScenarios returns the public view of every fixed scenario in catalog order
func (c *Catalog) ListScenarios() []models.ScenarioSummary {
	result := make([]models.ScenarioSummary, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.scenarios[id].Summary())
	}
	return result
}

// Roles returns the configured persona roles, sorted
func (c *Catalog) Roles() []models.PersonaRole {
	roles := make([]models.PersonaRole, 0, len(c.personas))
	for r := range c.personas {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// EvaluationTemplate returns the static evaluation instructions with their placeholders
func EvaluationTemplate() string {
	return evaluationTemplate
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
