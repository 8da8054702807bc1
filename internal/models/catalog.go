package models

// ScenarioID identifies an interview scenario
type ScenarioID string

const (
	ScenarioInternalTool ScenarioID = "internal_tool"
	ScenarioSNSApp       ScenarioID = "sns_app"
	ScenarioCustom       ScenarioID = "custom" // Learner-authored; hidden context arrives as the first system turn
)

// IsCustom reports whether the scenario is learner-authored
func (id ScenarioID) IsCustom() bool {
	return id == ScenarioCustom
}

// PersonaRole selects the behavioral overlay for the simulated stakeholder
type PersonaRole string

const (
	RoleCEO     PersonaRole = "ceo"
	RoleCTO     PersonaRole = "cto"
	RoleCFO     PersonaRole = "cfo"
	RoleGeneric PersonaRole = "generic"
)

// NormalizeRole maps a client supplied role onto a known role.
// Empty means the default CEO persona, anything unknown is generic.
func NormalizeRole(raw string) PersonaRole {
	switch PersonaRole(raw) {
	case "":
		return RoleCEO
	case RoleCEO, RoleCTO, RoleCFO:
		return PersonaRole(raw)
	default:
		return RoleGeneric
	}
}

// Difficulty tags a custom scenario
type Difficulty string

const (
	DifficultySmall   Difficulty = "small"
	DifficultyMedium  Difficulty = "medium"
	DifficultyLarge   Difficulty = "large"
	DifficultyDefault Difficulty = "default" // Fallback for any unrecognized tag
)

// DifficultySpec is the canonical requirement set for a difficulty
type DifficultySpec struct {
	Users        string `json:"users" yaml:"users"`
	Traffic      string `json:"traffic" yaml:"traffic"`
	Budget       string `json:"budget" yaml:"budget"`
	Availability string `json:"availability" yaml:"availability"`
}

// AsMap returns the spec in the shape it takes inside an evaluation payload
func (s DifficultySpec) AsMap() map[string]any {
	return map[string]any{
		"users":        s.Users,
		"traffic":      s.Traffic,
		"budget":       s.Budget,
		"availability": s.Availability,
	}
}

// Scenario is a fixed interview scenario including its hidden context
type Scenario struct {
	ID            ScenarioID     `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Requirements  DifficultySpec `json:"requirements"`
	HiddenContext string         `json:"-"`
}

// ScenarioSummary is the public view of a scenario, without hidden context
type ScenarioSummary struct {
	ID           ScenarioID     `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Requirements DifficultySpec `json:"requirements"`
}

// Summary returns the public part of the scenario
func (s *Scenario) Summary() ScenarioSummary {
	return ScenarioSummary{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		Requirements: s.Requirements,
	}
}

// ComponentCategory groups diagram component types the evaluator accepts
type ComponentCategory struct {
	Name  string          `json:"name"`
	Items []ComponentItem `json:"items"`
}

// ComponentItem is one diagram component type
type ComponentItem struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}
