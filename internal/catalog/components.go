package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/terra-clan/archsim/internal/config"
	"github.com/terra-clan/archsim/internal/models"
)

// Components is the whitelist of diagram component types the evaluator accepts
type Components struct {
	categories []models.ComponentCategory
	types      []string
}

type componentsFile struct {
	Categories []models.ComponentCategory `json:"categories"`
}

// LoadComponents reads the architecture definitions file.
// A missing, malformed or empty file is a configuration error.
func LoadComponents(path string) (*Components, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read component whitelist %s: %v", config.ErrConfiguration, path, err)
	}

	c, err := ParseComponents(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Info("component whitelist loaded", "path", path, "categories", len(c.categories), "types", len(c.types))
	return c, nil
}

// ParseComponents builds a whitelist from architecture definitions JSON
func ParseComponents(data []byte) (*Components, error) {
	var f componentsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse component whitelist: %v", config.ErrConfiguration, err)
	}

	types := lo.Uniq(lo.FlatMap(f.Categories, func(c models.ComponentCategory, _ int) []string {
		return lo.FilterMap(c.Items, func(item models.ComponentItem, _ int) (string, bool) {
			return item.Type, item.Type != ""
		})
	}))
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: component whitelist defines no component types", config.ErrConfiguration)
	}

	return &Components{categories: f.Categories, types: types}, nil
}

// Types returns the component type names in file order
func (c *Components) Types() []string {
	return append([]string(nil), c.types...)
}

// Categories returns the categorized definitions as loaded
func (c *Components) Categories() []models.ComponentCategory {
	return append([]models.ComponentCategory(nil), c.categories...)
}

// Contains reports whether a type is whitelisted
func (c *Components) Contains(componentType string) bool {
	return lo.Contains(c.types, componentType)
}

// PromptList renders the whitelist as an indented YAML-style list for prompt templates
func (c *Components) PromptList() string {
	var b strings.Builder
	for _, t := range c.types {
		fmt.Fprintf(&b, "    - %q\n", t)
	}
	return b.String()
}
