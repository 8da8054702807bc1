package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/archsim/internal/catalog"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func TestInjectRequirementsOverwritesClientValues(t *testing.T) {
	c := defaultCatalog(t)

	for _, tag := range []string{"small", "medium", "large"} {
		t.Run(tag, func(t *testing.T) {
			payload := map[string]any{
				"scenario": map[string]any{
					"isCustom":     true,
					"difficulty":   tag,
					"requirements": map[string]any{"users": "1B", "budget": "unlimited"},
				},
			}

			require.True(t, InjectRequirements(payload, c))

			scenario := payload["scenario"].(map[string]any)
			assert.Equal(t, c.DifficultySpec(tag).AsMap(), scenario["requirements"])
		})
	}
}

func TestInjectRequirementsSmallExample(t *testing.T) {
	c := defaultCatalog(t)
	payload := map[string]any{
		"scenario": map[string]any{"isCustom": true, "difficulty": "small", "requirements": map[string]any{"users": "1B"}},
		"nodes":    []any{},
		"edges":    []any{},
	}

	InjectRequirements(payload, c)

	reqs := payload["scenario"].(map[string]any)["requirements"].(map[string]any)
	assert.Equal(t, "50〜100人程度", reqs["users"])
	assert.Equal(t, "月額5,000円以内 (可能な限り安く)", reqs["budget"])
	assert.NotEqual(t, "1B", reqs["users"])
}

func TestInjectRequirementsFallback(t *testing.T) {
	c := defaultCatalog(t)
	fallback := map[string]any{
		"users":        "10万DAU",
		"traffic":      "Standard",
		"budget":       "Standard",
		"availability": "High",
	}

	cases := map[string]map[string]any{
		"absent":       {"isCustom": true, "requirements": map[string]any{"users": "1B"}},
		"misspelled":   {"isCustom": true, "difficulty": "smal", "requirements": "AI決定"},
		"unknown":      {"isCustom": true, "difficulty": "unknown"},
		"not a string": {"isCustom": true, "difficulty": 3},
		"uppercase":    {"isCustom": true, "difficulty": "LARGE"},
	}

	for name, scenario := range cases {
		t.Run(name, func(t *testing.T) {
			payload := map[string]any{"scenario": scenario}
			require.True(t, InjectRequirements(payload, c))
			assert.Equal(t, fallback, scenario["requirements"])
		})
	}
}

func TestInjectRequirementsSkipsNonCustom(t *testing.T) {
	c := defaultCatalog(t)

	cases := map[string]map[string]any{
		"fixed scenario":   {"scenario": map[string]any{"id": "sns_app", "requirements": map[string]any{"users": "1B"}}},
		"isCustom false":   {"scenario": map[string]any{"isCustom": false, "difficulty": "small", "requirements": "x"}},
		"isCustom string":  {"scenario": map[string]any{"isCustom": "true", "difficulty": "small", "requirements": "x"}},
		"scenario missing": {"nodes": []any{}},
		"scenario scalar":  {"scenario": "custom"},
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, InjectRequirements(payload, c))
		})
	}

	untouched := cases["isCustom false"]["scenario"].(map[string]any)
	assert.Equal(t, "x", untouched["requirements"])
}
