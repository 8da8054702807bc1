package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/archsim/internal/config"
)

const sampleDefs = `{
  "categories": [
    {"name": "Network", "items": [{"type": "load_balancer"}, {"type": "cdn"}]},
    {"name": "Data", "items": [{"type": "rdb"}, {"type": "cdn"}, {"type": ""}]}
  ]
}`

func TestParseComponents(t *testing.T) {
	c, err := ParseComponents([]byte(sampleDefs))
	require.NoError(t, err)

	assert.Equal(t, []string{"load_balancer", "cdn", "rdb"}, c.Types())
	assert.True(t, c.Contains("rdb"))
	assert.False(t, c.Contains("mainframe"))
	assert.Len(t, c.Categories(), 2)
	assert.Equal(t, "    - \"load_balancer\"\n    - \"cdn\"\n    - \"rdb\"\n", c.PromptList())
}

func TestParseComponentsErrors(t *testing.T) {
	for name, data := range map[string]string{
		"malformed": `{"categories": [`,
		"empty":     `{"categories": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseComponents([]byte(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrConfiguration))
		})
	}
}

func TestLoadComponents(t *testing.T) {
	_, err := LoadComponents(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfiguration))

	path := filepath.Join(t.TempDir(), "defs.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefs), 0o600))
	c, err := LoadComponents(path)
	require.NoError(t, err)
	assert.Len(t, c.Types(), 3)
}

func TestShippedComponentsFile(t *testing.T) {
	c, err := LoadComponents(filepath.Join("..", "..", "catalog", "architecture_defs.json"))
	require.NoError(t, err)
	assert.True(t, c.Contains("load_balancer"))
	assert.True(t, c.Contains("rdb"))
}
