package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adoptioncheck/radar/internal/core"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.Technologies)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, []string{"enterprise", "fintech"}, cfg.Lists())

	// Every built-in entry carries at least one source identifier.
	for _, spec := range cfg.Technologies {
		found := false
		for _, src := range core.Sources {
			if spec.HasSource(src) {
				found = true
			}
		}
		assert.True(t, found, "%s has no source identifiers", spec.Name)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radar.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadOverridesKnobsKeepsCatalog(t *testing.T) {
	path := writeConfig(t, `{
		"concurrency": 2,
		"requestTimeout": "5s",
		"hypeThreshold": 12.5
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.RequestTimeout))
	assert.Equal(t, 12.5, cfg.HypeThreshold)
	assert.NotEmpty(t, cfg.Technologies, "a file without a catalog keeps the built-ins")
}

func TestLoadReplacesCatalog(t *testing.T) {
	path := writeConfig(t, `{
		"technologies": [
			{"name": "stripe", "category": "fintech_infrastructure", "list": "fintech", "npm": "stripe", "pypi": "stripe"}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Technologies, 1)
	assert.Equal(t, "stripe", cfg.Technologies[0].Name)
	assert.Equal(t, []string{"fintech"}, cfg.Lists())
	assert.Len(t, cfg.ForList("fintech"), 1)
	assert.Empty(t, cfg.ForList("enterprise"))
}

func TestLoadResolvesPURLs(t *testing.T) {
	path := writeConfig(t, `{
		"technologies": [
			{"name": "vectorbt", "category": "trading_backtesting", "list": "fintech",
			 "purls": ["pkg:pypi/vectorbt", "pkg:github/polakowo/vectorbt"]}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	spec := cfg.Technologies[0]
	assert.Equal(t, "vectorbt", spec.PyPIPackage)
	assert.Equal(t, "polakowo/vectorbt", spec.GitHubRepo)
	assert.Empty(t, spec.NPMPackage)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := writeConfig(t, `{not json`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoCatalog))
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoCatalog))
}

func TestValidateRejectsDuplicates(t *testing.T) {
	cfg := Default()
	cfg.Technologies = []core.TechnologySpec{
		{Name: "stripe", Category: "fintech_infrastructure", List: "fintech", NPMPackage: "stripe"},
		{Name: "stripe", Category: "fintech_infrastructure", List: "fintech", PyPIPackage: "stripe"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateRejectsUnknownList(t *testing.T) {
	cfg := Default()
	cfg.Technologies = []core.TechnologySpec{
		{Name: "x", Category: "quant_tools", List: "hobby"},
	}

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownCategory(t *testing.T) {
	cfg := Default()
	cfg.Technologies = []core.TechnologySpec{
		{Name: "x", Category: "totally!!bogus@@category", List: "enterprise"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Category")
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"750ms"`)))
	assert.Equal(t, 750*time.Millisecond, time.Duration(d))

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"750ms"`, string(out))

	assert.Error(t, d.UnmarshalJSON([]byte(`"not-a-duration"`)))
}
