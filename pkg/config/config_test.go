package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrgaway/topd/pkg/config"
	"github.com/nrgaway/topd/pkg/testutil"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "_topd", cfg.ControlDir)
	assert.Equal(t, "top.sls", cfg.StateTop)
	assert.Equal(t, config.StrategyMerge, cfg.MergingStrategy)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.NotNil(t, cfg.FileRoots)
	assert.NotNil(t, cfg.PillarRoots)
}

func TestLoadBytes(t *testing.T) {
	cfg, err := config.LoadBytes([]byte(`
cache_dir = "/var/cache/topd"
default_top = "base"

[file_roots]
base = ["/srv/salt"]
dev = ["/srv/dev/salt", "/srv/salt"]
`))
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/topd", cfg.CacheDir)
	assert.Equal(t, "base", cfg.DefaultTop)
	assert.Equal(t, []string{"/srv/salt"}, cfg.FileRoots["base"])
	assert.Equal(t, []string{"/srv/dev/salt", "/srv/salt"}, cfg.FileRoots["dev"])

	// Unset keys keep their defaults
	assert.Equal(t, "_topd", cfg.ControlDir)
}

func TestLoadBytesInvalid(t *testing.T) {
	_, err := config.LoadBytes([]byte(`cache_dir = [`))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	tmp := t.TempDir()
	path := testutil.CreateFile(t, tmp, "topd.toml", `
control_dir = "_tops"

[file_roots]
base = ["/srv/salt"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "_tops", cfg.ControlDir)
	assert.Equal(t, []string{"/srv/salt"}, cfg.FileRoots["base"])
}

func TestLoadYAMLFile(t *testing.T) {
	tmp := t.TempDir()
	path := testutil.CreateFile(t, tmp, "topd.yaml", `
control_dir: _tops
file_roots:
  base:
    - /srv/salt
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "_tops", cfg.ControlDir)
	assert.Equal(t, []string{"/srv/salt"}, cfg.FileRoots["base"])
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TOPD_CACHE_DIR", "/tmp/topd-cache")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/topd-cache", cfg.CacheDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestGenerateConfigContent(t *testing.T) {
	content, err := config.GenerateConfigContent()
	require.NoError(t, err)

	assert.Contains(t, content, "control_dir")
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			continue
		}
		assert.True(t, strings.HasPrefix(trimmed, "#"), "line not commented: %q", line)
	}
}
