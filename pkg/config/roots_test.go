package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testConfig() *Config {
	cfg := Default()
	cfg.CacheDir = "/var/cache/topd"
	cfg.FileRoots = map[string][]string{
		"base": {"/srv/salt"},
		"dev":  {"/srv/dev/salt", "/srv/salt"},
	}
	cfg.PillarRoots = map[string][]string{
		"base": {"/srv/pillar"},
	}
	return cfg
}

func TestEnvironmentsBaseFirst(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, []string{"base", "dev"}, cfg.Environments())

	// base is always present, even with no configured roots
	empty := Default()
	assert.Equal(t, []string{"base"}, empty.Environments())
}

func TestResolveEnvironments(t *testing.T) {
	// base moves to the front, remaining order is preserved
	assert.Equal(t, []string{"base", "prod", "dev"},
		ResolveEnvironments([]string{"prod", "dev", "base"}))
	assert.Equal(t, []string{"prod", "dev"},
		ResolveEnvironments([]string{"prod", "dev"}))
	assert.Equal(t, []string{"base", "dev"},
		ResolveEnvironments([]string{"base", "dev"}))
}

func TestCacheRootDirs(t *testing.T) {
	cfg := testConfig()

	roots := cfg.CacheRootDirs([]string{"base"})
	assert.Equal(t, []string{
		filepath.Join("/var/cache/topd", "files", "base"),
		filepath.Join("/var/cache/topd", "localfiles", "base"),
	}, roots["base"])

	assert.Equal(t, filepath.Join("/var/cache/topd", "files", "dev"), cfg.CacheDirFor("dev"))
}

func TestRootsByKind(t *testing.T) {
	cfg := testConfig()

	fileOnly := cfg.Roots([]string{"dev"}, FileRoots)
	assert.Equal(t, []string{"/srv/dev/salt", "/srv/salt"}, fileOnly["dev"])

	pillarOnly := cfg.Roots([]string{"base"}, PillarRoots)
	assert.Equal(t, []string{"/srv/pillar"}, pillarOnly["base"])

	// cache roots come first when both kinds are included
	both := cfg.Roots([]string{"base"}, CacheRoots, FileRoots)
	assert.Equal(t, []string{
		filepath.Join("/var/cache/topd", "files", "base"),
		filepath.Join("/var/cache/topd", "localfiles", "base"),
		"/srv/salt",
	}, both["base"])
}

func TestRootsDeduplicates(t *testing.T) {
	cfg := testConfig()
	cfg.PillarRoots["dev"] = []string{"/srv/salt"}

	roots := cfg.Roots([]string{"dev"}, FileRoots, PillarRoots)
	assert.Equal(t, []string{"/srv/dev/salt", "/srv/salt"}, roots["dev"])
}
