package testutil

import (
	"path/filepath"
	"testing"

	"github.com/nrgaway/topd/pkg/config"
)

// RootsConfig builds a configuration whose file roots live in a fresh temp
// directory, one root per environment at <tmp>/<env>, with the cache
// directory at <tmp>/cache. The temp directory is cleaned up with the test.
func RootsConfig(t *testing.T, saltenvs ...string) (*config.Config, string) {
	t.Helper()

	if len(saltenvs) == 0 {
		saltenvs = []string{"base"}
	}
	tmp := t.TempDir()

	cfg := config.Default()
	cfg.CacheDir = filepath.Join(tmp, "cache")
	cfg.FileRoots = make(map[string][]string, len(saltenvs))
	for _, saltenv := range saltenvs {
		root := CreateDir(t, tmp, saltenv)
		cfg.FileRoots[saltenv] = []string{root}
	}
	return cfg, tmp
}

// Root returns the file root RootsConfig created for one environment.
func Root(tmp, saltenv string) string {
	return filepath.Join(tmp, saltenv)
}
