package config

import (
	"path/filepath"
	"sort"
)

// Environments returns every known environment, base first. "base" is always
// present even when no roots are configured for it.
func (c *Config) Environments() []string {
	seen := map[string]struct{}{"base": {}}
	for saltenv := range c.FileRoots {
		seen[saltenv] = struct{}{}
	}
	for saltenv := range c.PillarRoots {
		seen[saltenv] = struct{}{}
	}

	envs := make([]string, 0, len(seen))
	for saltenv := range seen {
		envs = append(envs, saltenv)
	}
	sort.Strings(envs)
	return ResolveEnvironments(envs)
}

// ResolveEnvironments moves "base" to the front of the list when present.
// This is a system-wide invariant, not a sort: searches must always consult
// base first, and the rest of the list keeps its order.
func ResolveEnvironments(saltenvs []string) []string {
	for i, saltenv := range saltenvs {
		if saltenv == "base" {
			if i == 0 {
				return saltenvs
			}
			reordered := make([]string, 0, len(saltenvs))
			reordered = append(reordered, "base")
			reordered = append(reordered, saltenvs[:i]...)
			reordered = append(reordered, saltenvs[i+1:]...)
			return reordered
		}
	}
	return saltenvs
}

// CacheRootDirs synthesizes the cache roots for the given environments:
// {CacheDir}/files/{env} and {CacheDir}/localfiles/{env}.
func (c *Config) CacheRootDirs(saltenvs []string) map[string][]string {
	roots := make(map[string][]string, len(saltenvs))
	for _, saltenv := range saltenvs {
		roots[saltenv] = []string{
			filepath.Join(c.CacheDir, "files", saltenv),
			filepath.Join(c.CacheDir, "localfiles", saltenv),
		}
	}
	return roots
}

// CacheDirFor returns the primary cache directory for one environment.
func (c *Config) CacheDirFor(saltenv string) string {
	return filepath.Join(c.CacheDir, "files", saltenv)
}

// Roots gathers the directory roots for the given environments, restricted
// to the included root kinds (all kinds when none are given). The result maps
// environment to an ordered, deduplicated directory list.
func (c *Config) Roots(saltenvs []string, include ...RootKind) map[string][]string {
	if len(saltenvs) == 0 {
		saltenvs = c.Environments()
	} else {
		saltenvs = ResolveEnvironments(saltenvs)
	}
	if len(include) == 0 {
		include = AllRootKinds
	}

	roots := make(map[string][]string)
	add := func(saltenv string, dirs []string) {
		for _, dir := range dirs {
			if !containsString(roots[saltenv], dir) {
				roots[saltenv] = append(roots[saltenv], dir)
			}
		}
	}

	for _, kind := range include {
		switch kind {
		case CacheRoots:
			for saltenv, dirs := range c.CacheRootDirs(saltenvs) {
				add(saltenv, dirs)
			}
		case FileRoots:
			for _, saltenv := range saltenvs {
				add(saltenv, c.FileRoots[saltenv])
			}
		case PillarRoots:
			for _, saltenv := range saltenvs {
				add(saltenv, c.PillarRoots[saltenv])
			}
		}
	}
	return roots
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
