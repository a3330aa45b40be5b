package paths

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nrgaway/topd/pkg/render"
)

// Kind is the closed set of path forms a resolver can place a path into.
type Kind int

const (
	KindUnknown Kind = iota
	// KindRelative is a root-relative path like "salt/init.sls".
	KindRelative
	// KindState is a dotted logical state name like "salt.minion".
	KindState
	// KindCache is an absolute path under the cache directory.
	KindCache
	// KindLocal is an absolute (optionally file://) path outside the cache.
	KindLocal
	// KindTop is a topd:// URL naming a logical file under an environment
	// root.
	KindTop
)

func (k Kind) String() string {
	switch k {
	case KindRelative:
		return "relpath"
	case KindState:
		return "state"
	case KindCache:
		return "cache_path"
	case KindLocal:
		return "local_path"
	case KindTop:
		return "topd_path"
	}
	return "unknown"
}

// Classify places a path into exactly one Kind. The order is first-match-
// wins and must not change: a relative path and a logical state name can be
// textually ambiguous ("salt" is both), and relative interpretation takes
// priority.
func (r *Resolver) Classify(path, saltenv string) Kind {
	if saltenv == "" {
		saltenv = r.Saltenv(path)
	}
	path = normPath(path)

	switch {
	case r.isRelative(path, saltenv):
		return KindRelative
	case r.isState(path):
		return KindState
	case r.isCachePath(path):
		return KindCache
	case r.isLocalPath(path):
		return KindLocal
	case IsTopURL(path):
		return KindTop
	}
	return KindUnknown
}

// isRelative: not absolute, not a scheme URL, and not a known state name.
func (r *Resolver) isRelative(path, saltenv string) bool {
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" {
		return false
	}
	if filepath.IsAbs(u.Path) {
		return false
	}
	return !r.isState(u.Path)
}

// isState: exact match against the known logical names of the searched
// environments.
func (r *Resolver) isState(path string) bool {
	states, err := r.States()
	if err != nil {
		return false
	}
	for _, names := range states {
		for _, name := range names {
			if name == path {
				return true
			}
		}
	}
	return false
}

// isCachePath: absolute (or file://) path whose prefix is the cache dir.
func (r *Resolver) isCachePath(path string) bool {
	local, ok := localizePath(path)
	if !ok {
		return false
	}
	return hasPathPrefix(local, r.cfg.CacheDir)
}

// isLocalPath: absolute (or file://) path not under the cache dir.
func (r *Resolver) isLocalPath(path string) bool {
	local, ok := localizePath(path)
	if !ok {
		return false
	}
	return filepath.IsAbs(local) && !hasPathPrefix(local, r.cfg.CacheDir)
}

// IsTopURL reports whether path uses the topd:// scheme.
func IsTopURL(path string) bool {
	return strings.HasPrefix(path, render.Scheme)
}

// TopURLPath strips the scheme, returning the embedded relative path.
func TopURLPath(path string) string {
	return strings.TrimPrefix(path, render.Scheme)
}

// MakeTopURL attaches the scheme to a relative path.
func MakeTopURL(relPath string) string {
	return render.Scheme + filepath.ToSlash(relPath)
}

// localizePath unwraps an optional file:// scheme and reports whether the
// result is a plain filesystem path.
func localizePath(path string) (string, bool) {
	if strings.HasPrefix(path, "file://") {
		return strings.TrimPrefix(path, "file://"), true
	}
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" {
		return "", false
	}
	return path, true
}

func normPath(path string) string {
	u, err := url.Parse(path)
	if err == nil && u.Scheme != "" {
		return path
	}
	return filepath.Clean(path)
}

func hasPathPrefix(path, dir string) bool {
	if dir == "" {
		return false
	}
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
