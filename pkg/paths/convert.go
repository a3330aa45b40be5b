package paths

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/nrgaway/topd/pkg/config"
	"github.com/nrgaway/topd/pkg/errors"
	"github.com/nrgaway/topd/pkg/fileinfo"
	"github.com/nrgaway/topd/pkg/matcher"
	"github.com/nrgaway/topd/pkg/render"
)

// Relative converts any path form to the root-relative path every other
// conversion builds on. Unresolvable paths yield a render error naming the
// path.
func (r *Resolver) Relative(path, saltenv string) (string, error) {
	path = normPath(path)
	if saltenv == "" {
		saltenv = r.Saltenv(path)
	}

	switch r.Classify(path, saltenv) {
	case KindRelative:
		return path, nil

	case KindState:
		records, err := r.Find(nil, nil)
		if err != nil {
			return "", err
		}
		for _, saltenv := range r.Saltenvs(saltenv) {
			for _, record := range records {
				if record.Saltenv == saltenv && render.StateName(record.RelPath) == path {
					return record.RelPath, nil
				}
			}
		}

	case KindCache:
		local, _ := localizePath(path)
		for _, saltenv := range r.Saltenvs(saltenv) {
			for _, dir := range r.cfg.CacheRootDirs([]string{saltenv})[saltenv] {
				if hasPathPrefix(local, dir) {
					return filepath.Rel(dir, local)
				}
			}
		}

	case KindLocal:
		local, _ := localizePath(path)
		for _, saltenv := range r.Saltenvs(saltenv) {
			for _, root := range r.rootDirs(saltenv) {
				if hasPathPrefix(local, root) {
					return filepath.Rel(root, local)
				}
			}
		}

	case KindTop:
		return TopURLPath(path), nil
	}

	return "", errors.Newf(errors.ErrRender, "could not find relpath for %s", path).
		WithDetail("path", path).
		WithDetail("saltenv", saltenv)
}

// TopURL converts a path to its topd:// form.
func (r *Resolver) TopURL(path, saltenv string) (string, error) {
	if IsTopURL(path) {
		return path, nil
	}
	relPath, err := r.Relative(path, saltenv)
	if err != nil {
		return "", err
	}
	return MakeTopURL(relPath), nil
}

// CachePath converts a path to its location under the cache directory,
// returning "" when the cached copy does not exist on disk.
func (r *Resolver) CachePath(path, saltenv string) (string, error) {
	if r.isCachePath(path) {
		local, _ := localizePath(path)
		return local, nil
	}
	if saltenv == "" {
		saltenv = r.Saltenv(path)
	}
	relPath, err := r.Relative(path, saltenv)
	if err != nil {
		return "", err
	}
	for _, saltenv := range r.Saltenvs(saltenv) {
		cachePath := filepath.Join(r.cfg.CacheDirFor(saltenv), relPath)
		if _, err := os.Stat(cachePath); err == nil {
			return cachePath, nil
		}
	}
	return "", nil
}

// LocalPath converts a path to its location under a non-cache root,
// returning "" when no root holds it.
func (r *Resolver) LocalPath(path, saltenv string) (string, error) {
	if r.isLocalPath(path) {
		local, _ := localizePath(path)
		return local, nil
	}
	if saltenv == "" {
		saltenv = r.Saltenv(path)
	}
	relPath, err := r.Relative(path, saltenv)
	if err != nil {
		return "", err
	}
	records, err := r.Find(nil, map[string][]matcher.Pattern{
		fileinfo.FieldRelPath: {matcher.Glob(relPath)},
	})
	if err != nil {
		return "", err
	}
	for _, record := range records {
		if !hasPathPrefix(record.AbsPath, r.cfg.CacheDir) {
			return record.AbsPath, nil
		}
	}
	return "", nil
}

// StateName converts a path to its dotted logical state name, returning ""
// when the name is not a known state.
func (r *Resolver) StateName(path, saltenv string) (string, error) {
	relPath, err := r.Relative(path, saltenv)
	if err != nil {
		return "", err
	}
	name := render.StateName(relPath)
	if !r.isState(name) {
		return "", nil
	}
	return name, nil
}

// FileRoot returns the sorted roots holding a relative path.
func (r *Resolver) FileRoot(relPath, saltenv string) ([]string, error) {
	patterns := map[string][]matcher.Pattern{
		fileinfo.FieldRelPath: {matcher.Glob(relPath)},
	}
	if saltenv != "" {
		patterns[fileinfo.FieldSaltenv] = []matcher.Pattern{matcher.Glob(saltenv)}
	}
	records, err := r.Find(nil, patterns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var roots []string
	for _, record := range records {
		root := record.Root()
		if _, dup := seen[root]; dup || root == "" {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots, nil
}

// CacheDir returns the cache directory for one environment.
func (r *Resolver) CacheDir(saltenv string) string {
	return r.cfg.CacheDirFor(saltenv)
}

// rootDirs returns the environment's non-cache roots in configured order.
func (r *Resolver) rootDirs(saltenv string) []string {
	kind := config.FileRoots
	if r.pillar {
		kind = config.PillarRoots
	}
	return r.cfg.Roots([]string{saltenv}, kind)[saltenv]
}
