// Package paths classifies and converts between the path representations a
// top file can be named by: a root-relative path, a dotted logical state
// name, a cache path, a local path, or a topd:// URL.
package paths

import (
	"github.com/nrgaway/topd/pkg/config"
	"github.com/nrgaway/topd/pkg/fileinfo"
	"github.com/nrgaway/topd/pkg/matcher"
	"github.com/nrgaway/topd/pkg/render"
)

// Resolver maps paths between representations for one set of roots. All
// state is wired in at construction; resolvers hold no ambient globals.
type Resolver struct {
	cfg    *config.Config
	lister render.StateLister
	pillar bool

	// states caches ListStates results per environment for the resolver's
	// lifetime; walks themselves are never cached.
	states map[string][]string
}

// Options configures a Resolver.
type Options struct {
	// Pillar restricts resolution to pillar roots instead of file roots.
	Pillar bool
	// Lister overrides the state-listing collaborator; defaults to the
	// file-backed lister over the configured roots.
	Lister render.StateLister
}

// NewResolver wires a resolver to the given roots configuration.
func NewResolver(cfg *config.Config, opts Options) *Resolver {
	lister := opts.Lister
	if lister == nil {
		lister = render.NewFileStateLister(cfg, opts.Pillar)
	}
	return &Resolver{
		cfg:    cfg,
		lister: lister,
		pillar: opts.Pillar,
		states: make(map[string][]string),
	}
}

// Config returns the wired roots configuration.
func (r *Resolver) Config() *config.Config {
	return r.cfg
}

// IsPillar reports whether the resolver works against pillar roots.
func (r *Resolver) IsPillar() bool {
	return r.pillar
}

// Saltenvs returns the environments to search, base first. With no argument
// it returns every known environment.
func (r *Resolver) Saltenvs(saltenvs ...string) []string {
	if len(saltenvs) == 0 || (len(saltenvs) == 1 && saltenvs[0] == "") {
		return r.cfg.Environments()
	}
	return config.ResolveEnvironments(saltenvs)
}

// Saltenv infers the environment for a path by exact relative-path match
// against the index. An empty result means the caller must supply the
// environment explicitly; it is never guessed.
func (r *Resolver) Saltenv(path string) string {
	records, err := r.Find(nil, map[string][]matcher.Pattern{
		fileinfo.FieldRelPath: {matcher.Glob(path)},
	})
	if err != nil || len(records) == 0 {
		return ""
	}
	return records[0].Saltenv
}

// FilesOptions configures a Files walk.
type FilesOptions struct {
	// Saltenvs to walk; all known environments when empty.
	Saltenvs []string
	// Roots overrides the configured roots (environment → directories).
	Roots map[string][]string
	// Patterns filter the records; default restricts saltenv to the walked
	// environments.
	Patterns map[string][]matcher.Pattern
	// BatchMatch builds all records first and filters once, instead of
	// testing each record on creation. Same final set either way.
	BatchMatch bool
	// Merge uses the dict-backed index, merging records by relative path so
	// overlapping file and cache roots contribute to one record.
	Merge bool
	// Transform and Admitter are per-record strategies (see pkg/fileinfo).
	Transform fileinfo.RecordTransform
	Admitter  fileinfo.RecordAdmitter
}

// Files walks the roots and returns the matching records. Records are
// recomputed on every call; nothing is cached across walks.
func (r *Resolver) Files(opts FilesOptions) ([]fileinfo.PathRecord, error) {
	saltenvs := r.Saltenvs(opts.Saltenvs...)

	roots := opts.Roots
	if roots == nil {
		kinds := []config.RootKind{config.CacheRoots, config.FileRoots}
		if r.pillar {
			kinds = []config.RootKind{config.CacheRoots, config.PillarRoots}
		}
		roots = r.cfg.Roots(saltenvs, kinds...)
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		envPatterns := make([]matcher.Pattern, 0, len(saltenvs))
		for _, saltenv := range saltenvs {
			envPatterns = append(envPatterns, matcher.Glob(saltenv))
		}
		patterns = map[string][]matcher.Pattern{fileinfo.FieldSaltenv: envPatterns}
	}

	indexOpts := fileinfo.Options{
		Patterns:  patterns,
		MatchEach: !opts.BatchMatch,
		Transform: opts.Transform,
		Admitter:  opts.Admitter,
	}
	ctx := fileinfo.WalkContext{CacheDir: r.cfg.CacheDir, IsPillar: r.pillar}

	if opts.Merge {
		index, err := fileinfo.NewDict(indexOpts)
		if err != nil {
			return nil, err
		}
		return index.Walk(roots, ctx)
	}
	index, err := fileinfo.New(indexOpts)
	if err != nil {
		return nil, err
	}
	return index.Walk(roots, ctx)
}

// Find filters records by per-field patterns. A nil record list walks all
// roots first.
func (r *Resolver) Find(records []fileinfo.PathRecord, patterns map[string][]matcher.Pattern) ([]fileinfo.PathRecord, error) {
	if records == nil {
		all, err := r.Files(FilesOptions{})
		if err != nil {
			return nil, err
		}
		records = all
	}
	m, err := matcher.Compile(fileinfo.PathFields, patterns, matcher.ModeGlob)
	if err != nil {
		return nil, err
	}
	return matcher.Filter(records, m), nil
}

// States returns each searched environment's logical state names, caching
// per environment for the resolver's lifetime.
func (r *Resolver) States(saltenvs ...string) (map[string][]string, error) {
	states := make(map[string][]string)
	for _, saltenv := range r.Saltenvs(saltenvs...) {
		if _, cached := r.states[saltenv]; !cached {
			listed, err := r.lister.ListStates(saltenv)
			if err != nil {
				return nil, err
			}
			r.states[saltenv] = listed
		}
		states[saltenv] = append([]string(nil), r.states[saltenv]...)
	}
	return states, nil
}
