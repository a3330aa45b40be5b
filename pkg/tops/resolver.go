package tops

import (
	"path/filepath"

	"github.com/nrgaway/topd/pkg/config"
	"github.com/nrgaway/topd/pkg/fileinfo"
	"github.com/nrgaway/topd/pkg/filesystem"
	"github.com/nrgaway/topd/pkg/logging"
	"github.com/nrgaway/topd/pkg/matcher"
	"github.com/nrgaway/topd/pkg/paths"
)

// Resolver discovers top files under the configured roots, maps them to
// logical names, and reports which are enabled through the control
// directory.
type Resolver struct {
	*paths.Resolver

	cfg    *config.Config
	fs     filesystem.FS
	envFix *envFix

	controlDir string
	pillar     bool

	// cached discovery results, keyed by the searched environment list.
	// Enable and Disable invalidate the cache because they change what a
	// re-walk would see.
	cache map[string][]Record
}

// Options configures a Resolver.
type Options struct {
	// Pillar discovers top files under pillar roots instead of file roots.
	Pillar bool
	// FS overrides the filesystem used for enable/disable mutations;
	// defaults to the operating system.
	FS filesystem.FS
	// Paths overrides the path resolver; defaults to one built from cfg.
	Paths *paths.Resolver
}

// New wires a top resolver to the given roots configuration.
func New(cfg *config.Config, opts Options) *Resolver {
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	resolver := opts.Paths
	if resolver == nil {
		resolver = paths.NewResolver(cfg, paths.Options{Pillar: opts.Pillar})
	}
	return &Resolver{
		Resolver:   resolver,
		cfg:        cfg,
		fs:         fs,
		envFix:     newEnvFix(cfg.ControlDir),
		controlDir: cfg.ControlDir,
		pillar:     opts.Pillar,
		cache:      make(map[string][]Record),
	}
}

// Invalidate drops all cached discovery results. The next Tops call walks
// the roots again.
func (t *Resolver) Invalidate() {
	t.cache = make(map[string][]Record)
}

// Tops returns every top file record under the roots of the given
// environments, all environments when none are given. Results are cached
// until Invalidate or a toggle mutation.
func (t *Resolver) Tops(saltenvs ...string) ([]Record, error) {
	envs := t.Saltenvs(saltenvs...)
	key := cacheKey(envs)
	if cached, ok := t.cache[key]; ok {
		return cached, nil
	}

	kind := config.FileRoots
	if t.pillar {
		kind = config.PillarRoots
	}

	records, err := t.Files(paths.FilesOptions{
		Saltenvs: envs,
		Roots:    t.cfg.Roots(envs, kind),
		Patterns: map[string][]matcher.Pattern{
			fileinfo.FieldRelPath: {matcher.Glob("*.top")},
		},
		Transform: t.envFix,
	})
	if err != nil {
		return nil, err
	}

	tops := make([]Record, 0, len(records))
	for _, record := range records {
		tops = append(tops, t.newRecord(record))
	}

	t.cache[key] = tops
	return tops, nil
}

// Names returns the distinct logical names of all discovered top files, in
// discovery order.
func (t *Resolver) Names(saltenvs ...string) ([]string, error) {
	records, err := t.Tops(saltenvs...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0, len(records))
	for _, record := range records {
		if _, dup := seen[record.TopName]; dup {
			continue
		}
		seen[record.TopName] = struct{}{}
		names = append(names, record.TopName)
	}
	return names, nil
}

// Enabled returns the control-directory records for the given logical
// names, all names when none are given. A top is enabled exactly when a
// control entry for it exists; nothing else is consulted.
func (t *Resolver) Enabled(names []string, saltenvs ...string) ([]Record, error) {
	envs := t.Saltenvs(saltenvs...)
	records, err := t.Tops(envs...)
	if err != nil {
		return nil, err
	}

	m, err := matcher.Compile(fileinfo.PathFields, map[string][]matcher.Pattern{
		fileinfo.FieldRelPath: t.controlPatterns(names, envs),
	}, matcher.ModeGlob)
	if err != nil {
		return nil, err
	}
	return matcher.Filter(records, m), nil
}

// Disabled returns the top records for the given logical names that have no
// control entry. A record is disabled when it is neither a control entry for
// a requested name nor the resolved target of one; a source file stops
// counting as disabled the moment a control symlink points at it.
func (t *Resolver) Disabled(names []string, saltenvs ...string) ([]Record, error) {
	envs := t.Saltenvs(saltenvs...)
	all, err := t.findByName(names, envs)
	if err != nil {
		return nil, err
	}
	enabled, err := t.Enabled(names, envs...)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(enabled)*2)
	for _, record := range enabled {
		excluded[record.AbsPath] = struct{}{}
		if record.RealPath != "" {
			excluded[record.RealPath] = struct{}{}
		}
	}

	disabled := make([]Record, 0, len(all))
	for _, record := range all {
		if _, hit := excluded[record.AbsPath]; hit {
			continue
		}
		disabled = append(disabled, record)
	}
	return disabled, nil
}

// Status reports the enabled and disabled records for the given names.
type Status struct {
	Enabled  []Record
	Disabled []Record
}

// Status partitions the requested names' records into enabled and disabled.
func (t *Resolver) Status(names []string, saltenvs ...string) (*Status, error) {
	enabled, err := t.Enabled(names, saltenvs...)
	if err != nil {
		return nil, err
	}
	disabled, err := t.Disabled(names, saltenvs...)
	if err != nil {
		return nil, err
	}
	return &Status{Enabled: enabled, Disabled: disabled}, nil
}

// IsEnabled reports whether every one of the given names has a control
// entry.
func (t *Resolver) IsEnabled(names []string, saltenvs ...string) (bool, error) {
	enabled, err := t.Enabled(names, saltenvs...)
	if err != nil {
		return false, err
	}
	hit := make(map[string]struct{}, len(enabled))
	for _, record := range enabled {
		hit[record.TopName] = struct{}{}
		hit[record.Saltenv+"|"+record.TopName] = struct{}{}
	}
	for _, name := range names {
		saltenv, basename := splitQualified(name)
		key := basename
		if saltenv != "" {
			key = saltenv + "|" + basename
		}
		if _, ok := hit[key]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// findByName returns every top record whose logical name is one of the
// requested names, all records when no names are given. Control entries are
// excluded so the result is the set of toggle candidates.
func (t *Resolver) findByName(names []string, envs []string) ([]Record, error) {
	records, err := t.Tops(envs...)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]string, len(names))
	for _, name := range names {
		saltenv, basename := splitQualified(name)
		wanted[basename] = saltenv
	}

	log := logging.GetLogger("tops")
	matched := make([]Record, 0, len(records))
	for _, record := range records {
		if t.isControlPath(record.RelPath) {
			continue
		}
		if len(names) > 0 {
			saltenv, ok := wanted[record.TopName]
			if !ok || (saltenv != "" && saltenv != record.Saltenv) {
				continue
			}
		}
		matched = append(matched, record)
	}
	log.Trace().Int("count", len(matched)).Strs("names", names).Msg("resolved top names")
	return matched, nil
}

func (t *Resolver) isControlPath(relPath string) bool {
	return t.envFix.re.MatchString(filepath.ToSlash(relPath))
}

func cacheKey(envs []string) string {
	key := ""
	for _, saltenv := range envs {
		key += saltenv + "\x00"
	}
	return key
}
