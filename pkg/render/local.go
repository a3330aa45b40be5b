package render

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nrgaway/topd/pkg/config"
	"github.com/nrgaway/topd/pkg/errors"
	"github.com/nrgaway/topd/pkg/fileinfo"
	"github.com/nrgaway/topd/pkg/filesystem"
	"github.com/nrgaway/topd/pkg/logging"
	"github.com/nrgaway/topd/pkg/matcher"
	"github.com/nrgaway/topd/pkg/topfile"
)

// Scheme is the URL scheme denoting "logical file under an environment root".
const Scheme = "topd://"

// FileRenderer renders top files straight from local roots as YAML. It
// stands in for the full template pipeline when all roots are local.
type FileRenderer struct {
	cfg *config.Config
	fs  filesystem.FS
}

// NewFileRenderer returns a renderer reading from the given filesystem.
func NewFileRenderer(cfg *config.Config, fs filesystem.FS) *FileRenderer {
	if fs == nil {
		fs = filesystem.NewOS()
	}
	return &FileRenderer{cfg: cfg, fs: fs}
}

// Render locates path in saltenv's roots and parses it as a top document.
// A path that resolves to nothing yields a nil document, not an error.
func (r *FileRenderer) Render(path, saltenv string) (*topfile.Document, error) {
	logger := logging.GetLogger("render.file")

	abs := r.locate(path, saltenv)
	if abs == "" {
		logger.Debug().Str("path", path).Str("saltenv", saltenv).Msg("Nothing to render")
		return nil, nil
	}

	data, err := r.fs.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRender, "cannot read %s", abs)
	}
	document, err := topfile.Parse(data)
	if err != nil {
		return nil, err
	}
	logger.Trace().Str("abspath", abs).Str("saltenv", saltenv).Msg("Rendered top file")
	return document, nil
}

// locate resolves a path to an absolute file, searching the environment's
// file roots then cache roots and returning the first hit that exists.
func (r *FileRenderer) locate(path, saltenv string) string {
	relPath := strings.TrimPrefix(path, Scheme)
	if filepath.IsAbs(relPath) {
		if _, err := r.fs.Stat(relPath); err == nil {
			return relPath
		}
		return ""
	}

	roots := r.cfg.Roots([]string{saltenv}, config.FileRoots, config.CacheRoots)
	for _, root := range roots[saltenv] {
		abs := filepath.Join(root, relPath)
		if _, err := r.fs.Stat(abs); err == nil {
			return abs
		}
	}
	return ""
}

// FileStateLister lists logical state names by walking an environment's
// roots for *.sls files.
type FileStateLister struct {
	cfg    *config.Config
	pillar bool
}

// NewFileStateLister returns a lister over file roots, or pillar roots when
// pillar is set.
func NewFileStateLister(cfg *config.Config, pillar bool) *FileStateLister {
	return &FileStateLister{cfg: cfg, pillar: pillar}
}

// ListStates returns the environment's state names, sorted and deduplicated.
func (l *FileStateLister) ListStates(saltenv string) ([]string, error) {
	kind := config.FileRoots
	if l.pillar {
		kind = config.PillarRoots
	}

	index, err := fileinfo.New(fileinfo.Options{
		Patterns: map[string][]matcher.Pattern{
			fileinfo.FieldRelPath: {matcher.Glob("*.sls")},
		},
		MatchEach: true,
	})
	if err != nil {
		return nil, err
	}

	records, err := index.Walk(
		l.cfg.Roots([]string{saltenv}, kind),
		fileinfo.WalkContext{CacheDir: l.cfg.CacheDir, IsPillar: l.pillar},
	)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	seen := make(map[string]struct{})
	var states []string
	for _, record := range records {
		name := StateName(record.RelPath)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		states = append(states, name)
	}
	sort.Strings(states)
	return states, nil
}
