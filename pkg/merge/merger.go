// Package merge gathers top documents across environments, expands their
// include directives to a fixed point, and folds everything into one merged
// document.
package merge

import (
	"path"
	"strings"

	"github.com/nrgaway/topd/pkg/config"
	"github.com/nrgaway/topd/pkg/errors"
	"github.com/nrgaway/topd/pkg/logging"
	"github.com/nrgaway/topd/pkg/paths"
	"github.com/nrgaway/topd/pkg/render"
	"github.com/nrgaway/topd/pkg/topfile"
	"github.com/nrgaway/topd/pkg/tops"
)

// maxIncludePasses bounds include expansion. The worklist normally reaches a
// fixed point in a handful of passes; hitting the bound means the include
// graph keeps producing new work and is treated as a cycle.
const maxIncludePasses = 64

// Merger renders and merges top files according to the configured merging
// strategy.
type Merger struct {
	cfg      *config.Config
	renderer render.Renderer
	lister   render.StateLister
	tops     *tops.Resolver
}

// Options configures a Merger.
type Options struct {
	// Pillar gathers from pillar roots instead of file roots.
	Pillar bool
	// Renderer overrides the top-file renderer; defaults to the file-backed
	// renderer over the configured roots.
	Renderer render.Renderer
	// Lister overrides the state lister used for include-glob expansion.
	Lister render.StateLister
	// Tops overrides the top resolver consulted for enabled tops.
	Tops *tops.Resolver
}

// New wires a merger to the given roots configuration.
func New(cfg *config.Config, opts Options) *Merger {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.NewFileRenderer(cfg, nil)
	}
	lister := opts.Lister
	if lister == nil {
		lister = render.NewFileStateLister(cfg, opts.Pillar)
	}
	topResolver := opts.Tops
	if topResolver == nil {
		topResolver = tops.New(cfg, tops.Options{Pillar: opts.Pillar})
	}
	return &Merger{
		cfg:      cfg,
		renderer: renderer,
		lister:   lister,
		tops:     topResolver,
	}
}

// Merge renders the main top file per the merging strategy, expands
// includes, and folds the documents into one. With the "merge" strategy and
// no environment restriction, the top file is rendered once per known
// environment and later environments only add to what base established.
func (m *Merger) Merge(saltenvs ...string) (*topfile.Document, error) {
	documents, order, err := m.seed(saltenvs)
	if err != nil {
		return nil, err
	}
	if err := m.expandIncludes(documents, order); err != nil {
		return nil, err
	}
	return m.fold(documents, order)
}

// Top gathers the enabled top files instead of the main top file: each
// enabled control entry is rendered from its topd:// URL under its own
// environment, includes are expanded, and the documents are folded.
func (m *Merger) Top(saltenvs ...string) (*topfile.Document, error) {
	log := logging.GetLogger("merge")

	enabled, err := m.tops.Enabled(nil, saltenvs...)
	if err != nil {
		return nil, err
	}

	documents := make(map[string][]*topfile.Document)
	order := m.envOrder(saltenvs)
	for _, record := range enabled {
		document, err := m.renderer.Render(paths.MakeTopURL(record.RelPath), record.Saltenv)
		if err != nil {
			return nil, err
		}
		if document.IsEmpty() {
			log.Debug().Str("top", record.TopName).Str("saltenv", record.Saltenv).
				Msg("enabled top rendered empty")
			continue
		}
		documents[record.Saltenv] = append(documents[record.Saltenv], document)
	}

	if err := m.expandIncludes(documents, order); err != nil {
		return nil, err
	}
	return m.fold(documents, order)
}

// seed renders the main top file according to the strategy and returns the
// per-environment seed documents plus the environment order to fold in.
func (m *Merger) seed(saltenvs []string) (map[string][]*topfile.Document, []string, error) {
	log := logging.GetLogger("merge")
	documents := make(map[string][]*topfile.Document)

	switch {
	case m.cfg.Environment != "":
		// A pinned environment renders exactly one top file, whatever the
		// strategy says.
		saltenv := m.cfg.Environment
		document, err := m.renderer.Render(m.cfg.StateTop, saltenv)
		if err != nil {
			return nil, nil, err
		}
		if !document.IsEmpty() {
			documents[saltenv] = append(documents[saltenv], document)
		}
		return documents, []string{saltenv}, nil

	case m.cfg.MergingStrategy == config.StrategySame:
		saltenv := m.cfg.DefaultTop
		if len(saltenvs) == 1 && saltenvs[0] != "" {
			saltenv = saltenvs[0]
		}
		if saltenv == "" {
			return nil, nil, errors.New(errors.ErrMissingDefaultTop,
				"the \"same\" merging strategy requires a default_top setting")
		}
		document, err := m.renderer.Render(m.cfg.StateTop, saltenv)
		if err != nil {
			return nil, nil, err
		}
		if !document.IsEmpty() {
			documents[saltenv] = append(documents[saltenv], document)
		}
		return documents, []string{saltenv}, nil

	default:
		order := m.envOrder(saltenvs)
		if m.cfg.StateTopSaltenv != "" {
			order = []string{m.cfg.StateTopSaltenv}
		}
		for _, saltenv := range order {
			document, err := m.renderer.Render(m.cfg.StateTop, saltenv)
			if err != nil {
				return nil, nil, err
			}
			if document.IsEmpty() {
				log.Debug().Str("saltenv", saltenv).Msg("top file rendered empty")
				continue
			}
			documents[saltenv] = append(documents[saltenv], document)
		}
		return documents, order, nil
	}
}

// expandIncludes drains each document's include globs by rendering every
// matching state as a further top document, until no new includes surface.
// Each state renders at most once per environment.
func (m *Merger) expandIncludes(documents map[string][]*topfile.Document, order []string) error {
	log := logging.GetLogger("merge")

	pending := make(map[string][]string)
	done := make(map[string]map[string]struct{})
	collect := func(saltenv string, docs []*topfile.Document) {
		for _, document := range docs {
			pending[saltenv] = append(pending[saltenv], document.TakeIncludes()...)
		}
	}
	for saltenv, docs := range documents {
		collect(saltenv, docs)
	}

	for pass := 0; hasPending(pending); pass++ {
		if pass >= maxIncludePasses {
			return errors.New(errors.ErrIncludeCycle,
				"include expansion did not converge").
				WithDetail("passes", maxIncludePasses)
		}

		for _, saltenv := range order {
			globs := pending[saltenv]
			if len(globs) == 0 {
				delete(pending, saltenv)
				continue
			}
			pending[saltenv] = nil

			available, err := m.lister.ListStates(saltenv)
			if err != nil {
				return err
			}
			if done[saltenv] == nil {
				done[saltenv] = make(map[string]struct{})
			}

			for _, glob := range globs {
				for _, state := range matchStates(available, glob) {
					if _, rendered := done[saltenv][state]; rendered {
						continue
					}
					done[saltenv][state] = struct{}{}

					document, err := m.renderState(state, saltenv)
					if err != nil {
						return err
					}
					if document.IsEmpty() {
						log.Debug().Str("state", state).Str("saltenv", saltenv).
							Msg("included top rendered empty")
						continue
					}
					documents[saltenv] = append(documents[saltenv], document)
					collect(saltenv, documents[saltenv][len(documents[saltenv])-1:])
				}
			}
		}
	}
	return nil
}

// renderState renders an included state name as a top document, trying the
// flat and the init-file layouts.
func (m *Merger) renderState(state, saltenv string) (*topfile.Document, error) {
	base := strings.ReplaceAll(state, ".", "/")
	for _, relPath := range []string{base + ".sls", base + "/init.sls"} {
		document, err := m.renderer.Render(relPath, saltenv)
		if err != nil {
			return nil, err
		}
		if document != nil {
			return document, nil
		}
	}
	return nil, nil
}

// fold flattens the per-environment documents in environment order and
// merges them into one.
func (m *Merger) fold(documents map[string][]*topfile.Document, order []string) (*topfile.Document, error) {
	var flat []*topfile.Document
	for _, saltenv := range order {
		flat = append(flat, documents[saltenv]...)
	}
	return topfile.Merge(flat...)
}

// envOrder resolves the environments to gather, base first.
func (m *Merger) envOrder(saltenvs []string) []string {
	if len(saltenvs) == 0 || (len(saltenvs) == 1 && saltenvs[0] == "") {
		return m.cfg.Environments()
	}
	return config.ResolveEnvironments(saltenvs)
}

// matchStates filters state names by a shell glob; a non-glob include only
// matches exactly.
func matchStates(available []string, glob string) []string {
	var matched []string
	for _, state := range available {
		if ok, err := path.Match(glob, state); err == nil && ok {
			matched = append(matched, state)
		}
	}
	return matched
}

func hasPending(pending map[string][]string) bool {
	for _, globs := range pending {
		if len(globs) > 0 {
			return true
		}
	}
	return false
}
