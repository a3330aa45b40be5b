package fileinfo

import (
	"sort"

	"github.com/nrgaway/topd/pkg/matcher"
)

// RecordTransform may rewrite or replace a record right after construction,
// before matching. Used by the top resolver to correct a record's declared
// environment when its path encodes a different one.
type RecordTransform interface {
	Transform(record PathRecord) PathRecord
}

// TransformFunc adapts a function to the RecordTransform interface.
type TransformFunc func(record PathRecord) PathRecord

func (f TransformFunc) Transform(record PathRecord) PathRecord { return f(record) }

// RecordAdmitter decides whether a record is inserted into the result set.
type RecordAdmitter interface {
	Admit(record PathRecord) bool
}

// AdmitterFunc adapts a function to the RecordAdmitter interface.
type AdmitterFunc func(record PathRecord) bool

func (f AdmitterFunc) Admit(record PathRecord) bool { return f(record) }

// Options configures an index.
type Options struct {
	// Patterns are per-field match patterns (see pkg/matcher). Empty means
	// match everything.
	Patterns map[string][]matcher.Pattern
	// Mode selects glob or regex interpretation of non-raw patterns.
	Mode matcher.Mode
	// MatchEach tests each record against the pattern as it is created and
	// discards non-matches immediately: bounded memory, worse amortized cost
	// for expensive patterns. When false, all records are built first and
	// filtered once. Both modes produce the same final set.
	MatchEach bool
	// Transform, when set, is invoked on every record after construction.
	Transform RecordTransform
	// Admitter, when set, is invoked before a record is inserted.
	Admitter RecordAdmitter
	// NoFollowLinks disables following symlinked directories during walks.
	NoFollowLinks bool
}

// Index walks roots and accumulates deduplicated PathRecords. Records are
// recomputed on every walk; the index holds no cross-walk cache.
type Index struct {
	opts    Options
	pattern *matcher.Matcher
	seen    map[PathRecord]struct{}
	records []PathRecord
}

// New compiles the option patterns and returns an empty index.
func New(opts Options) (*Index, error) {
	pattern, err := matcher.Compile(PathFields, opts.Patterns, opts.Mode)
	if err != nil {
		return nil, err
	}
	return &Index{
		opts:    opts,
		pattern: pattern,
		seen:    make(map[PathRecord]struct{}),
	}, nil
}

// Pattern returns the compiled matcher, nil when no patterns were given.
func (ix *Index) Pattern() *matcher.Matcher {
	return ix.pattern
}

// Walk visits every file under each environment's roots and returns the
// accumulated record set. Environments are walked base-first for
// deterministic ordering.
func (ix *Index) Walk(roots map[string][]string, ctx WalkContext) ([]PathRecord, error) {
	for _, saltenv := range envOrder(roots) {
		err := walkDirs(roots[saltenv], !ix.opts.NoFollowLinks, func(root, absPath string) error {
			ix.add(NewPathRecord(root, absPath, saltenv, ctx))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ix.Records(), nil
}

func (ix *Index) add(record PathRecord) {
	if ix.opts.Transform != nil {
		record = ix.opts.Transform.Transform(record)
	}
	if ix.opts.MatchEach && !ix.pattern.MatchRecord(record) {
		return
	}
	if ix.opts.Admitter != nil && !ix.opts.Admitter.Admit(record) {
		return
	}
	if _, dup := ix.seen[record]; dup {
		return
	}
	ix.seen[record] = struct{}{}
	ix.records = append(ix.records, record)
}

// Records returns the final record set. In batch mode (MatchEach false) the
// single filter pass happens here.
func (ix *Index) Records() []PathRecord {
	if !ix.opts.MatchEach {
		return matcher.Filter(ix.records, ix.pattern)
	}
	return ix.records
}

// envOrder returns the map's environments with "base" first, remaining names
// sorted. Base-first is a system-wide invariant for environment lists.
func envOrder(roots map[string][]string) []string {
	envs := make([]string, 0, len(roots))
	for saltenv := range roots {
		if saltenv == "base" {
			continue
		}
		envs = append(envs, saltenv)
	}
	sort.Strings(envs)
	if _, ok := roots["base"]; ok {
		envs = append([]string{"base"}, envs...)
	}
	return envs
}
