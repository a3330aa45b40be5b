package fileinfo

import (
	"github.com/nrgaway/topd/pkg/matcher"
)

// DictIndex stores records keyed by relative path instead of in a set, so
// that re-walking the same relative path merges new fields into one record:
// a file seen under a file root and later under a cache root contributes both
// roots to a single record rather than producing duplicates. This supports
// roots that overlay the same logical file from different root kinds.
type DictIndex struct {
	opts    Options
	pattern *matcher.Matcher
	byRel   map[string]int
	records []PathRecord
}

// NewDict compiles the option patterns and returns an empty dict-backed index.
func NewDict(opts Options) (*DictIndex, error) {
	pattern, err := matcher.Compile(PathFields, opts.Patterns, opts.Mode)
	if err != nil {
		return nil, err
	}
	return &DictIndex{
		opts:    opts,
		pattern: pattern,
		byRel:   make(map[string]int),
	}, nil
}

// Walk visits every file under each environment's roots, merging records by
// relative path, and returns the accumulated records in first-seen order.
func (ix *DictIndex) Walk(roots map[string][]string, ctx WalkContext) ([]PathRecord, error) {
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

func (ix *DictIndex) add(record PathRecord) {
	if i, ok := ix.byRel[record.RelPath]; ok {
		// First sighting wins for identity fields; later sightings only
		// contribute the root kind they were found under.
		merged := ix.records[i]
		if record.CacheRoot != "" {
			merged.CacheRoot = record.CacheRoot
		}
		if record.FileRoot != "" {
			merged.FileRoot = record.FileRoot
		}
		ix.records[i] = merged
		return
	}

	if ix.opts.Transform != nil {
		record = ix.opts.Transform.Transform(record)
	}
	if ix.opts.MatchEach && !ix.pattern.MatchRecord(record) {
		return
	}
	if ix.opts.Admitter != nil && !ix.opts.Admitter.Admit(record) {
		return
	}
	ix.byRel[record.RelPath] = len(ix.records)
	ix.records = append(ix.records, record)
}

// Records returns the merged record set, filtered once in batch mode.
func (ix *DictIndex) Records() []PathRecord {
	if !ix.opts.MatchEach {
		return matcher.Filter(ix.records, ix.pattern)
	}
	return ix.records
}
