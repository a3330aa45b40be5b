// Package fileinfo walks configured roots and builds typed attribute records
// for pattern matching and path resolution.
package fileinfo

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Field names of a PathRecord, in match order. The order is load-bearing:
// matchers serialize records by joining field values with newlines in exactly
// this order.
const (
	FieldSaltenv   = "saltenv"
	FieldFileRoot  = "file_root"
	FieldCacheRoot = "cache_root"
	FieldAbsPath   = "abspath"
	FieldRelPath   = "relpath"
	FieldIsPillar  = "is_pillar"
)

// PathFields is the canonical field order for PathRecord matching.
var PathFields = []string{
	FieldSaltenv,
	FieldFileRoot,
	FieldCacheRoot,
	FieldAbsPath,
	FieldRelPath,
	FieldIsPillar,
}

// PathRecord captures one filesystem entry's attributes. Records are value
// types: comparable, deduplicated by full field identity, and never mutated
// after construction.
type PathRecord struct {
	Saltenv   string
	FileRoot  string
	CacheRoot string
	AbsPath   string
	RelPath   string
	IsPillar  bool
}

// NewPathRecord builds a record for a file discovered under root. The root is
// recorded as a cache root when it lies under ctx.CacheDir, as a file root
// otherwise.
func NewPathRecord(root, absPath, saltenv string, ctx WalkContext) PathRecord {
	relPath, err := filepath.Rel(root, absPath)
	if err != nil {
		relPath = absPath
	}

	record := PathRecord{
		Saltenv:  saltenv,
		AbsPath:  absPath,
		RelPath:  relPath,
		IsPillar: ctx.IsPillar,
	}
	if ctx.CacheDir != "" && hasPathPrefix(absPath, ctx.CacheDir) {
		record.CacheRoot = root
	} else {
		record.FileRoot = root
	}
	return record
}

// Root returns whichever root the record was found under.
func (r PathRecord) Root() string {
	if r.FileRoot != "" {
		return r.FileRoot
	}
	return r.CacheRoot
}

// Field returns the named field's value as a string.
func (r PathRecord) Field(name string) string {
	switch name {
	case FieldSaltenv:
		return r.Saltenv
	case FieldFileRoot:
		return r.FileRoot
	case FieldCacheRoot:
		return r.CacheRoot
	case FieldAbsPath:
		return r.AbsPath
	case FieldRelPath:
		return r.RelPath
	case FieldIsPillar:
		return strconv.FormatBool(r.IsPillar)
	}
	return ""
}

// MatchFields serializes the record for the matcher, in PathFields order.
func (r PathRecord) MatchFields() []string {
	fields := make([]string, len(PathFields))
	for i, name := range PathFields {
		fields[i] = r.Field(name)
	}
	return fields
}

// hasPathPrefix reports whether path is dir or lies under dir.
func hasPathPrefix(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
