package fileinfo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrgaway/topd/pkg/matcher"
	"github.com/nrgaway/topd/pkg/testutil"
)

func testRoots(t *testing.T) (map[string][]string, string) {
	t.Helper()
	tmp := t.TempDir()

	base := testutil.CreateDir(t, tmp, "base")
	dev := testutil.CreateDir(t, tmp, "dev")

	testutil.CreateFile(t, base, "top.sls", "base:\n  '*':\n    - salt\n")
	testutil.CreateFile(t, base, "salt/init.sls", "")
	testutil.CreateFile(t, base, "salt/init.top", "")
	testutil.CreateFile(t, dev, "dev.top", "")

	return map[string][]string{
		"base": {base},
		"dev":  {dev},
	}, tmp
}

func TestIndexWalkCollectsRecords(t *testing.T) {
	roots, _ := testRoots(t)

	index, err := New(Options{MatchEach: true})
	require.NoError(t, err)

	records, err := index.Walk(roots, WalkContext{})
	require.NoError(t, err)
	require.Len(t, records, 4)

	// base walks before dev
	assert.Equal(t, "base", records[0].Saltenv)
	assert.Equal(t, "dev", records[len(records)-1].Saltenv)

	rels := Flatten(FieldRelPath, records)
	assert.Equal(t, []string{"dev.top", "salt/init.sls", "salt/init.top", "top.sls"}, rels)

	for _, record := range records {
		assert.Equal(t, record.AbsPath, filepath.Join(record.FileRoot, record.RelPath))
		assert.Empty(t, record.CacheRoot)
		assert.False(t, record.IsPillar)
	}
}

func TestIndexPatternFiltering(t *testing.T) {
	roots, _ := testRoots(t)

	index, err := New(Options{
		Patterns: map[string][]matcher.Pattern{
			FieldRelPath: {matcher.Glob("*.top")},
		},
		MatchEach: true,
	})
	require.NoError(t, err)

	records, err := index.Walk(roots, WalkContext{})
	require.NoError(t, err)

	assert.Equal(t, []string{"dev.top", "salt/init.top"}, Flatten(FieldRelPath, records))
}

func TestIndexBatchAndEachModesAgree(t *testing.T) {
	roots, _ := testRoots(t)
	patterns := map[string][]matcher.Pattern{
		FieldRelPath: {matcher.Glob("*.top")},
		FieldSaltenv: {matcher.Glob("base")},
	}

	each, err := New(Options{Patterns: patterns, MatchEach: true})
	require.NoError(t, err)
	eachRecords, err := each.Walk(roots, WalkContext{})
	require.NoError(t, err)

	batch, err := New(Options{Patterns: patterns})
	require.NoError(t, err)
	batchRecords, err := batch.Walk(roots, WalkContext{})
	require.NoError(t, err)

	assert.Equal(t, eachRecords, batchRecords)
	assert.Equal(t, []string{"salt/init.top"}, Flatten(FieldRelPath, eachRecords))
}

func TestIndexTransformRunsBeforeMatching(t *testing.T) {
	roots, _ := testRoots(t)

	index, err := New(Options{
		Patterns: map[string][]matcher.Pattern{
			FieldSaltenv: {matcher.Glob("rewritten")},
		},
		MatchEach: true,
		Transform: TransformFunc(func(record PathRecord) PathRecord {
			if record.RelPath == "dev.top" {
				record.Saltenv = "rewritten"
			}
			return record
		}),
	})
	require.NoError(t, err)

	records, err := index.Walk(roots, WalkContext{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rewritten", records[0].Saltenv)
	assert.Equal(t, "dev.top", records[0].RelPath)
}

func TestIndexAdmitter(t *testing.T) {
	roots, _ := testRoots(t)

	index, err := New(Options{
		MatchEach: true,
		Admitter: AdmitterFunc(func(record PathRecord) bool {
			return filepath.Ext(record.RelPath) == ".sls"
		}),
	})
	require.NoError(t, err)

	records, err := index.Walk(roots, WalkContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"salt/init.sls", "top.sls"}, Flatten(FieldRelPath, records))
}

func TestCacheRootDetection(t *testing.T) {
	tmp := t.TempDir()
	cacheDir := testutil.CreateDir(t, tmp, "cache")
	cacheBase := testutil.CreateDir(t, cacheDir, "files/base")
	testutil.CreateFile(t, cacheBase, "salt/init.top", "")

	index, err := New(Options{MatchEach: true})
	require.NoError(t, err)

	records, err := index.Walk(
		map[string][]string{"base": {cacheBase}},
		WalkContext{CacheDir: cacheDir},
	)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, cacheBase, records[0].CacheRoot)
	assert.Empty(t, records[0].FileRoot)
	assert.Equal(t, cacheBase, records[0].Root())
}

func TestDictIndexMergesByRelPath(t *testing.T) {
	tmp := t.TempDir()
	fileRoot := testutil.CreateDir(t, tmp, "base")
	cacheDir := testutil.CreateDir(t, tmp, "cache")
	cacheRoot := testutil.CreateDir(t, cacheDir, "files/base")

	testutil.CreateFile(t, fileRoot, "salt/init.top", "")
	testutil.CreateFile(t, cacheRoot, "salt/init.top", "")

	index, err := NewDict(Options{MatchEach: true})
	require.NoError(t, err)

	records, err := index.Walk(
		map[string][]string{"base": {fileRoot, cacheRoot}},
		WalkContext{CacheDir: cacheDir},
	)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// One record carrying both roots
	assert.Equal(t, fileRoot, records[0].FileRoot)
	assert.Equal(t, cacheRoot, records[0].CacheRoot)
	assert.Equal(t, "salt/init.top", records[0].RelPath)
}

func TestWalkFollowsSymlinkedDirs(t *testing.T) {
	tmp := t.TempDir()
	root := testutil.CreateDir(t, tmp, "base")
	shared := testutil.CreateDir(t, tmp, "shared")
	testutil.CreateFile(t, shared, "common.sls", "")
	testutil.CreateSymlink(t, shared, filepath.Join(root, "linked"))

	index, err := New(Options{MatchEach: true})
	require.NoError(t, err)
	records, err := index.Walk(map[string][]string{"base": {root}}, WalkContext{})
	require.NoError(t, err)

	assert.Equal(t, []string{"linked/common.sls"}, Flatten(FieldRelPath, records))

	// NoFollowLinks skips the linked directory entirely
	index, err = New(Options{MatchEach: true, NoFollowLinks: true})
	require.NoError(t, err)
	records, err = index.Walk(map[string][]string{"base": {root}}, WalkContext{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWalkSurvivesSymlinkCycle(t *testing.T) {
	tmp := t.TempDir()
	root := testutil.CreateDir(t, tmp, "base")
	testutil.CreateFile(t, root, "top.sls", "")
	testutil.CreateSymlink(t, root, filepath.Join(root, "self"))

	index, err := New(Options{MatchEach: true})
	require.NoError(t, err)
	records, err := index.Walk(map[string][]string{"base": {root}}, WalkContext{})
	require.NoError(t, err)

	assert.Equal(t, []string{"top.sls"}, Flatten(FieldRelPath, records))
}

func TestReduceBy(t *testing.T) {
	records := []PathRecord{
		{Saltenv: "base", RelPath: "a.top"},
		{Saltenv: "base", RelPath: "b.top"},
		{Saltenv: "base", RelPath: "a.top"},
		{Saltenv: "dev", RelPath: "c.top"},
	}

	grouped := ReduceBy(FieldSaltenv, FieldRelPath, records)
	assert.Equal(t, map[string][]string{
		"base": {"a.top", "b.top"},
		"dev":  {"c.top"},
	}, grouped)
}
