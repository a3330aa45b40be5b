package tops

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrgaway/topd/pkg/config"
	"github.com/nrgaway/topd/pkg/testutil"
)

// topsFixture builds a base root carrying two top files and a dev root with
// one, no control entries yet.
func topsFixture(t *testing.T) (*Resolver, *config.Config, string) {
	t.Helper()
	cfg, tmp := testutil.RootsConfig(t, "base", "dev")

	base := testutil.Root(tmp, "base")
	testutil.CreateFile(t, base, "salt/init.top", "base:\n  '*':\n    - salt\n")
	testutil.CreateFile(t, base, "minion.top", "base:\n  '*':\n    - salt.minion\n")
	testutil.CreateFile(t, base, "salt/init.sls", "")

	dev := testutil.Root(tmp, "dev")
	testutil.CreateFile(t, dev, "tools.top", "dev:\n  '*':\n    - tools\n")

	return New(cfg, Options{}), cfg, tmp
}

func TestTopName(t *testing.T) {
	r, _, _ := topsFixture(t)

	tests := []struct {
		relPath string
		want    string
	}{
		{"salt/init.top", "salt"},
		{"minion.top", "minion"},
		{"salt/minion.top", "salt.minion"},
		{"_topd/base|salt.top", "salt"},
		{"_topd/base/salt.top", "salt"},
		{"_topd/dev|salt.minion.top", "salt.minion"},
		{"Salt/Init.top", "salt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.TopName(tt.relPath), tt.relPath)
	}
}

func TestLogicalNameRoundTrip(t *testing.T) {
	r, _, _ := topsFixture(t)

	records, err := r.Tops()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	// Every discovered record's relative path is among the candidates its
	// own logical name converts back to.
	for _, record := range records {
		candidates := r.PathOf(record.TopName)
		assert.Contains(t, candidates, filepath.ToSlash(record.RelPath), record.TopName)
	}
}

func TestSplitQualified(t *testing.T) {
	saltenv, name := splitQualified("base|salt")
	assert.Equal(t, "base", saltenv)
	assert.Equal(t, "salt", name)

	saltenv, name = splitQualified("salt.minion")
	assert.Empty(t, saltenv)
	assert.Equal(t, "salt.minion", name)

	saltenv, name = splitQualified("dev|tools.top")
	assert.Equal(t, "dev", saltenv)
	assert.Equal(t, "tools", name)
}

func TestTopsDiscovery(t *testing.T) {
	r, _, _ := topsFixture(t)

	records, err := r.Tops()
	require.NoError(t, err)
	require.Len(t, records, 3)

	names, err := r.Names()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"salt", "minion", "tools"}, names)

	// .sls files are never top records
	for _, record := range records {
		assert.Equal(t, ".top", filepath.Ext(record.RelPath))
	}
}

func TestTopsRestrictedToEnvironment(t *testing.T) {
	r, _, _ := topsFixture(t)

	records, err := r.Tops("dev")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tools", records[0].TopName)
	assert.Equal(t, "dev", records[0].Saltenv)
}

func TestStatusAllDisabledInitially(t *testing.T) {
	r, _, _ := topsFixture(t)

	status, err := r.Status(nil)
	require.NoError(t, err)
	assert.Empty(t, status.Enabled)
	assert.Len(t, status.Disabled, 3)

	enabled, err := r.IsEnabled([]string{"salt"})
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestControlEntryCorrectsSaltenv(t *testing.T) {
	r, _, tmp := topsFixture(t)
	base := testutil.Root(tmp, "base")

	// A control entry under the base root that names the dev environment is
	// attributed to dev, not to the root it sits under.
	target := filepath.Join(testutil.Root(tmp, "dev"), "tools.top")
	testutil.CreateSymlink(t, target, filepath.Join(base, "_topd/dev|tools.top"))

	enabled, err := r.Enabled(nil)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "dev", enabled[0].Saltenv)
	assert.Equal(t, "tools", enabled[0].TopName)
}

func TestInvalidate(t *testing.T) {
	r, _, tmp := topsFixture(t)

	records, err := r.Tops()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Cached until invalidated
	testutil.CreateFile(t, testutil.Root(tmp, "base"), "extra.top", "")
	records, err = r.Tops()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	r.Invalidate()
	records, err = r.Tops()
	require.NoError(t, err)
	assert.Len(t, records, 4)
}
