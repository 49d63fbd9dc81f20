package harvest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_DiffNewComplete(t *testing.T) {
	dir := &fakeDir{files: []string{"report.csv"}}
	l := NewLedger(dir.list, nil)

	before, err := l.Snapshot()
	require.NoError(t, err)

	dir.add("report(1).csv", "metro.csv.crdownload")
	after, err := l.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, []string{"report(1).csv"}, l.Diff(before, after))
}

func TestLedger_DiffSorted(t *testing.T) {
	l := NewLedger(nil, nil)
	after := ArtifactSet{"c.csv": {}, "a.csv": {}, "b.csv": {}}
	assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, l.Diff(ArtifactSet{}, after))
}

func TestLedger_DiffNothingNew(t *testing.T) {
	l := NewLedger(nil, nil)
	set := ArtifactSet{"a.csv": {}}
	assert.Empty(t, l.Diff(set, set))
}

func TestLedger_IsPartial(t *testing.T) {
	l := NewLedger(nil, nil)

	assert.True(t, l.IsPartial("data.csv.crdownload"))
	assert.True(t, l.IsPartial("DATA.CSV.CRDOWNLOAD"))
	assert.True(t, l.IsPartial("x.tmp"))
	assert.True(t, l.IsPartial("x.part"))
	assert.False(t, l.IsPartial("data.csv"))
	assert.False(t, l.IsPartial("partners.csv"))
}

func TestLedger_CustomSuffixes(t *testing.T) {
	l := NewLedger(nil, []string{".Partial"})
	assert.True(t, l.IsPartial("a.csv.partial"))
	assert.False(t, l.IsPartial("a.csv.crdownload"))
}

func TestLedger_RecordMonotonic(t *testing.T) {
	l := NewLedger(nil, nil)

	assert.Equal(t, 2, l.Record("a.csv", "b.csv"))
	assert.Equal(t, 1, l.Record("b.csv", "c.csv"))
	assert.Equal(t, 0, l.Record("a.csv"))

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, l.Artifacts())
}

func TestLedger_Unrecorded(t *testing.T) {
	l := NewLedger(nil, nil)
	l.Record("a.csv")
	assert.Equal(t, []string{"b.csv"}, l.Unrecorded([]string{"a.csv", "b.csv"}))
	assert.Empty(t, l.Unrecorded(nil))
}

func TestLedger_SnapshotError(t *testing.T) {
	dir := &fakeDir{err: errBoom}
	_, err := NewLedger(dir.list, nil).Snapshot()
	assert.ErrorIs(t, err, errBoom)
}

func TestDirLister_RegularFilesOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv.crdownload"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	names, err := DirLister(dir)()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.csv", "b.csv.crdownload"}, names)
}

func TestDirLister_MissingDir(t *testing.T) {
	_, err := DirLister(filepath.Join(t.TempDir(), "nope"))()
	assert.Error(t, err)
}
