package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metroCSV = "\uFEFFRegionID,RegionName,StateName,2024-01-31,2024-02-29\n" +
	"102001,United States,,345000.5,346100\n" +
	"394913,\"New York, NY\",NY,650000,\n" +
	"753899,\"Los Angeles, CA\",CA,920000,921500\n"

func writeFiles(t *testing.T, files map[string]string) *Store {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return NewStore(dir)
}

func TestList(t *testing.T) {
	s := writeFiles(t, map[string]string{
		"zori.csv":               "a\n1\n",
		"Metro_zhvi.CSV":         metroCSV,
		"notes.txt":              "x",
		"pending.csv.crdownload": "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "sub.csv"), 0o755))

	files, err := s.List()

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "Metro_zhvi.CSV", files[0].Name)
	assert.Equal(t, "zori.csv", files[1].Name)
	assert.Equal(t, int64(len("a\n1\n")), files[1].Size)
	assert.NotZero(t, files[1].Modified)
}

func TestList_MissingDir(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing")).List()
	assert.Error(t, err)
}

func TestHead(t *testing.T) {
	s := writeFiles(t, map[string]string{"metro.csv": metroCSV})

	cols, rows, err := s.Head("metro.csv", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"RegionID", "RegionName", "StateName", "2024-01-31", "2024-02-29"}, cols)
	require.Len(t, rows, 2)
	assert.Equal(t, "New York, NY", rows[1][1])
}

func TestHead_DefaultRows(t *testing.T) {
	s := writeFiles(t, map[string]string{"metro.csv": metroCSV})

	_, rows, err := s.Head("metro.csv", 0)

	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestHead_Errors(t *testing.T) {
	s := writeFiles(t, map[string]string{"empty.csv": ""})

	_, _, err := s.Head("empty.csv", 5)
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = s.Head("nope.csv", 5)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, name := range []string{"../secret.csv", "a/b.csv", ".hidden.csv", "data.txt", ""} {
		_, _, err = s.Head(name, 5)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestSeries(t *testing.T) {
	s := writeFiles(t, map[string]string{"metro.csv": metroCSV})

	xs, ys, err := s.Series("metro.csv", "RegionName", "2024-02-29", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"United States", "New York, NY", "Los Angeles, CA"}, xs)
	require.Len(t, ys, 3)
	require.NotNil(t, ys[0])
	assert.Equal(t, 346100.0, *ys[0])
	assert.Nil(t, ys[1])
	assert.Equal(t, 921500.0, *ys[2])
}

func TestSeries_Limit(t *testing.T) {
	s := writeFiles(t, map[string]string{"metro.csv": metroCSV})

	xs, ys, err := s.Series("metro.csv", "RegionID", "2024-01-31", 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"102001"}, xs)
	assert.Equal(t, 345000.5, *ys[0])
}

func TestSeries_UnknownColumn(t *testing.T) {
	s := writeFiles(t, map[string]string{"metro.csv": metroCSV})

	_, _, err := s.Series("metro.csv", "RegionName", "Price", 0)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSeries_Cached(t *testing.T) {
	s := writeFiles(t, map[string]string{"a.csv": "x,y\nq1,1\n"}).CacheSeries(8, time.Minute)
	path := filepath.Join(s.Dir(), "a.csv")
	info, err := os.Stat(path)
	require.NoError(t, err)

	_, ys, err := s.Series("a.csv", "x", "y", 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *ys[0])

	// Same size and mtime: served from cache.
	require.NoError(t, os.WriteFile(path, []byte("x,y\nq1,2\n"), 0o644))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))
	_, ys, err = s.Series("a.csv", "x", "y", 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *ys[0])

	// Different size: re-read.
	require.NoError(t, os.WriteFile(path, []byte("x,y\nq1,30\n"), 0o644))
	_, ys, err = s.Series("a.csv", "x", "y", 0)
	require.NoError(t, err)
	assert.Equal(t, 30.0, *ys[0])

	_, _, err = s.Series("gone.csv", "x", "y", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicates(t *testing.T) {
	s := writeFiles(t, map[string]string{
		"zhvi_metro.csv":    metroCSV,
		"zhvi_metro(1).csv": metroCSV,
		"zori.csv":          "Date,Rent\n2024-01,1800\n2024-02,1815\n",
		"empty.csv":         "",
	})

	groups := s.Duplicates([]string{"zhvi_metro.csv", "zori.csv", "zhvi_metro(1).csv", "empty.csv", "missing.csv", "../x.csv"}, 0)

	assert.Equal(t, [][]string{{"zhvi_metro.csv", "zhvi_metro(1).csv"}}, groups)
}

func TestFingerprint_Errors(t *testing.T) {
	s := writeFiles(t, nil)

	_, err := s.Fingerprint("nope.csv")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Fingerprint("../etc.csv")
	assert.ErrorIs(t, err, ErrInvalidName)
}
