// Package dataset gives read-only access to the CSV files in a download
// directory: listing, previewing, and projecting two columns as a series.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/harvest/cache"
	"github.com/use-agent/harvest/models"
)

var (
	ErrNotFound      = errors.New("dataset: file not found")
	ErrInvalidName   = errors.New("dataset: invalid file name")
	ErrUnknownColumn = errors.New("dataset: unknown column")
	ErrEmpty         = errors.New("dataset: file has no header")
)

// DefaultPreviewRows matches a typical head() preview.
const DefaultPreviewRows = 5

// Store reads CSV files from one directory.
type Store struct {
	dir    string
	series *cache.Cache[seriesResult]
}

type seriesResult struct {
	x []string
	y []*float64
}

// NewStore creates a Store over dir. The directory need not exist yet.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// CacheSeries keeps up to entries Series results for ttl. Entries are keyed
// by file size and modification time, so a rewritten file is re-read.
func (s *Store) CacheSeries(entries int, ttl time.Duration) *Store {
	if entries > 0 {
		s.series = cache.New[seriesResult](entries, ttl)
	}
	return s
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string { return s.dir }

// List returns the .csv regular files in the directory, sorted by name.
func (s *Store) List() ([]models.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", s.dir, err)
	}
	files := make([]models.FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, models.FileInfo{
			Name:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Unix(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// open resolves name inside the directory, refusing anything that is not a
// plain .csv file name.
func (s *Store) open(name string) (*csv.Reader, io.Closer, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: open %s: %w", name, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r, f, nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") ||
		!strings.EqualFold(filepath.Ext(name), ".csv") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

func readHeader(r *csv.Reader, name string) ([]string, error) {
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, name)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read header of %s: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return header, nil
}

// Head returns the header and at most n data rows of name.
func (s *Store) Head(name string, n int) ([]string, [][]string, error) {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	r, closer, err := s.open(name)
	if err != nil {
		return nil, nil, err
	}
	defer closer.Close()

	header, err := readHeader(r, name)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, 0, n)
	for len(rows) < n {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: read %s: %w", name, err)
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// Series projects columns x and y of name. Y cells that are not numbers
// come back as nil. limit <= 0 reads the whole file.
func (s *Store) Series(name, x, y string, limit int) ([]string, []*float64, error) {
	if s.series == nil {
		return s.readSeries(name, x, y, limit)
	}
	path, err := s.path(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		// Let readSeries produce the usual not-found error.
		return s.readSeries(name, x, y, limit)
	}
	key := cache.Key(name, strconv.FormatInt(info.ModTime().UnixNano(), 10),
		strconv.FormatInt(info.Size(), 10), x, y, strconv.Itoa(limit))
	if hit, ok := s.series.Get(key); ok {
		return hit.x, hit.y, nil
	}
	xs, ys, err := s.readSeries(name, x, y, limit)
	if err != nil {
		return nil, nil, err
	}
	s.series.Set(key, seriesResult{x: xs, y: ys})
	return xs, ys, nil
}

func (s *Store) readSeries(name, x, y string, limit int) ([]string, []*float64, error) {
	r, closer, err := s.open(name)
	if err != nil {
		return nil, nil, err
	}
	defer closer.Close()

	header, err := readHeader(r, name)
	if err != nil {
		return nil, nil, err
	}
	xi, yi := indexOf(header, x), indexOf(header, y)
	if xi < 0 {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, x)
	}
	if yi < 0 {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, y)
	}

	var xs []string
	var ys []*float64
	for limit <= 0 || len(xs) < limit {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: read %s: %w", name, err)
		}
		xs = append(xs, cell(rec, xi))
		ys = append(ys, number(cell(rec, yi)))
	}
	return xs, ys, nil
}

func indexOf(header []string, col string) int {
	for i, h := range header {
		if h == col {
			return i
		}
	}
	return -1
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func number(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
