package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/use-agent/harvest/simhash"
)

// fingerprintBytes caps how much of each file is hashed.
const fingerprintBytes = 4 << 20

// DefaultDuplicateThreshold is the Hamming distance under which two files
// are reported as near-duplicates.
const DefaultDuplicateThreshold = 3

// Fingerprint returns the SimHash of the lines of name.
func (s *Store) Fingerprint(name string) (uint64, error) {
	path, err := s.path(name)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return 0, fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(io.LimitReader(f, fingerprintBytes))
	sc.Buffer(make([]byte, 64*1024), fingerprintBytes)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("dataset: scan %s: %w", name, err)
	}
	return simhash.FingerprintTokens(lines), nil
}

// Duplicates groups names whose contents are within threshold bits of each
// other. Files that cannot be read or are empty are skipped.
func (s *Store) Duplicates(names []string, threshold int) [][]string {
	fps := make(map[string]uint64, len(names))
	readable := make([]string, 0, len(names))
	for _, n := range names {
		fp, err := s.Fingerprint(n)
		if err != nil || fp == 0 {
			continue
		}
		fps[n] = fp
		readable = append(readable, n)
	}
	return simhash.Group(readable, fps, threshold)
}
