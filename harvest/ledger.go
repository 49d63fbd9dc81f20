package harvest

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// DefaultPartialSuffixes mark files a browser is still writing.
var DefaultPartialSuffixes = []string{".crdownload", ".tmp", ".part", ".download"}

// ArtifactSet is a snapshot of the artifact ids present in the watched location.
type ArtifactSet map[string]struct{}

// Has reports whether id is in the set.
func (s ArtifactSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Lister returns the artifact ids currently in the watched location.
type Lister func() ([]string, error)

// DirLister lists the regular files directly inside dir.
func DirLister(dir string) Lister {
	return func() ([]string, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("ledger: read %s: %w", dir, err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Type().IsRegular() {
				names = append(names, e.Name())
			}
		}
		return names, nil
	}
}

// Ledger records every artifact observed during one run. It only grows.
// It is safe for concurrent use.
type Ledger struct {
	lister   Lister
	suffixes []string

	mu    sync.Mutex
	seen  ArtifactSet
	order []string
}

// NewLedger creates a ledger over lister. A nil or empty suffix list falls
// back to DefaultPartialSuffixes.
func NewLedger(lister Lister, partialSuffixes []string) *Ledger {
	if len(partialSuffixes) == 0 {
		partialSuffixes = DefaultPartialSuffixes
	}
	suffixes := make([]string, len(partialSuffixes))
	for i, s := range partialSuffixes {
		suffixes[i] = strings.ToLower(s)
	}
	return &Ledger{
		lister:   lister,
		suffixes: suffixes,
		seen:     make(ArtifactSet),
	}
}

// Snapshot lists the watched location.
func (l *Ledger) Snapshot() (ArtifactSet, error) {
	ids, err := l.lister()
	if err != nil {
		return nil, err
	}
	set := make(ArtifactSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// IsPartial reports whether id carries an in-progress marker.
func (l *Ledger) IsPartial(id string) bool {
	lower := strings.ToLower(id)
	for _, s := range l.suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Diff returns the complete ids present in after but not in before, sorted.
func (l *Ledger) Diff(before, after ArtifactSet) []string {
	var fresh []string
	for id := range after {
		if before.Has(id) || l.IsPartial(id) {
			continue
		}
		fresh = append(fresh, id)
	}
	sort.Strings(fresh)
	return fresh
}

// Record adds ids to the ledger and returns how many were not yet recorded.
func (l *Ledger) Record(ids ...string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	added := 0
	for _, id := range ids {
		if l.seen.Has(id) {
			continue
		}
		l.seen[id] = struct{}{}
		l.order = append(l.order, id)
		added++
	}
	return added
}

// Unrecorded filters ids down to those not yet in the ledger.
func (l *Ledger) Unrecorded(ids []string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := ids[:0:0]
	for _, id := range ids {
		if !l.seen.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Len is the number of distinct artifacts recorded.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// Artifacts returns the recorded ids in the order they were first seen.
func (l *Ledger) Artifacts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}
