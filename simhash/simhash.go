// Package simhash computes 64-bit SimHash fingerprints so that files with
// nearly the same content can be spotted cheaply.
package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Fingerprint hashes the whitespace-separated words of text.
func Fingerprint(text string) uint64 {
	return FingerprintTokens(strings.Fields(text))
}

// FingerprintTokens hashes tokens with FNV-64a and folds them into one
// fingerprint. No tokens gives 0.
func FingerprintTokens(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int
	h := fnv.New64a()
	for _, tok := range tokens {
		h.Reset()
		h.Write([]byte(tok))
		sum := h.Sum64()

		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether a and b are within threshold bits of each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

// Group clusters keys whose fingerprints are Similar to the first member of
// a cluster. Only clusters with two or more members are returned, in the
// order their first member appears in keys.
func Group(keys []string, fps map[string]uint64, threshold int) [][]string {
	var groups [][]string
	used := make(map[string]bool, len(keys))
	for i, k := range keys {
		if used[k] {
			continue
		}
		group := []string{k}
		for _, other := range keys[i+1:] {
			if !used[other] && other != k && Similar(fps[k], fps[other], threshold) {
				group = append(group, other)
				used[other] = true
			}
		}
		if len(group) > 1 {
			groups = append(groups, group)
		}
		used[k] = true
	}
	return groups
}
