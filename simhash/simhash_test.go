package simhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	text := "RegionID RegionName 2024-01-31 102001 United States 345000"
	assert.Equal(t, Fingerprint(text), Fingerprint(text))
	assert.NotZero(t, Fingerprint("hello"))
}

func TestFingerprint_Empty(t *testing.T) {
	assert.Zero(t, Fingerprint(""))
	assert.Zero(t, Fingerprint("   \t\n  "))
	assert.Zero(t, FingerprintTokens(nil))
}

func TestFingerprintTokens_SimilarVsDifferent(t *testing.T) {
	base := []string{
		"RegionID,RegionName,2024-01-31",
		"102001,United States,345000",
		"394913,New York NY,650000",
		"753899,Los Angeles CA,920000",
		"394463,Chicago IL,310000",
		"394514,Dallas TX,370000",
		"394692,Houston TX,300000",
		"395209,Washington DC,560000",
	}
	edited := append([]string(nil), base...)
	edited[7] = "395209,Washington DC,561000"

	other := []string{
		"Date,Rent",
		"2024-01,1800",
		"2024-02,1815",
		"2024-03,1822",
	}

	near := Distance(FingerprintTokens(base), FingerprintTokens(edited))
	far := Distance(FingerprintTokens(base), FingerprintTokens(other))
	assert.Less(t, near, far)
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestSimilar(t *testing.T) {
	a := Fingerprint("the quick brown fox")
	b := Fingerprint("a completely different text about nothing related")
	dist := Distance(a, b)

	assert.True(t, Similar(a, a, 0))
	assert.True(t, Similar(a, b, dist))
	if dist > 0 {
		assert.False(t, Similar(a, b, dist-1))
	}
}

func TestGroup(t *testing.T) {
	fps := map[string]uint64{
		"a.csv": 0b0000,
		"b.csv": 0xFFFF_0000,
		"c.csv": 0b0001,
		"d.csv": 0xFFFF_0000,
		"e.csv": 0x00FF_00FF_00FF,
	}
	keys := []string{"a.csv", "b.csv", "c.csv", "d.csv", "e.csv"}

	groups := Group(keys, fps, 1)

	assert.Equal(t, [][]string{{"a.csv", "c.csv"}, {"b.csv", "d.csv"}}, groups)
	assert.Empty(t, Group(keys, fps, -1))
	assert.Empty(t, Group(nil, fps, 3))
}
