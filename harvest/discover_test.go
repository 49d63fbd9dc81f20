package harvest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_PrefersQualifiedRegions(t *testing.T) {
	page := newFakePage()
	page.section("home-values", true, map[string][]Option{"c1": opts("a")}, "c1")
	page.section("rentals", false, map[string][]Option{"c2": opts("b")}, "c2")

	sections, err := Discover(context.Background(), page, discard)

	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "home-values", sections[0].Region.String())
	assert.True(t, sections[0].Qualified)
	assert.Equal(t, 0, sections[0].Index)
}

func TestDiscover_FallsBackToAnyRegionWithControls(t *testing.T) {
	page := newFakePage()
	page.section("first", false, map[string][]Option{"c1": opts("a")}, "c1")
	page.section("second", false, map[string][]Option{"c2": opts("b"), "c3": opts("c")}, "c2", "c3")

	sections, err := Discover(context.Background(), page, discard)

	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.False(t, sections[0].Qualified)
	assert.Equal(t, "second", sections[1].Region.String())
	assert.Len(t, sections[1].Controls, 2)
	assert.Equal(t, 1, sections[1].Index)
}

func TestDiscover_DropsRegionsWithoutControls(t *testing.T) {
	page := newFakePage()
	page.section("empty", true, nil)
	page.section("broken", true, map[string][]Option{"c0": opts("z")}, "c0")
	page.controlsErr["broken"] = errBoom
	page.section("real", true, map[string][]Option{"c1": opts("a")}, "c1")

	sections, err := Discover(context.Background(), page, discard)

	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "real", sections[0].Region.String())
	assert.Equal(t, 0, sections[0].Index)
}

func TestDiscover_NoRegions(t *testing.T) {
	sections, err := Discover(context.Background(), newFakePage(), discard)
	assert.NoError(t, err)
	assert.Empty(t, sections)
}

func TestDiscover_PageUnusable(t *testing.T) {
	page := newFakePage()
	page.regionErr = errBoom

	_, err := Discover(context.Background(), page, discard)
	assert.ErrorIs(t, err, errBoom)
}

func TestEnumerate_DropsPlaceholders(t *testing.T) {
	page := newFakePage()
	page.options["c1"] = []Option{
		{Value: "", Label: "Select a metric"},
		{Value: "zhvi", Label: "  ZHVI  "},
		{Value: "zori", Label: "ZORI"},
	}

	got := Enumerate(context.Background(), page, fakeEl("c1"), discard)

	assert.Equal(t, []Option{{Value: "zhvi", Label: "ZHVI"}, {Value: "zori", Label: "ZORI"}}, got)
}

func TestEnumerate_OnlyPlaceholder(t *testing.T) {
	page := newFakePage()
	page.options["c1"] = []Option{{Value: "", Label: "Choose..."}}

	assert.Empty(t, Enumerate(context.Background(), page, fakeEl("c1"), discard))
}

func TestEnumerate_ReadFailure(t *testing.T) {
	page := newFakePage()
	page.optionsErr["c1"] = errBoom

	assert.Nil(t, Enumerate(context.Background(), page, fakeEl("c1"), discard))
}
