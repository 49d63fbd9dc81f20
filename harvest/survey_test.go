package harvest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurvey(t *testing.T) {
	page := newFakePage()
	page.section("s1", true, map[string][]Option{
		"c1": append([]Option{{Label: "Select..."}}, opts("a", "b")...),
		"c2": opts("x", "y", "z"),
	}, "c1", "c2")
	page.section("s2", true, map[string][]Option{"c3": {{Label: "Select..."}}}, "c3")
	page.trigger = func(region string, _ map[string]string) bool { return region == "s1" }

	plans, err := Survey(context.Background(), page, discard)

	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, 6, plans[0].Combinations)
	assert.True(t, plans[0].HasTrigger)
	assert.True(t, plans[0].Schedulable())
	assert.Len(t, plans[0].OptionSets[0], 2)
	assert.False(t, plans[1].Schedulable())
	assert.False(t, plans[1].HasTrigger)
	assert.Equal(t, 6, TotalCombinations(plans))
	assert.Zero(t, page.invokes)
	assert.Empty(t, page.applies)
}

func TestSurvey_PageError(t *testing.T) {
	page := newFakePage()
	page.regionErr = errBoom

	_, err := Survey(context.Background(), page, discard)
	assert.ErrorIs(t, err, errBoom)
}
