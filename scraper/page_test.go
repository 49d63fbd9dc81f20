package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/harvest/harvest"
	"github.com/ysmood/gson"
)

func TestParseOptions(t *testing.T) {
	v := gson.NewFrom(`[
		{"value": null, "label": "Select a data type"},
		{"value": "", "label": "--"},
		{"value": "zhvi_all", "label": "  ZHVI All Homes  "},
		{"value": "zori", "label": "ZORI"}
	]`)

	got := parseOptions(v)

	assert.Equal(t, []harvest.Option{
		{Value: "", Label: "Select a data type"},
		{Value: "", Label: "--"},
		{Value: "zhvi_all", Label: "ZHVI All Homes"},
		{Value: "zori", Label: "ZORI"},
	}, got)
}

func TestParseOptions_Empty(t *testing.T) {
	assert.Empty(t, parseOptions(gson.NewFrom(`[]`)))
}

func TestUnwrap_ForeignElement(t *testing.T) {
	_, err := unwrap(foreign("x"))
	assert.Error(t, err)
}

func TestReferrerHeaders(t *testing.T) {
	h := referrerHeaders("https://www.zillow.com/research/data/")
	assert.Equal(t, "https://www.google.com/search?q=www.zillow.com", h["Referer"])
	assert.Nil(t, referrerHeaders("::not a url"))
}

type foreign string

func (f foreign) String() string { return string(f) }
