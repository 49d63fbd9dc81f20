package scraper

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func TestIsAdDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"pagead2.googlesyndication.com", true},
		{"STATS.G.DOUBLECLICK.NET", true},
		{"www.google-analytics.com.", true},
		{"www.zillow.com", false},
		{"files.zillowstatic.com", false},
		{"net", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, isAdDomain(tt.host))
		})
	}
}

func TestBlocker(t *testing.T) {
	b := newBlocker([]string{"Image", "Font", "Bogus"}, true)

	assert.False(t, b.empty())
	assert.True(t, b.blocks(proto.NetworkResourceTypeImage, "https://www.zillow.com/a.png"))
	assert.True(t, b.blocks(proto.NetworkResourceTypeScript, "https://www.googletagmanager.com/gtm.js"))
	assert.False(t, b.blocks(proto.NetworkResourceTypeScript, "https://www.zillow.com/app.js"))
	assert.False(t, b.blocks(proto.NetworkResourceTypeDocument, "https://www.zillow.com/research/data/"))
}

func TestBlocker_AdsOff(t *testing.T) {
	b := newBlocker(nil, false)

	assert.True(t, b.empty())
	assert.False(t, b.blocks(proto.NetworkResourceTypeScript, "https://doubleclick.net/x.js"))
}
