package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
	"github.com/bryanwahyu/visiai/internal/domain/scans"
)

func TestEncodeDecodeKeepsRecord(t *testing.T) {
	s := &scans.Scan{
		ID:         "abc",
		URL:        "https://example.com",
		Timestamp:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Screenshot: "data:image/jpeg;base64,xx",
		Scores:     scans.Scores{VisualClarity: 70, Accessibility: 80, Readability: 60, ReimagineUX: 90, FocusAccuracy: 50, Overall: 72},
		Metrics: scans.Metrics{
			TextReadability: scans.TextReadability{FleschScore: 61.2, GradeLevel: "Grade 8-9 (Standard)", Issues: []string{}},
		},
		AIAnalysis:      scans.AIAnalysis{Provider: "OpenAI", AttentionZones: providers.DefaultZones()},
		Recommendations: []string{"Test with keyboard navigation only"},
		Heatmap:         scans.Heatmap{Zones: providers.DefaultZones(), MaxIntensity: 1},
		Providers:       scans.ProviderOutcomes{Audit: providers.Defaulted(providers.ReasonTimeout)},
	}

	cols, err := EncodeScan(s)
	require.NoError(t, err)
	assert.Len(t, cols.Args(), len(cols.Dest()))

	got, err := cols.Decode()
	require.NoError(t, err)
	assert.Equal(t, s.Scores, got.Scores)
	assert.Equal(t, s.Metrics.TextReadability, got.Metrics.TextReadability)
	assert.Equal(t, s.Heatmap, got.Heatmap)
	assert.Equal(t, s.Providers, got.Providers)
	assert.Equal(t, s.Recommendations, got.Recommendations)
}

func TestSelectList(t *testing.T) {
	assert.Contains(t, SelectList(true), " screenshot,")
	assert.Contains(t, SelectList(false), "'' AS screenshot")
}

func TestNormalizeDetails(t *testing.T) {
	assert.Equal(t, "{}", NormalizeDetails(" "))
	assert.Equal(t, `{"a":1}`, NormalizeDetails(`{"a":1}`))
	assert.Equal(t, `{"raw":"oops"}`, NormalizeDetails("oops"))
}

func TestPage(t *testing.T) {
	page, size, offset := Page(0, 0)
	assert.Equal(t, []int{1, 20, 0}, []int{page, size, offset})
	page, size, offset = Page(3, 10)
	assert.Equal(t, []int{3, 10, 20}, []int{page, size, offset})
}
