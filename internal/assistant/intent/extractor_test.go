package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	ex, err := NewExtractor(DefaultVocabulary())
	require.NoError(t, err)
	return ex
}

func TestExtract(t *testing.T) {
	ex := newTestExtractor(t)

	tests := []struct {
		name      string
		utterance string
		expected  Intent
	}{
		{
			name:      "category color and price in one utterance",
			utterance: "I want a red dress under $100",
			expected:  Intent{Category: "dress", Color: "red", PriceMax: 100},
		},
		{
			name:      "category only",
			utterance: "show me some pants",
			expected:  Intent{Category: "pants"},
		},
		{
			name:      "style keyword",
			utterance: "something baggy would be nice",
			expected:  Intent{Style: "baggy"},
		},
		{
			name:      "size token is uppercased",
			utterance: "size m please",
			expected:  Intent{Size: "M"},
		},
		{
			name:      "multi letter size wins over its suffix",
			utterance: "I need an XL jacket",
			expected:  Intent{Category: "jacket", Size: "XL"},
		},
		{
			name:      "price without dollar sign",
			utterance: "under 50 dollars",
			expected:  Intent{PriceMax: 50},
		},
		{
			name:      "spelling variant maps to canonical color",
			utterance: "a grey backpack",
			expected:  Intent{Category: "backpack", Color: "gray"},
		},
		{
			name:      "no signal leaves every field absent",
			utterance: "hmm, not sure",
			expected:  Intent{},
		},
		{
			name:      "empty utterance",
			utterance: "",
			expected:  Intent{},
		},
		{
			name:      "plural form still resolves the category",
			utterance: "show me red dresses under $100",
			expected:  Intent{Category: "dress", Color: "red", PriceMax: 100},
		},
		{
			name:      "plural question form",
			utterance: "any jackets?",
			expected:  Intent{Category: "jacket"},
		},
		{
			name:      "keyword matches inside a larger word",
			utterance: "the dresser in my room",
			expected:  Intent{Category: "dress"},
		},
		{
			name:      "size token inside another word does not match",
			utterance: "small talk",
			expected:  Intent{},
		},
		{
			name:      "color keyword never implies a category",
			utterance: "blue",
			expected:  Intent{Color: "blue"},
		},
		{
			name:      "case insensitive matching",
			utterance: "RED SHOES",
			expected:  Intent{Category: "shoes", Color: "red"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ex.Extract(tt.utterance))
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	ex := newTestExtractor(t)

	utterance := "slim black pants under $80, size L"
	first := ex.Extract(utterance)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ex.Extract(utterance))
	}
	assert.Equal(t, Intent{Category: "pants", Style: "slim", Color: "black", Size: "L", PriceMax: 80}, first)
}

func TestExtract_PriceEdgeCases(t *testing.T) {
	ex := newTestExtractor(t)

	tests := []struct {
		name      string
		utterance string
		expected  float64
	}{
		{"plain integer", "under $75", 75},
		{"no dollar sign", "under 75", 75},
		{"dollars suffix", "under 75 dollars", 75},
		{"zero treated as absent", "under $0", 0},
		{"overflowing amount treated as absent", "under $99999999999999999999999999", 0},
		{"no price phrase", "cheap please", 0},
		{"over is not a ceiling", "over $50", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ex.Extract(tt.utterance).PriceMax)
		})
	}
}

func TestNewExtractor_CustomVocabulary(t *testing.T) {
	ex, err := NewExtractor(Vocabulary{
		Categories: map[string][]string{"sofa": {"sofa", "couch"}},
		Colors:     map[string][]string{"beige": {"beige"}},
	})
	require.NoError(t, err)

	got := ex.Extract("a beige couch")
	assert.Equal(t, "sofa", got.Category)
	assert.Equal(t, "beige", got.Color)

	// Sizes fall back to the defaults when the vocabulary omits them.
	assert.Equal(t, "M", ex.Extract("size M").Size)
}

func TestNewExtractor_EmptyVocabulary(t *testing.T) {
	ex, err := NewExtractor(Vocabulary{})
	require.NoError(t, err)

	got := ex.Extract("red dress under $100")
	assert.Empty(t, got.Category)
	assert.Empty(t, got.Color)
	assert.Equal(t, float64(100), got.PriceMax)
}
