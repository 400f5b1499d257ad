package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/models"
)

func testItems() []Item {
	return []Item{
		{
			Product: models.Product{ID: "1", Name: "Running Shoes", Category: "shoes", Price: 89.99},
			Colors:  []string{"blue", "red"},
			Sizes:   []string{"S", "M", "L"},
		},
		{
			Product: models.Product{ID: "2", Name: "Trail Shoes", Category: "shoes", Price: 120.00},
			Colors:  []string{"black"},
			Sizes:   []string{"M", "L"},
		},
		{
			Product: models.Product{ID: "3", Name: "Summer Dress", Category: "dress", Price: 74.50, Description: "Light red summer dress"},
			Colors:  []string{"red"},
			Sizes:   []string{"S", "M"},
		},
		{
			Product: models.Product{ID: "4", Name: "Yoga Mat", Category: "mat", Price: 29.99},
			Colors:  []string{"purple"},
			Sizes:   nil,
		},
	}
}

func TestMemory_Query_ConjunctiveFilter(t *testing.T) {
	m := NewMemory(testItems(), 5)

	tests := []struct {
		name        string
		it          intent.Intent
		expectedIDs []string
	}{
		{
			name:        "empty intent matches everything",
			it:          intent.Intent{},
			expectedIDs: []string{"1", "2", "3", "4"},
		},
		{
			name:        "category filter",
			it:          intent.Intent{Category: "shoes"},
			expectedIDs: []string{"1", "2"},
		},
		{
			name:        "category and color must both hold",
			it:          intent.Intent{Category: "shoes", Color: "blue"},
			expectedIDs: []string{"1"},
		},
		{
			name:        "price ceiling is inclusive of cheaper items only",
			it:          intent.Intent{Category: "shoes", PriceMax: 100},
			expectedIDs: []string{"1"},
		},
		{
			name:        "size token match",
			it:          intent.Intent{Size: "S"},
			expectedIDs: []string{"1", "3"},
		},
		{
			name:        "color matched in the description",
			it:          intent.Intent{Category: "dress", Color: "red"},
			expectedIDs: []string{"3"},
		},
		{
			name:        "no match",
			it:          intent.Intent{Category: "shoes", Color: "purple"},
			expectedIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Query(context.Background(), tt.it)
			require.NoError(t, err)

			ids := make([]string, 0, len(res.Products))
			for _, p := range res.Products {
				ids = append(ids, p.ID)
			}
			if tt.expectedIDs == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.expectedIDs, ids)
			}
		})
	}
}

func TestMemory_Query_Facets(t *testing.T) {
	m := NewMemory(testItems(), 5)

	t.Run("full set varies on every facet", func(t *testing.T) {
		res, err := m.Query(context.Background(), intent.Intent{})
		require.NoError(t, err)
		assert.True(t, res.AvailableAttributes.Has(AttrCategory))
		assert.True(t, res.AvailableAttributes.Has(AttrColor))
		assert.True(t, res.AvailableAttributes.Has(AttrSize))
	})

	t.Run("single category match set drops the category facet", func(t *testing.T) {
		res, err := m.Query(context.Background(), intent.Intent{Category: "shoes"})
		require.NoError(t, err)
		assert.False(t, res.AvailableAttributes.Has(AttrCategory))
		assert.True(t, res.AvailableAttributes.Has(AttrColor))
		assert.True(t, res.AvailableAttributes.Has(AttrSize))
	})

	t.Run("one size match set never offers the size facet", func(t *testing.T) {
		res, err := m.Query(context.Background(), intent.Intent{Category: "mat"})
		require.NoError(t, err)
		assert.False(t, res.AvailableAttributes.Has(AttrSize))
	})
}

func TestMemory_Query_Paging(t *testing.T) {
	m := NewMemory(testItems(), 2)

	res, err := m.Query(context.Background(), intent.Intent{})
	require.NoError(t, err)

	assert.Len(t, res.Products, 2)
	// Facets still reflect the full match set, not the truncated page.
	assert.True(t, res.AvailableAttributes.Has(AttrCategory))
}

func TestMemory_Query_CancelledContext(t *testing.T) {
	m := NewMemory(testItems(), 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := m.Query(ctx, intent.Intent{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadItems_MissingFile(t *testing.T) {
	_, err := LoadItems("does-not-exist.json")
	assert.Error(t, err)
}

func TestAttributeSet_Has(t *testing.T) {
	s := NewAttributeSet(AttrCategory, "Color")

	assert.True(t, s.Has("Category"))
	assert.True(t, s.Has("category"))
	assert.True(t, s.Has("COLOR"))
	assert.False(t, s.Has("Size"))
	assert.False(t, AttributeSet(nil).Has("Category"))
}
