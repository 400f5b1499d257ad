package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/models"
)

// LoadItems reads a JSON item list, the same document the catalog-seeder
// tool consumes.
func LoadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog items: %w", err)
	}

	return items, nil
}

// Memory is an in-memory Querier over a static item slice. It backs local
// development and tests, and defines the reference semantics the remote
// adapters follow.
type Memory struct {
	items    []Item
	pageSize int
}

// NewMemory creates an in-memory catalog. pageSize bounds the returned page;
// values below 1 fall back to 5.
func NewMemory(items []Item, pageSize int) *Memory {
	if pageSize < 1 {
		pageSize = 5
	}
	return &Memory{items: items, pageSize: pageSize}
}

func (m *Memory) Query(ctx context.Context, it intent.Intent) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []Item
	for _, item := range m.items {
		if matchesIntent(it, item) {
			matched = append(matched, item)
		}
	}

	page := matched
	if len(page) > m.pageSize {
		page = page[:m.pageSize]
	}

	products := make([]models.Product, 0, len(page))
	for _, item := range page {
		products = append(products, item.Product)
	}

	// Facets come from the full match set, not just the returned page.
	return &Result{
		Products:            products,
		AvailableAttributes: deriveAttributes(matched),
	}, nil
}
