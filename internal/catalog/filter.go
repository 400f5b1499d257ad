package catalog

import (
	"strings"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/models"
)

// Item is a product together with the variant metadata the filter and facet
// derivation work on. Adapters that hold products in memory (the memory
// adapter, the Shopify adapter after fetching) share this representation.
type Item struct {
	models.Product
	Colors []string `json:"colors,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`
}

// matchesIntent applies the conjunctive filter contract: every present intent
// field must hold; absent fields impose no constraint.
func matchesIntent(it intent.Intent, item Item) bool {
	if it.HasCategory() && !matchesCategory(it.Category, item) {
		return false
	}
	if it.HasStyle() && !containsFold(item.Name, it.Style) && !containsFold(item.Description, it.Style) {
		return false
	}
	if it.HasColor() && !matchesColor(it.Color, item) {
		return false
	}
	if it.HasSize() && !containsToken(item.Sizes, it.Size) {
		return false
	}
	if it.HasPriceMax() && item.Price > it.PriceMax {
		return false
	}
	return true
}

// matchesCategory accepts a category match on the category field or the
// product name, mirroring storefronts that bury the product type in the title.
func matchesCategory(category string, item Item) bool {
	return containsFold(item.Category, category) || containsFold(item.Name, category)
}

func matchesColor(color string, item Item) bool {
	if containsToken(item.Colors, color) {
		return true
	}
	return containsFold(item.Name, color) || containsFold(item.Description, color)
}

// deriveAttributes computes which facets still distinguish the matched items:
// a facet is available only when the match set carries at least two distinct
// values for it. One-size match sets never offer a Size facet.
func deriveAttributes(items []Item) AttributeSet {
	categories := map[string]bool{}
	colors := map[string]bool{}
	sizes := map[string]bool{}

	for _, item := range items {
		if c := strings.ToLower(strings.TrimSpace(item.Category)); c != "" {
			categories[c] = true
		}
		for _, c := range item.Colors {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				colors[c] = true
			}
		}
		for _, s := range item.Sizes {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				sizes[s] = true
			}
		}
	}

	attrs := make(AttributeSet)
	if len(categories) > 1 {
		attrs[AttrCategory] = true
	}
	if len(colors) > 1 {
		attrs[AttrColor] = true
	}
	if len(sizes) > 1 {
		attrs[AttrSize] = true
	}
	return attrs
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}
