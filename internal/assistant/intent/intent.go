// Package intent models the accumulated understanding of what a shopper is
// looking for, and extracts partial intent signals from free-text utterances.
package intent

// Intent holds the shopper's product-search preferences. A zero value for a
// field means the field is not yet known; extraction never produces a false
// positive. Intent is treated as immutable: Merge and Extract always return
// new values.
type Intent struct {
	Category string  `json:"category,omitempty"`
	Style    string  `json:"style,omitempty"`
	Color    string  `json:"color,omitempty"`
	Size     string  `json:"size,omitempty"`
	PriceMax float64 `json:"priceMax,omitempty"`
}

func (i Intent) HasCategory() bool { return i.Category != "" }
func (i Intent) HasStyle() bool    { return i.Style != "" }
func (i Intent) HasColor() bool    { return i.Color != "" }
func (i Intent) HasSize() bool     { return i.Size != "" }
func (i Intent) HasPriceMax() bool { return i.PriceMax > 0 }

// IsEmpty reports whether no field is known yet.
func (i Intent) IsEmpty() bool {
	return i == Intent{}
}

// Merge folds incoming into accumulated with last-present-wins semantics: an
// incoming field overwrites the accumulated one only when it is present. A
// non-positive incoming price never overwrites. Neither input is mutated.
func Merge(accumulated, incoming Intent) Intent {
	merged := accumulated
	if incoming.HasCategory() {
		merged.Category = incoming.Category
	}
	if incoming.HasStyle() {
		merged.Style = incoming.Style
	}
	if incoming.HasColor() {
		merged.Color = incoming.Color
	}
	if incoming.HasSize() {
		merged.Size = incoming.Size
	}
	if incoming.HasPriceMax() {
		merged.PriceMax = incoming.PriceMax
	}
	return merged
}
