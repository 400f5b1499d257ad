// Package catalog provides the product search capability the assistant core
// queries: conjunctive filtering across every present intent field, a bounded
// result page, and the set of facets that still distinguish the matched
// products.
package catalog

import (
	"context"
	"errors"
	"strings"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/models"
)

// Canonical facet names exposed through AvailableAttributes.
const (
	AttrCategory = "Category"
	AttrColor    = "Color"
	AttrSize     = "Size"
)

var (
	ErrQueryFailed   = errors.New("CATALOG_QUERY_FAILED")
	ErrSearchTimeout = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound = errors.New("INDEX_NOT_FOUND")
)

// AttributeSet holds the attribute names that meaningfully distinguish the
// current match set. It is recomputed on every query, never cached across
// turns.
type AttributeSet map[string]bool

// NewAttributeSet builds a set from attribute names.
func NewAttributeSet(names ...string) AttributeSet {
	s := make(AttributeSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Has reports whether the named attribute is in the set. Matching is
// case-insensitive to be robust against adapter naming variance.
func (s AttributeSet) Has(name string) bool {
	if s[name] {
		return true
	}
	for n := range s {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Names returns the attribute names in unspecified order.
func (s AttributeSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	return out
}

// Result is one page of matching products plus the facets derived from the
// full match set.
type Result struct {
	Products            []models.Product
	AvailableAttributes AttributeSet
}

// Querier is the catalog capability the core requires from its environment.
// Implementations must filter conjunctively across every present intent field
// and must return an empty Result rather than an error for "no matches".
type Querier interface {
	Query(ctx context.Context, it intent.Intent) (*Result, error)
}
