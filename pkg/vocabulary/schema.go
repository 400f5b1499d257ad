// pkg/vocabulary/schema.go
package vocabulary

// Pack is a versioned, loadable vocabulary document: canonical terms mapped
// to their matching patterns per intent field, plus the size token set.
// Packs let merchants swap keyword data without a code change.
type Pack struct {
	Version     string              `json:"version"`
	LastUpdated string              `json:"lastUpdated,omitempty"`
	Categories  map[string][]string `json:"categories"`
	Styles      map[string][]string `json:"styles"`
	Colors      map[string][]string `json:"colors"`
	Sizes       []string            `json:"sizes"`
}
