package models

// Product is a single catalog item as presented to the widget. It is owned
// and produced exclusively by the catalog adapters; the core never mutates it.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Handle      string  `json:"handle,omitempty"` // canonical slug for deep-linking
}
