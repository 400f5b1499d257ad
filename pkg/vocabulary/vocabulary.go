// pkg/vocabulary/vocabulary.go
package vocabulary

import (
	"encoding/json"
	"fmt"
	"os"
)

func Load(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pack Pack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse vocabulary pack: %w", err)
	}

	if err := Validate(&pack); err != nil {
		return nil, err
	}

	return &pack, nil
}

// Validate checks that a pack carries usable vocabulary data.
func Validate(pack *Pack) error {
	if pack.Version == "" {
		return fmt.Errorf("vocabulary pack is missing a version")
	}
	if len(pack.Categories) == 0 {
		return fmt.Errorf("vocabulary pack has no categories")
	}
	if len(pack.Colors) == 0 {
		return fmt.Errorf("vocabulary pack has no colors")
	}
	for field, vocab := range map[string]map[string][]string{
		"categories": pack.Categories,
		"styles":     pack.Styles,
		"colors":     pack.Colors,
	} {
		for term, patterns := range vocab {
			if term == "" {
				return fmt.Errorf("%s: empty canonical term", field)
			}
			for _, p := range patterns {
				if p == "" {
					return fmt.Errorf("%s[%s]: empty pattern", field, term)
				}
			}
		}
	}
	return nil
}
