package intent

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Vocabulary holds the keyword data extraction matches against. Each map goes
// from a canonical term to the patterns that produce it; Sizes is the fixed
// token enumeration. Vocabularies are configuration, not code.
type Vocabulary struct {
	Categories map[string][]string
	Styles     map[string][]string
	Colors     map[string][]string
	Sizes      []string
}

// DefaultVocabulary returns the built-in storefront vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Categories: map[string][]string{
			"pants": {"pants"}, "shoes": {"shoes"}, "dress": {"dress"},
			"shirt": {"shirt"}, "jacket": {"jacket"}, "backpack": {"backpack"},
			"mat": {"mat"}, "lamp": {"lamp"}, "bottle": {"bottle"},
			"phone": {"phone"}, "laptop": {"laptop"}, "speaker": {"speaker"},
			"maker": {"maker"}, "mouse": {"mouse"},
		},
		Styles: map[string][]string{
			"baggy": {"baggy"}, "slim": {"slim"}, "skinny": {"skinny"},
			"regular": {"regular"}, "running": {"running"}, "portable": {"portable"},
			"wireless": {"wireless"}, "eco-friendly": {"eco-friendly"},
			"non-slip": {"non-slip"}, "adjustable": {"adjustable"},
			"insulated": {"insulated"}, "ergonomic": {"ergonomic"},
		},
		Colors: map[string][]string{
			"red": {"red"}, "blue": {"blue"}, "black": {"black"},
			"white": {"white"}, "green": {"green"}, "yellow": {"yellow"},
			"gray": {"gray", "grey"}, "pink": {"pink"}, "purple": {"purple"},
			"orange": {"orange"},
		},
		Sizes: []string{"XS", "S", "M", "L", "XL", "XXL"},
	}
}

// Extractor turns one utterance into a partial Intent by independent,
// case-insensitive keyword matching per field. Extraction is a pure function:
// the same utterance always yields the same Intent, and a field that does not
// match is simply left absent.
type Extractor struct {
	categories *fieldMatcher
	styles     *fieldMatcher
	colors     *fieldMatcher
	sizeRe     *regexp.Regexp
	priceRe    *regexp.Regexp
}

var priceRe = regexp.MustCompile(`(?i)under\s+\$?(\d+)(?:\s*dollars)?`)

// NewExtractor compiles the vocabulary into matchers.
func NewExtractor(vocab Vocabulary) (*Extractor, error) {
	categories, err := newFieldMatcher(vocab.Categories)
	if err != nil {
		return nil, fmt.Errorf("compile category vocabulary: %w", err)
	}
	styles, err := newFieldMatcher(vocab.Styles)
	if err != nil {
		return nil, fmt.Errorf("compile style vocabulary: %w", err)
	}
	colors, err := newFieldMatcher(vocab.Colors)
	if err != nil {
		return nil, fmt.Errorf("compile color vocabulary: %w", err)
	}

	sizes := vocab.Sizes
	if len(sizes) == 0 {
		sizes = DefaultVocabulary().Sizes
	}
	sizeRe, err := compileAlternation(sizes, true)
	if err != nil {
		return nil, fmt.Errorf("compile size tokens: %w", err)
	}

	return &Extractor{
		categories: categories,
		styles:     styles,
		colors:     colors,
		sizeRe:     sizeRe,
		priceRe:    priceRe,
	}, nil
}

// Extract parses a single utterance. Fields are matched independently; a
// color keyword never implies a category. Malformed input is never an error,
// it just leaves fields absent.
func (e *Extractor) Extract(utterance string) Intent {
	return Intent{
		Category: e.categories.match(utterance),
		Style:    e.styles.match(utterance),
		Color:    e.colors.match(utterance),
		Size:     e.extractSize(utterance),
		PriceMax: e.extractPriceMax(utterance),
	}
}

func (e *Extractor) extractSize(utterance string) string {
	m := e.sizeRe.FindString(utterance)
	if m == "" {
		return ""
	}
	return strings.ToUpper(m)
}

func (e *Extractor) extractPriceMax(utterance string) float64 {
	m := e.priceRe.FindStringSubmatch(utterance)
	if m == nil {
		return 0
	}
	// Overflow and non-positive amounts are treated as absent, not errors.
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	return float64(n)
}

// fieldMatcher matches one intent field against its vocabulary and maps the
// matched pattern back to its canonical term.
type fieldMatcher struct {
	re        *regexp.Regexp
	canonical map[string]string // lowercased pattern -> canonical term
}

func newFieldMatcher(vocab map[string][]string) (*fieldMatcher, error) {
	if len(vocab) == 0 {
		return &fieldMatcher{}, nil
	}

	canonical := make(map[string]string)
	patterns := make([]string, 0, len(vocab))
	for term, pats := range vocab {
		if len(pats) == 0 {
			pats = []string{term}
		}
		for _, p := range pats {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			canonical[p] = term
			patterns = append(patterns, p)
		}
	}

	// Keyword fields match as substrings, so plural and compound forms
	// ("dresses", "sweatpants") still resolve to their canonical term.
	re, err := compileAlternation(patterns, false)
	if err != nil {
		return nil, err
	}

	return &fieldMatcher{re: re, canonical: canonical}, nil
}

func (m *fieldMatcher) match(utterance string) string {
	if m.re == nil {
		return ""
	}
	found := m.re.FindString(utterance)
	if found == "" {
		return ""
	}
	return m.canonical[strings.ToLower(found)]
}

// compileAlternation builds a case-insensitive alternation. Longer patterns
// are listed first so e.g. "XL" wins over "L" at the same position. Only size
// tokens take word boundaries: a bare "m" inside another word is noise, while
// the keyword fields must keep matching inside larger words.
func compileAlternation(patterns []string, wholeWord bool) (*regexp.Regexp, error) {
	sorted := make([]string, len(patterns))
	copy(sorted, patterns)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	quoted := make([]string, 0, len(sorted))
	for _, p := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(p))
	}

	alternation := strings.Join(quoted, "|")
	if wholeWord {
		return regexp.Compile(`(?i)\b(?:` + alternation + `)\b`)
	}
	return regexp.Compile(`(?i)(?:` + alternation + `)`)
}
