package catalog

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/common/logger"
)

// roundTripperFunc stubs the Elasticsearch transport.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newStubESClient(t *testing.T, statusCode int, body string) *elasticsearch.Client {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch:9200"},
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: statusCode,
				Header: http.Header{
					"Content-Type":      []string{"application/json"},
					"X-Elastic-Product": []string{"Elasticsearch"},
				},
				Body: io.NopCloser(strings.NewReader(body)),
			}, nil
		}),
	})
	require.NoError(t, err)
	return client
}

func TestBuildSearchBody_EmptyIntent(t *testing.T) {
	body := buildSearchBody(intent.Intent{})

	query, ok := body["query"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, query, "match_all")

	aggs, ok := body["aggs"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, aggs, "categories")
	assert.Contains(t, aggs, "colors")
	assert.Contains(t, aggs, "sizes")
}

func TestBuildSearchBody_FilterClauses(t *testing.T) {
	tests := []struct {
		name            string
		it              intent.Intent
		expectedClauses int
	}{
		{"category only", intent.Intent{Category: "dress"}, 1},
		{"category and color", intent.Intent{Category: "dress", Color: "red"}, 2},
		{"all fields", intent.Intent{Category: "dress", Style: "slim", Color: "red", Size: "M", PriceMax: 100}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildSearchBody(tt.it)

			query := body["query"].(map[string]interface{})
			boolQuery, ok := query["bool"].(map[string]interface{})
			require.True(t, ok)

			filters, ok := boolQuery["filter"].([]interface{})
			require.True(t, ok)
			assert.Len(t, filters, tt.expectedClauses)
		})
	}
}

func TestBuildSearchBody_PriceRange(t *testing.T) {
	body := buildSearchBody(intent.Intent{PriceMax: 75})

	filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.Len(t, filters, 1)

	rangeClause := filters[0].(map[string]interface{})["range"].(map[string]interface{})
	priceRange := rangeClause["price"].(map[string]interface{})
	assert.Equal(t, float64(75), priceRange["lte"])
}

func TestBuildSearchBody_SizeTermFilter(t *testing.T) {
	body := buildSearchBody(intent.Intent{Size: "M"})

	filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	require.Len(t, filters, 1)

	term := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "M", term["sizes"])
}

func TestElasticsearch_Query_ParsesHitsAndFacets(t *testing.T) {
	client := newStubESClient(t, http.StatusOK, `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_source": {"id": "1", "name": "Running Shoes", "category": "shoes", "price": 89.99, "handle": "running-shoes"}},
				{"_source": {"id": "2", "name": "Trail Shoes", "category": "shoes", "price": 79.99, "handle": "trail-shoes"}}
			]
		},
		"aggregations": {
			"categories": {"buckets": [{"key": "shoes"}]},
			"colors": {"buckets": [{"key": "blue"}, {"key": "red"}]},
			"sizes": {"buckets": [{"key": "M"}, {"key": "L"}]}
		}
	}`)

	es := NewElasticsearch(client, "products", 5, 0, logger.NewNoOpLogger())

	res, err := es.Query(context.Background(), intent.Intent{Category: "shoes"})
	require.NoError(t, err)

	require.Len(t, res.Products, 2)
	assert.Equal(t, "Running Shoes", res.Products[0].Name)
	assert.Equal(t, 89.99, res.Products[0].Price)

	// A single-bucket facet is exhausted; multi-bucket facets remain available.
	assert.False(t, res.AvailableAttributes.Has(AttrCategory))
	assert.True(t, res.AvailableAttributes.Has(AttrColor))
	assert.True(t, res.AvailableAttributes.Has(AttrSize))
}

func TestElasticsearch_Query_MissingIndex(t *testing.T) {
	client := newStubESClient(t, http.StatusNotFound, `{"error": {"type": "index_not_found_exception"}}`)

	es := NewElasticsearch(client, "products", 5, 0, logger.NewNoOpLogger())

	res, err := es.Query(context.Background(), intent.Intent{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestElasticsearch_Query_BackendError(t *testing.T) {
	client := newStubESClient(t, http.StatusInternalServerError, `{"error": {"type": "search_phase_execution_exception"}}`)

	es := NewElasticsearch(client, "products", 5, 0, logger.NewNoOpLogger())

	res, err := es.Query(context.Background(), intent.Intent{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrQueryFailed)
}
