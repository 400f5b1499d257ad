package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"smartshopper/internal/assistant/intent"
	commonerrors "smartshopper/internal/common/errors"
	"smartshopper/internal/common/logger"
	"smartshopper/internal/models"
)

// Elasticsearch queries a product index. Present intent fields become
// conjunctive filter clauses; terms aggregations over the full match set
// derive the available facets.
type Elasticsearch struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
	timeout  time.Duration
	logger   logger.Logger
}

func NewElasticsearch(client *elasticsearch.Client, index string, pageSize int, timeout time.Duration, log logger.Logger) *Elasticsearch {
	if pageSize < 1 {
		pageSize = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Elasticsearch{
		client:   client,
		index:    index,
		pageSize: pageSize,
		timeout:  timeout,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog.elasticsearch"}),
	}
}

func (e *Elasticsearch) Query(ctx context.Context, it intent.Intent) (*Result, error) {
	// Backend slowness is bounded here, separate from the caller's context: an
	// adapter-side timeout degrades to SEARCH_TIMEOUT while the caller's own
	// cancellation still aborts the turn.
	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body, _ := json.Marshal(buildSearchBody(it))

	from := 0
	size := e.pageSize
	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(queryCtx, e.client)
	if err != nil {
		if errors.Is(queryCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			e.logger.WithError(commonerrors.NewIndexNotFoundError(e.index)).Error("search index missing, run the catalog seeder", nil)
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, e.index)
		}
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrQueryFailed, err)
	}

	products := make([]models.Product, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		products = append(products, models.Product{
			ID:          hit.Source.ID,
			Name:        hit.Source.Name,
			Category:    hit.Source.Category,
			Price:       hit.Source.Price,
			Description: hit.Source.Description,
			ImageURL:    hit.Source.ImageURL,
			Handle:      hit.Source.Handle,
		})
	}

	attrs := make(AttributeSet)
	if len(parsed.Aggregations.Categories.Buckets) > 1 {
		attrs[AttrCategory] = true
	}
	if len(parsed.Aggregations.Colors.Buckets) > 1 {
		attrs[AttrColor] = true
	}
	if len(parsed.Aggregations.Sizes.Buckets) > 1 {
		attrs[AttrSize] = true
	}

	e.logger.Debug("catalog query executed", map[string]interface{}{
		"totalHits":  parsed.Hits.Total.Value,
		"returned":   len(products),
		"attributes": attrs.Names(),
	})

	return &Result{Products: products, AvailableAttributes: attrs}, nil
}

// buildSearchBody turns an intent into an Elasticsearch bool query plus the
// facet aggregations. Category and color also match against the product name
// since storefront data often buries both in the title.
func buildSearchBody(it intent.Intent) map[string]interface{} {
	filterClauses := []interface{}{}

	if it.HasCategory() {
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"category": it.Category}},
					map[string]interface{}{"match": map[string]interface{}{"name": it.Category}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if it.HasStyle() {
		filterClauses = append(filterClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  it.Style,
				"fields": []string{"name^2", "description"},
			},
		})
	}

	if it.HasColor() {
		filterClauses = append(filterClauses, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"colors": it.Color}},
					map[string]interface{}{"match": map[string]interface{}{"name": it.Color}},
					map[string]interface{}{"match": map[string]interface{}{"description": it.Color}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if it.HasSize() {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"sizes": it.Size},
		})
	}

	if it.HasPriceMax() {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"price": map[string]interface{}{"lte": it.PriceMax},
			},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filterClauses) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filterClauses,
			},
		}
	}

	return map[string]interface{}{
		"query": query,
		"aggs": map[string]interface{}{
			"categories": map[string]interface{}{
				"terms": map[string]interface{}{"field": "category", "size": 10},
			},
			"colors": map[string]interface{}{
				"terms": map[string]interface{}{"field": "colors", "size": 10},
			},
			"sizes": map[string]interface{}{
				"terms": map[string]interface{}{"field": "sizes", "size": 10},
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source productDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		Categories termsAgg `json:"categories"`
		Colors     termsAgg `json:"colors"`
		Sizes      termsAgg `json:"sizes"`
	} `json:"aggregations"`
}

type termsAgg struct {
	Buckets []struct {
		Key interface{} `json:"key"`
	} `json:"buckets"`
}

// productDoc is the index document shape; the catalog-seeder tool writes it.
type productDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Handle      string   `json:"handle,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
}
