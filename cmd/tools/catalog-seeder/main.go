// cmd/tools/catalog-seeder/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"smartshopper/internal/catalog"
	"smartshopper/internal/common/config"
	"smartshopper/internal/common/database"
)

// indexMapping applies a lowercase normalizer to the keyword fields so term
// queries against canonical intent values match regardless of storefront
// casing.
const indexMapping = `{
  "settings": {
    "analysis": {
      "normalizer": {
        "lowercase_normalizer": {
          "type": "custom",
          "filter": ["lowercase"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text"},
      "category":    {"type": "keyword", "normalizer": "lowercase_normalizer"},
      "price":       {"type": "float"},
      "description": {"type": "text"},
      "image_url":   {"type": "keyword", "index": false},
      "handle":      {"type": "keyword"},
      "colors":      {"type": "keyword", "normalizer": "lowercase_normalizer"},
      "sizes":       {"type": "keyword", "normalizer": "lowercase_normalizer"}
    }
  }
}`

// indexDoc mirrors the document shape the catalog adapter reads back.
type indexDoc struct {
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

func main() {
	file := flag.String("file", "configs/catalog-items.json", "Path to the catalog items JSON file")
	index := flag.String("index", "", "Target index (defaults to catalog.index from config)")
	recreate := flag.Bool("recreate", false, "Delete and recreate the index before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	target := *index
	if target == "" {
		target = cfg.Catalog.Index
	}
	if target == "" {
		fmt.Println("Error: no target index; set -index or catalog.index in config.")
		os.Exit(1)
	}

	items, err := catalog.LoadItems(*file)
	if err != nil {
		fmt.Printf("Error loading items from %s: %v\n", *file, err)
		os.Exit(1)
	}
	if len(items) == 0 {
		fmt.Printf("No items found in %s, nothing to do.\n", *file)
		return
	}

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fmt.Printf("Error creating Elasticsearch client: %v\n", err)
		os.Exit(1)
	}
	if err := esClient.Ping(); err != nil {
		fmt.Printf("Error connecting to Elasticsearch: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := prepareIndex(ctx, esClient.Client, target, *recreate); err != nil {
		fmt.Printf("Error preparing index %s: %v\n", target, err)
		os.Exit(1)
	}

	seeded, failed := 0, 0
	for _, item := range items {
		if err := indexItem(ctx, esClient.Client, target, item); err != nil {
			fmt.Printf("Error indexing item %s: %v\n", item.ID, err)
			failed++
			continue
		}
		seeded++
	}

	if err := refreshIndex(ctx, esClient.Client, target); err != nil {
		fmt.Printf("Warning: refresh failed: %v\n", err)
	}

	fmt.Printf("Seeded %d items into %s (%d failed).\n", seeded, target, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func prepareIndex(ctx context.Context, es *elasticsearch.Client, index string, recreate bool) error {
	existsRes, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("exists check failed: %w", err)
	}
	existsRes.Body.Close()
	exists := existsRes.StatusCode == 200

	if exists && recreate {
		delRes, err := esapi.IndicesDeleteRequest{Index: []string{index}}.Do(ctx, es)
		if err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		delRes.Body.Close()
		if delRes.IsError() {
			return fmt.Errorf("delete failed: %s", delRes.Status())
		}
		fmt.Printf("Deleted existing index %s.\n", index)
		exists = false
	}

	if exists {
		return nil
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("create failed: %s", createRes.Status())
	}

	fmt.Printf("Created index %s.\n", index)
	return nil
}

func indexItem(ctx context.Context, es *elasticsearch.Client, index string, item catalog.Item) error {
	doc := indexDoc{
		ID:          item.ID,
		Name:        item.Name,
		Category:    item.Category,
		Price:       item.Price,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		Handle:      item.Handle,
		Colors:      item.Colors,
		Sizes:       item.Sizes,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      index,
		DocumentID: item.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.Status())
	}
	return nil
}

func refreshIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	res, err := esapi.IndicesRefreshRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("refresh failed: %s", res.Status())
	}
	return nil
}
