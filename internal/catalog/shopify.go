package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartshopper/internal/assistant/intent"
	commonhttp "smartshopper/internal/common/http"
	"smartshopper/internal/common/logger"
	"smartshopper/internal/models"
)

// Shopify queries the Shopify Admin API product listing and applies the
// conjunctive filter in memory. Malformed products (missing id, title,
// variants, or handle, or an unparseable price) are skipped, never fatal.
type Shopify struct {
	storeURL    string
	accessToken string
	apiVersion  string
	pageSize    int
	httpClient  *commonhttp.Client
	logger      logger.Logger
}

func NewShopify(storeURL, accessToken, apiVersion string, pageSize int, log logger.Logger) *Shopify {
	if apiVersion == "" {
		apiVersion = "2024-01"
	}
	if pageSize < 1 {
		pageSize = 5
	}
	return &Shopify{
		storeURL:    strings.TrimRight(storeURL, "/"),
		accessToken: accessToken,
		apiVersion:  apiVersion,
		pageSize:    pageSize,
		httpClient:  commonhttp.NewClient(30 * time.Second),
		logger:      log.WithFields(map[string]interface{}{"component": "catalog.shopify"}),
	}
}

func (s *Shopify) Query(ctx context.Context, it intent.Intent) (*Result, error) {
	raw, err := s.fetchProducts(ctx)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	var matched []Item
	for _, rp := range raw {
		item, ok := s.toItem(rp)
		if !ok {
			continue
		}
		if matchesIntent(it, item) {
			matched = append(matched, item)
		}
	}

	page := matched
	if len(page) > s.pageSize {
		page = page[:s.pageSize]
	}

	products := make([]models.Product, 0, len(page))
	for _, item := range page {
		products = append(products, item.Product)
	}

	return &Result{
		Products:            products,
		AvailableAttributes: deriveAttributes(matched),
	}, nil
}

func (s *Shopify) fetchProducts(ctx context.Context) ([]shopifyProduct, error) {
	url := fmt.Sprintf("%s/admin/api/%s/products.json", s.storeURL, s.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", s.accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify api status %d", resp.StatusCode)
	}

	var payload struct {
		Products []shopifyProduct `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	return payload.Products, nil
}

// toItem maps one raw Shopify product to the shared catalog representation.
// Price comes from the first variant; colors and sizes from the product's
// variant options.
func (s *Shopify) toItem(rp shopifyProduct) (Item, bool) {
	if rp.ID == 0 || rp.Title == "" || len(rp.Variants) == 0 || rp.Handle == "" {
		s.logger.Warn("skipping malformed shopify product", map[string]interface{}{
			"id": rp.ID, "title": rp.Title,
		})
		return Item{}, false
	}

	price, err := strconv.ParseFloat(rp.Variants[0].Price, 64)
	if err != nil {
		s.logger.Warn("skipping product with invalid price", map[string]interface{}{
			"id": rp.ID, "price": rp.Variants[0].Price,
		})
		return Item{}, false
	}

	category := rp.ProductType
	if category == "" {
		category = "Uncategorized"
	}

	imageURL := ""
	if len(rp.Images) > 0 {
		imageURL = rp.Images[0].Src
	}

	item := Item{
		Product: models.Product{
			ID:          strconv.FormatInt(rp.ID, 10),
			Name:        rp.Title,
			Category:    category,
			Price:       price,
			Description: rp.BodyHTML,
			ImageURL:    imageURL,
			Handle:      rp.Handle,
		},
	}

	for _, opt := range rp.Options {
		switch {
		case strings.EqualFold(opt.Name, "Color"):
			item.Colors = append(item.Colors, opt.Values...)
		case strings.EqualFold(opt.Name, "Size"):
			item.Sizes = append(item.Sizes, opt.Values...)
		}
	}

	return item, true
}

type shopifyProduct struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ProductType string `json:"product_type"`
	BodyHTML    string `json:"body_html"`
	Handle      string `json:"handle"`
	Images      []struct {
		Src string `json:"src"`
	} `json:"images"`
	Variants []struct {
		Price string `json:"price"`
	} `json:"variants"`
	Options []struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"options"`
}
