package cms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// ProductSort selects the ordering/filter variant for product listings
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
)

// ListOptions narrows a product listing request
type ListOptions struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Featured bool
	Sort     ProductSort
	Start    int
	End      int
}

// ProductsByIDs fetches authoritative snapshots for the given product ids in
// one batched query. Ids not present in the CMS are absent from the result.
func (c *Client) ProductsByIDs(ctx context.Context, ids []string) ([]domain.ProductSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	result, err := c.Query(ctx, ProductsByIDsQuery, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("products by ids query failed: %w", err)
	}

	var products []domain.ProductSnapshot
	if err := json.Unmarshal(result, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}
	return products, nil
}

// ListProducts fetches products per the listing options. Filters are mutually
// exclusive in the original storefront queries, so they are applied in a fixed
// priority order: search, category, price range, featured, then plain listing.
func (c *Client) ListProducts(ctx context.Context, opts ListOptions) ([]domain.ProductSnapshot, error) {
	query := AllProductsQuery
	params := map[string]interface{}{}

	switch {
	case opts.Search != "":
		query = SearchProductsQuery
		params["search"] = opts.Search
	case opts.Category != "":
		query = ProductsByCategoryQuery
		params["categorySlug"] = opts.Category
	case opts.MinPrice != nil && opts.MaxPrice != nil:
		query = ProductsByPriceRangeQuery
		params["min"] = *opts.MinPrice
		params["max"] = *opts.MaxPrice
	case opts.Featured:
		query = FeaturedProductsQuery
	case opts.Sort == SortPriceAsc:
		query = ProductsPriceAscQuery
	case opts.Sort == SortPriceDesc:
		query = ProductsPriceDescQuery
	case opts.End > opts.Start:
		query = PaginatedProductsQuery
		params["start"] = opts.Start
		params["end"] = opts.End
	}

	result, err := c.Query(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("product listing query failed: %w", err)
	}

	var products []domain.ProductSnapshot
	if err := json.Unmarshal(result, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}
	return products, nil
}

// ProductBySlug fetches a single product by its slug
func (c *Client) ProductBySlug(ctx context.Context, slug string) (*domain.ProductSnapshot, error) {
	result, err := c.Query(ctx, ProductBySlugQuery, map[string]interface{}{"slug": slug})
	if err != nil {
		return nil, fmt.Errorf("product by slug query failed: %w", err)
	}
	if isNullResult(result) {
		return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
	}

	var product domain.ProductSnapshot
	if err := json.Unmarshal(result, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

func isNullResult(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
