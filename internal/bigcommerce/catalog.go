package bigcommerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront-widgets/internal/model"
)

// GetProduct fetches a product's pricing fields.
func (c *Client) GetProduct(ctx context.Context, productID string) (*model.CatalogProduct, error) {
	id, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}

	var env envelope[bcProduct]
	q := url.Values{"include": {"primary_image"}}
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/v3/catalog/products/%d", id), q, nil, &env); err != nil {
		if model.IsNotFound(err) {
			return nil, model.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p := c.toProduct(env.Data)
	return &p, nil
}

// GetVariant fetches a variant's price overrides.
func (c *Client) GetVariant(ctx context.Context, productID, variantID string) (*model.CatalogVariant, error) {
	pid, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}
	vid, err := parseID("variant", variantID)
	if err != nil {
		return nil, err
	}

	var env envelope[bcVariant]
	path := fmt.Sprintf("/v3/catalog/products/%d/variants/%d", pid, vid)
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		if model.IsNotFound(err) {
			return nil, model.NewNotFoundError("variant")
		}
		return nil, fmt.Errorf("getting variant %d: %w", vid, err)
	}

	v := env.Data
	return &model.CatalogVariant{
		ID:              strconv.Itoa(v.ID),
		ProductID:       strconv.Itoa(v.ProductID),
		SKU:             v.SKU,
		Price:           v.Price,
		SalePrice:       v.SalePrice,
		CalculatedPrice: v.CalculatedPrice,
	}, nil
}

// ListQuantityBreaks returns the product's bulk pricing rules in upstream order.
func (c *Client) ListQuantityBreaks(ctx context.Context, productID string) ([]model.QuantityBreakRule, error) {
	id, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}

	rules, err := listAll[bcBulkPricingRule](ctx, c, fmt.Sprintf("/v3/catalog/products/%d/bulk-pricing-rules", id), nil, 0)
	if err != nil {
		return nil, fmt.Errorf("listing bulk pricing rules: %w", err)
	}

	out := make([]model.QuantityBreakRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, model.QuantityBreakRule{
			MinQuantity: r.QuantityMin,
			MaxQuantity: r.QuantityMax,
			Mode:        discountMode(r.Type),
			Amount:      r.Amount,
		})
	}
	return out, nil
}

// ListProducts returns visible products matching q. Empty filters list the
// whole catalog up to q.Limit.
func (c *Client) ListProducts(ctx context.Context, q model.ProductQuery) ([]model.CatalogProduct, error) {
	query := url.Values{
		"include":    {"primary_image"},
		"is_visible": {"true"},
	}
	if len(q.ProductIDs) > 0 {
		query.Set("id:in", strings.Join(q.ProductIDs, ","))
	}
	if len(q.CategoryIDs) > 0 {
		query.Set("categories:in", strings.Join(q.CategoryIDs, ","))
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
		direction := "asc"
		if q.Descending {
			direction = "desc"
		}
		query.Set("direction", direction)
	}

	products, err := listAll[bcProduct](ctx, c, "/v3/catalog/products", query, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	out := make([]model.CatalogProduct, 0, len(products))
	for _, p := range products {
		out = append(out, c.toProduct(p))
	}
	return out, nil
}

func (c *Client) toProduct(p bcProduct) model.CatalogProduct {
	out := model.CatalogProduct{
		ID:              strconv.Itoa(p.ID),
		Name:            p.Name,
		SKU:             p.SKU,
		BasePrice:       p.Price,
		SalePrice:       p.SalePrice,
		CalculatedPrice: p.CalculatedPrice,
		Currency:        c.cfg.Currency,
		MinQuantity:     p.OrderQuantityMinimum,
		MaxQuantity:     p.OrderQuantityMaximum,
		InventoryLevel:  p.InventoryLevel,
		Visible:         p.IsVisible,
	}
	// Untracked inventory is always purchasable.
	if p.InventoryTracking == "none" && out.InventoryLevel <= 0 {
		out.InventoryLevel = 1
	}
	if p.CustomURL != nil {
		out.URL = p.CustomURL.URL
	}
	if p.PrimaryImage != nil {
		out.ImageURL = p.PrimaryImage.URLStandard
	}
	return out
}

func discountMode(bulkType string) model.DiscountMode {
	switch bulkType {
	case bulkTypeFixed:
		return model.DiscountAbsolute
	case bulkTypePercent:
		return model.DiscountPercent
	case bulkTypePrice:
		return model.DiscountFixedOff
	default:
		return model.DiscountMode(bulkType)
	}
}

// parseID validates a numeric entity ID. Non-numeric IDs can never exist
// upstream, so they report not found without a request.
func parseID(resource, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, model.NewNotFoundError(resource)
	}
	return id, nil
}
