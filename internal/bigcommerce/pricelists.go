package bigcommerce

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"storefront-widgets/internal/model"
)

// ListPriceLists returns all price lists in upstream order. Stores without
// the price list feature answer 403, surfaced as an unauthorized error.
func (c *Client) ListPriceLists(ctx context.Context) ([]model.PriceList, error) {
	lists, err := listAll[bcPriceList](ctx, c, "/v3/pricelists", nil, 0)
	if err != nil {
		return nil, fmt.Errorf("listing price lists: %w", err)
	}

	out := make([]model.PriceList, 0, len(lists))
	for _, pl := range lists {
		out = append(out, model.PriceList{ID: pl.ID, Name: pl.Name, Active: pl.Active})
	}
	return out, nil
}

// ListPriceListRecords returns a price list's records for one product.
func (c *Client) ListPriceListRecords(ctx context.Context, priceListID int, productID string) ([]model.PriceListRecord, error) {
	pid, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}

	q := url.Values{"product_id:in": {strconv.Itoa(pid)}}
	if c.cfg.Currency != "" {
		q.Set("currency", c.cfg.Currency)
	}
	records, err := listAll[bcPriceListRecord](ctx, c, fmt.Sprintf("/v3/pricelists/%d/records", priceListID), q, 0)
	if err != nil {
		return nil, fmt.Errorf("listing records of price list %d: %w", priceListID, err)
	}

	out := make([]model.PriceListRecord, 0, len(records))
	for _, r := range records {
		rec := model.PriceListRecord{
			PriceListID: priceListID,
			ProductID:   strconv.Itoa(r.ProductID),
			Price:       r.Price,
			Currency:    r.Currency,
		}
		if r.VariantID > 0 {
			rec.VariantID = strconv.Itoa(r.VariantID)
		}
		out = append(out, rec)
	}
	return out, nil
}
