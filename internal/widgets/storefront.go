package widgets

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"storefront-widgets/internal/model"
	"storefront-widgets/internal/pricing"
)

// VisibleTable returns a published table the visitor described by cc may
// see. Missing, draft and targeted-away tables all read as not found so the
// storefront cannot discover hidden configurations.
func (s *Service) VisibleTable(ctx context.Context, id string, cc model.CustomerContext) (*model.ProductTable, error) {
	t, err := s.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != model.StatusPublished || !t.Targeting.Allows(cc) {
		return nil, model.NewNotFoundError("product table")
	}
	return t, nil
}

// Rows loads the catalog rows a table renders, in display order. When the
// table shows pricing and a Pricer is configured, row prices are quoted for
// cc at each row's minimum order quantity.
func (s *Service) Rows(ctx context.Context, t *model.ProductTable, cc model.CustomerContext) ([]model.ProductRow, error) {
	q := model.ProductQuery{Limit: clampPageSize(t.PageSize)}
	switch t.SortBy {
	case "newest":
		q.Sort, q.Descending = model.SortByID, true
	case "name":
		q.Sort = model.SortByName
	case "sku":
		q.Sort = model.SortBySKU
	case "price":
		q.Sort = model.SortByPrice
	}
	switch t.Source.Type {
	case model.SourceManual:
		q.ProductIDs = t.Source.ProductIDs
	case model.SourceCategory:
		q.CategoryIDs = t.Source.CategoryIDs
	}

	products, err := s.upstream.ListProducts(ctx, q)
	if err != nil {
		return nil, upstreamError("listing products", err)
	}

	rows := make([]model.ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, model.RowFromProduct(p))
	}
	// Guests without break columns pay catalog prices; skip the lookups.
	if t.ShowPricing && s.opts.Pricer != nil && (cc.CustomerGroup != model.GuestGroup || t.ShowQuantityBreaks) {
		s.priceRows(ctx, rows, cc, t.ShowQuantityBreaks)
	}
	sortRows(rows, t)
	return rows, nil
}

// maxConcurrentQuotes bounds parallel row pricing.
const maxConcurrentQuotes = 4

// priceRows replaces catalog prices with resolved quotes. A row whose quote
// fails keeps its catalog price.
func (s *Service) priceRows(ctx context.Context, rows []model.ProductRow, cc model.CustomerContext, withBreaks bool) {
	var g errgroup.Group
	g.SetLimit(maxConcurrentQuotes)
	for i := range rows {
		row := &rows[i]
		g.Go(func() error {
			res, err := s.opts.Pricer.Resolve(ctx, pricing.Request{
				ProductID:     row.ProductID,
				CustomerGroup: cc.CustomerGroup,
				CustomerTags:  cc.CustomerTags,
				Quantity:      row.MinQuantity,
			})
			if err != nil {
				s.logger.WarnContext(ctx, "row pricing failed, using catalog price",
					slog.String("product_id", row.ProductID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			row.Price = res.Quote.FinalPrice
			row.PriceListName = res.Quote.PriceListName
			if withBreaks {
				row.QuantityBreaks = res.Quote.QuantityBreaks
			}
			return nil
		})
	}
	_ = g.Wait()
}

// sortRows orders a page by the table's sort option. The platform already
// sorted the source; this re-sorts by quoted price and case-insensitive name.
// "newest" is left in platform order; "manual" follows the configured IDs.
func sortRows(rows []model.ProductRow, t *model.ProductTable) {
	switch t.SortBy {
	case "name":
		slices.SortStableFunc(rows, func(a, b model.ProductRow) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case "sku":
		slices.SortStableFunc(rows, func(a, b model.ProductRow) int {
			return strings.Compare(a.SKU, b.SKU)
		})
	case "price":
		slices.SortStableFunc(rows, func(a, b model.ProductRow) int {
			return a.Price.Cmp(b.Price)
		})
	case "manual":
		pos := make(map[string]int, len(t.Source.ProductIDs))
		for i, id := range t.Source.ProductIDs {
			pos[id] = i
		}
		slices.SortStableFunc(rows, func(a, b model.ProductRow) int {
			return cmp.Compare(rank(pos, a.ProductID), rank(pos, b.ProductID))
		})
	}
}

func rank(pos map[string]int, id string) int {
	if i, ok := pos[id]; ok {
		return i
	}
	return len(pos)
}

// Products lists catalog rows outside any table, in platform order.
func (s *Service) Products(ctx context.Context, q model.ProductQuery) ([]model.ProductRow, error) {
	q.Limit = clampPageSize(q.Limit)
	products, err := s.upstream.ListProducts(ctx, q)
	if err != nil {
		return nil, upstreamError("listing products", err)
	}
	rows := make([]model.ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, model.RowFromProduct(p))
	}
	return rows, nil
}
