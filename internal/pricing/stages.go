package pricing

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"storefront-widgets/internal/model"
)

// Stage names an optional enrichment step.
type Stage string

const (
	StagePriceList      Stage = "price_list"
	StageQuantityBreaks Stage = "quantity_breaks"
)

// Reason explains why a stage left the quote unchanged.
type Reason string

const (
	// ReasonSkipped: the stage does not apply to this request.
	ReasonSkipped Reason = "skipped"
	// ReasonNoMatch: upstream answered but nothing applied.
	ReasonNoMatch Reason = "no_match"
	// ReasonUnavailable: upstream failed (unlicensed feature, transient error).
	ReasonUnavailable Reason = "unavailable"
)

// Diagnostic records why an enrichment stage fell back.
type Diagnostic struct {
	Stage  Stage  `json:"stage"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
	Err    error  `json:"-"`
}

// stage takes the quote so far and returns it updated, or unchanged together
// with a diagnostic.
type stage struct {
	name  Stage
	apply func(ctx context.Context, req Request, q model.PriceQuote) (model.PriceQuote, *Diagnostic)
}

// maxConcurrentRecordFetches bounds parallel price-list record requests.
const maxConcurrentRecordFetches = 4

func (r *Resolver) applyPriceList(ctx context.Context, req Request, q model.PriceQuote) (model.PriceQuote, *Diagnostic) {
	if req.CustomerGroup == model.GuestGroup {
		return q, &Diagnostic{Reason: ReasonSkipped, Detail: "guest visitors use catalog pricing"}
	}

	lists, err := r.upstream.ListPriceLists(ctx)
	if err != nil {
		return q, &Diagnostic{Reason: ReasonUnavailable, Detail: "listing price lists failed", Err: model.NewUpstreamUnavailableError("price lists", err)}
	}

	active := make([]model.PriceList, 0, len(lists))
	for _, pl := range lists {
		if pl.Active {
			active = append(active, pl)
		}
	}
	if len(active) == 0 {
		return q, &Diagnostic{Reason: ReasonNoMatch, Detail: "no active price lists"}
	}

	// Records are fetched concurrently; results are indexed by list position
	// so selection below follows upstream order, not completion order.
	records := make([][]model.PriceListRecord, len(active))
	fetchErrs := make([]error, len(active))
	var g errgroup.Group
	g.SetLimit(maxConcurrentRecordFetches)
	for i, pl := range active {
		g.Go(func() error {
			records[i], fetchErrs[i] = r.upstream.ListPriceListRecords(ctx, pl.ID, req.ProductID)
			return nil
		})
	}
	_ = g.Wait()

	var (
		matched   *model.PriceList
		record    *model.PriceListRecord
		failed    int
		lastError error
	)
	// Last matching list wins.
	for i := range active {
		if fetchErrs[i] != nil {
			failed++
			lastError = fetchErrs[i]
			continue
		}
		if rec := matchRecord(records[i], req.ProductID, req.VariantID); rec != nil {
			matched = &active[i]
			record = rec
		}
	}

	if matched == nil {
		if failed == len(active) {
			return q, &Diagnostic{Reason: ReasonUnavailable, Detail: "fetching price list records failed", Err: model.NewUpstreamUnavailableError("price list records", lastError)}
		}
		return q, &Diagnostic{Reason: ReasonNoMatch, Detail: fmt.Sprintf("no record for product in %d price lists", len(active)-failed)}
	}

	price := record.Price
	q.PriceListID = matched.ID
	q.PriceListName = matched.Name
	q.PriceListPrice = &price
	if model.IsWholesaleName(matched.Name) {
		wholesale := price
		q.WholesalePrice = &wholesale
	}
	return q, nil
}

// matchRecord picks the record covering the product (and variant, if given).
// A variant-specific record beats a product-level one. Without a variant ID a
// product-level record is preferred, otherwise the first record for the product.
func matchRecord(records []model.PriceListRecord, productID, variantID string) *model.PriceListRecord {
	var exact, productLevel, anyForProduct *model.PriceListRecord
	for i := range records {
		rec := &records[i]
		if rec.ProductID != productID {
			continue
		}
		switch {
		case variantID != "" && rec.VariantID == variantID:
			if exact == nil {
				exact = rec
			}
		case rec.VariantID == "":
			if productLevel == nil {
				productLevel = rec
			}
		default:
			if anyForProduct == nil {
				anyForProduct = rec
			}
		}
	}

	switch {
	case exact != nil:
		return exact
	case productLevel != nil:
		return productLevel
	case variantID == "":
		return anyForProduct
	default:
		return nil
	}
}

func (r *Resolver) applyQuantityBreaks(ctx context.Context, req Request, q model.PriceQuote) (model.PriceQuote, *Diagnostic) {
	rules, err := r.upstream.ListQuantityBreaks(ctx, req.ProductID)
	if err != nil {
		return q, &Diagnostic{Reason: ReasonUnavailable, Detail: "listing quantity breaks failed", Err: model.NewUpstreamUnavailableError("quantity breaks", err)}
	}

	q.QuantityBreaks = ResolveBreaks(rules, q.CalculatedPrice)

	if req.Quantity <= 1 {
		return q, &Diagnostic{Reason: ReasonSkipped, Detail: "quantity breaks apply above one unit"}
	}
	if b, ok := firstMatch(q.QuantityBreaks, req.Quantity); ok {
		price := b.Price
		q.QuantityBreakPrice = &price
		return q, nil
	}
	return q, &Diagnostic{Reason: ReasonNoMatch, Detail: fmt.Sprintf("no break covers quantity %d", req.Quantity)}
}

// firstMatch returns the first break, in upstream order, containing qty.
func firstMatch(breaks []model.QuantityBreak, qty int) (model.QuantityBreak, bool) {
	for _, b := range breaks {
		if b.Contains(qty) {
			return b, true
		}
	}
	return model.QuantityBreak{}, false
}
