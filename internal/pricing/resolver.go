// Package pricing resolves the unit price a storefront visitor pays for a
// product by layering price-list overrides and quantity breaks on top of the
// catalog price.
package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"storefront-widgets/internal/adapter"
	"storefront-widgets/internal/model"
)

// upstreamService names the platform in upstream error messages.
const upstreamService = "BigCommerce"

// Upstream is the subset of the platform the resolver reads from.
type Upstream interface {
	adapter.Catalog
	adapter.PriceLists
}

// Request identifies what to price and for whom.
type Request struct {
	ProductID     string
	VariantID     string
	CustomerGroup string   // defaults to "guest"
	CustomerTags  []string // echoed on the quote
	Quantity      int      // values below 1 are treated as 1
}

// Resolution is a quote plus the reasons any optional enrichment fell back.
type Resolution struct {
	Quote       model.PriceQuote `json:"quote"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}

// Diagnostic returns the diagnostic recorded for stage, if any.
func (r *Resolution) Diagnostic(stage Stage) (Diagnostic, bool) {
	for _, d := range r.Diagnostics {
		if d.Stage == stage {
			return d, true
		}
	}
	return Diagnostic{}, false
}

// Resolver computes price quotes. It holds no per-request state and is safe
// for concurrent use.
type Resolver struct {
	upstream Upstream
	logger   *slog.Logger
	stages   []stage
}

// NewResolver creates a Resolver reading from upstream.
func NewResolver(upstream Upstream, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{upstream: upstream, logger: logger}
	r.stages = []stage{
		{name: StagePriceList, apply: r.applyPriceList},
		{name: StageQuantityBreaks, apply: r.applyQuantityBreaks},
	}
	return r
}

// Resolve prices req.
//
// Errors are limited to a missing product ID (validation, no upstream call
// made), a product or variant that does not exist upstream, and any other
// failure of those two mandatory fetches (502). Price-list and quantity-break
// failures degrade to the next cheaper computation and are reported in
// Resolution.Diagnostics.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	req = normalizeRequest(req)
	if req.ProductID == "" {
		return nil, model.NewValidationError("productId", "required")
	}

	quote, err := r.baseQuote(ctx, req)
	if err != nil {
		return nil, err
	}
	// Enrichment matches on the platform's IDs, not the caller's spelling.
	req.ProductID, req.VariantID = quote.ProductID, quote.VariantID

	res := &Resolution{}
	for _, s := range r.stages {
		next, diag := s.apply(ctx, req, quote)
		if diag != nil {
			diag.Stage = s.name
			res.Diagnostics = append(res.Diagnostics, *diag)
			if diag.Reason == ReasonUnavailable {
				r.logger.WarnContext(ctx, "pricing enrichment unavailable",
					slog.String("stage", string(s.name)),
					slog.String("product_id", req.ProductID),
					slog.String("detail", diag.Detail),
				)
			}
		}
		quote = next
	}

	finalize(&quote)
	res.Quote = quote
	return res, nil
}

// baseQuote performs steps that must succeed: product and variant pricing.
// Any failure other than not found is reported as an upstream error so the
// platform's auth and rate-limit states never reach the storefront.
func (r *Resolver) baseQuote(ctx context.Context, req Request) (model.PriceQuote, error) {
	product, err := r.upstream.GetProduct(ctx, req.ProductID)
	if err != nil {
		if model.IsNotFound(err) {
			return model.PriceQuote{}, model.NewNotFoundError("product")
		}
		return model.PriceQuote{}, model.NewUpstreamError(upstreamService, fmt.Errorf("fetching product %s: %w", req.ProductID, err))
	}

	productID := req.ProductID
	if product.ID != "" {
		productID = product.ID
	}
	q := model.PriceQuote{
		ProductID:        productID,
		VariantID:        req.VariantID,
		CustomerGroup:    req.CustomerGroup,
		CustomerTags:     req.CustomerTags,
		Quantity:         req.Quantity,
		Currency:         product.Currency,
		BasePrice:        product.BasePrice,
		SalePrice:        product.SalePrice,
		CalculatedPrice:  product.CalculatedPrice,
		QuantityBreaks:   []model.QuantityBreak{},
		MinOrderQuantity: product.MinQuantity,
	}
	if q.Currency == "" {
		q.Currency = model.DefaultCurrency
	}
	if q.MinOrderQuantity < 1 {
		q.MinOrderQuantity = 1
	}
	if product.MaxQuantity > 0 {
		maxQty := product.MaxQuantity
		q.MaxOrderQuantity = &maxQty
	}

	if req.VariantID == "" {
		return q, nil
	}

	variant, err := r.upstream.GetVariant(ctx, productID, req.VariantID)
	if err != nil {
		if model.IsNotFound(err) {
			return model.PriceQuote{}, model.NewNotFoundError("variant")
		}
		return model.PriceQuote{}, model.NewUpstreamError(upstreamService, fmt.Errorf("fetching variant %s: %w", req.VariantID, err))
	}
	if variant.ID != "" {
		q.VariantID = variant.ID
	}
	if variant.Price != nil {
		q.BasePrice = *variant.Price
	}
	if variant.SalePrice != nil {
		q.SalePrice = *variant.SalePrice
	}
	if variant.CalculatedPrice != nil {
		q.CalculatedPrice = *variant.CalculatedPrice
	}
	return q, nil
}

// finalize derives retail and final prices from the enriched quote.
// Final price precedence: quantity break, then price list, then catalog.
func finalize(q *model.PriceQuote) {
	q.RetailPrice = q.CalculatedPrice
	if q.PriceListPrice != nil {
		q.RetailPrice = *q.PriceListPrice
	}

	switch {
	case q.QuantityBreakPrice != nil:
		q.FinalPrice = *q.QuantityBreakPrice
	case q.PriceListPrice != nil:
		q.FinalPrice = *q.PriceListPrice
	default:
		q.FinalPrice = q.CalculatedPrice
	}
}

func normalizeRequest(req Request) Request {
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.VariantID = strings.TrimSpace(req.VariantID)
	req.CustomerGroup = strings.ToLower(strings.TrimSpace(req.CustomerGroup))
	if req.CustomerGroup == "" {
		req.CustomerGroup = model.GuestGroup
	}
	req.CustomerTags = model.NormalizeTags(req.CustomerTags)
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	return req
}

// NormalizeQuantity coerces a raw quantity parameter to a positive integer.
// Blank, non-numeric, fractional and non-positive input all become 1.
func NormalizeQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
