package handler

import (
	"net/http"
	"strconv"
	"strings"

	"storefront-widgets/internal/model"
	"storefront-widgets/internal/pricing"
	"storefront-widgets/internal/storefront"
)

// Cache lifetimes for storefront reads. Pricing changes more often than
// identity, and both are per visitor.
const (
	pricingCacheControl  = "private, max-age=30"
	customerCacheControl = "private, max-age=60"
)

// handlePricing resolves the price quote for one product.
// GET /api/storefront/pricing?productId&variantId&customerGroup&customerTags&quantity
func (h *Handler) handlePricing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	group := q.Get("customerGroup")
	if group == "" {
		group = q.Get("userGroup")
	}

	res, err := h.prices.Resolve(r.Context(), pricing.Request{
		ProductID:     q.Get("productId"),
		VariantID:     q.Get("variantId"),
		CustomerGroup: group,
		CustomerTags:  model.ParseTags(q.Get("customerTags")),
		Quantity:      pricing.NormalizeQuantity(q.Get("quantity")),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", pricingCacheControl)
	h.writeJSON(w, http.StatusOK, res.Quote)
}

// handleCustomerContext classifies the visitor. Falls back to the customer
// named in the Widget-Context header when the query omits one.
// GET /api/storefront/customer-context?customerId
func (h *Handler) handleCustomerContext(w http.ResponseWriter, r *http.Request) {
	res := h.customers.Resolve(r.Context(), h.customerID(r))

	w.Header().Set("Cache-Control", customerCacheControl)
	h.writeJSON(w, http.StatusOK, res.Context)
}

// storefrontTableResponse is a table's display config plus its rows.
type storefrontTableResponse struct {
	Table    *model.ProductTable   `json:"productTable"`
	Customer model.CustomerContext `json:"customer"`
	Rows     []model.ProductRow    `json:"rows"`
}

// handleStorefrontTable returns a published table and its rows for the
// visitor. Hidden tables read as not found.
// GET /api/storefront/tables/{id}?customerId
func (h *Handler) handleStorefrontTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cc := h.customers.Resolve(ctx, h.customerID(r)).Context

	table, err := h.widgets.VisibleTable(ctx, r.PathValue("id"), cc)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rows, err := h.widgets.Rows(ctx, table, cc)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", pricingCacheControl)
	h.writeJSON(w, http.StatusOK, storefrontTableResponse{
		Table:    table,
		Customer: cc,
		Rows:     rows,
	})
}

// handleProducts lists reshaped catalog rows.
// GET /api/storefront/products?ids&categoryIds&limit
func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rows, err := h.widgets.Products(r.Context(), model.ProductQuery{
		ProductIDs:  splitIDs(q.Get("ids")),
		CategoryIDs: splitIDs(q.Get("categoryIds")),
		Limit:       atoi(q.Get("limit")),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", pricingCacheControl)
	h.writeJSON(w, http.StatusOK, productsResponse{Products: rows})
}

type productsResponse struct {
	Products []model.ProductRow `json:"products"`
}

// customerID reads customerId from the query, falling back to Widget-Context.
func (h *Handler) customerID(r *http.Request) string {
	if id := strings.TrimSpace(r.URL.Query().Get("customerId")); id != "" {
		return id
	}
	if wc := storefront.FromContext(r.Context()); wc != nil {
		return wc.CustomerID
	}
	return ""
}

// atoi returns 0 for blank or malformed input; callers apply defaults.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
