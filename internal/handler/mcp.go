// MCP transport handler using the official MCP Go SDK.
// Exposes the storefront read operations as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storefront-widgets/internal/customer"
	"storefront-widgets/internal/model"
	"storefront-widgets/internal/pricing"
)

// === MCP Tool Input/Output Types ===
// Outputs are returned as `any` so the SDK does not infer an output schema:
// decimal amounts encode as JSON strings, not objects.

// ResolvePriceInput is the input schema for the resolve_price tool.
type ResolvePriceInput struct {
	ProductID     string   `json:"product_id" jsonschema:"catalog product ID,required"`
	VariantID     string   `json:"variant_id,omitempty" jsonschema:"variant ID for variant-level pricing"`
	CustomerGroup string   `json:"customer_group,omitempty" jsonschema:"customer group name (default guest)"`
	CustomerTags  []string `json:"customer_tags,omitempty" jsonschema:"customer tags echoed on the quote"`
	Quantity      int      `json:"quantity,omitempty" jsonschema:"quantity used to select a quantity break (default 1)"`
}

// ResolvePriceOutput is the quote plus the reasons any enrichment fell back.
type ResolvePriceOutput struct {
	Quote       model.PriceQuote     `json:"quote"`
	Diagnostics []pricing.Diagnostic `json:"diagnostics,omitempty"`
}

// ResolveCustomerContextInput is the input schema for resolve_customer_context.
type ResolveCustomerContextInput struct {
	CustomerID string `json:"customer_id,omitempty" jsonschema:"storefront customer ID; omit for a guest"`
}

// ResolveCustomerContextOutput is the context and how it was derived.
type ResolveCustomerContextOutput struct {
	Context     model.CustomerContext `json:"context"`
	Source      customer.Source       `json:"source"`
	Diagnostics []customer.Diagnostic `json:"diagnostics,omitempty"`
}

// GetProductTableInput is the input schema for get_product_table.
type GetProductTableInput struct {
	ID         string `json:"id" jsonschema:"product table ID,required"`
	CustomerID string `json:"customer_id,omitempty" jsonschema:"view the table as this customer; omit for a guest"`
}

// NewMCPServer creates an MCP server with the storefront tools registered.
// The server exposes the same reads as the storefront REST routes.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront-widgets",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront widget proxy for a BigCommerce store. " +
				"Use these tools to price products for a customer group and inspect product tables.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_price",
		Description: "Resolve the unit price of a product for a customer group and quantity, including price-list and quantity-break pricing.",
	}, h.mcpResolvePrice)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_customer_context",
		Description: "Resolve a storefront customer's group, wholesale flag and tags. Unknown customers resolve to the guest context.",
	}, h.mcpResolveCustomerContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product_table",
		Description: "Get a published product table and its rows as seen by a customer.",
	}, h.mcpGetProductTable)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpResolvePrice(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ResolvePriceInput,
) (*mcp.CallToolResult, any, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}

	res, err := h.prices.Resolve(ctx, pricing.Request{
		ProductID:     input.ProductID,
		VariantID:     input.VariantID,
		CustomerGroup: input.CustomerGroup,
		CustomerTags:  model.NormalizeTags(input.CustomerTags),
		Quantity:      input.Quantity,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &ResolvePriceOutput{Quote: res.Quote, Diagnostics: res.Diagnostics}, nil
}

func (h *Handler) mcpResolveCustomerContext(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ResolveCustomerContextInput,
) (*mcp.CallToolResult, any, error) {
	res := h.customers.Resolve(ctx, input.CustomerID)
	return nil, &ResolveCustomerContextOutput{
		Context:     res.Context,
		Source:      res.Source,
		Diagnostics: res.Diagnostics,
	}, nil
}

func (h *Handler) mcpGetProductTable(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetProductTableInput,
) (*mcp.CallToolResult, any, error) {
	if input.ID == "" {
		return nil, nil, fmt.Errorf("id is required")
	}

	cc := h.customers.Resolve(ctx, input.CustomerID).Context
	table, err := h.widgets.VisibleTable(ctx, input.ID, cc)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	rows, err := h.widgets.Rows(ctx, table, cc)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	return nil, &storefrontTableResponse{Table: table, Customer: cc, Rows: rows}, nil
}

// mcpError converts resolver and service errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
