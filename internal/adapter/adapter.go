// Package adapter defines the storefront platform operations the resolvers and
// widget hooks consume. The BigCommerce client is the production implementation.
package adapter

import (
	"context"

	"storefront-widgets/internal/model"
)

// Catalog reads product pricing data.
//
// GetProduct and GetVariant return an error wrapping model.ErrNotFound when the
// entity does not exist upstream.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (*model.CatalogProduct, error)
	GetVariant(ctx context.Context, productID, variantID string) (*model.CatalogVariant, error)
	ListQuantityBreaks(ctx context.Context, productID string) ([]model.QuantityBreakRule, error)
	ListProducts(ctx context.Context, q model.ProductQuery) ([]model.CatalogProduct, error)
}

// PriceLists reads B2B/Enterprise price lists. Stores without the feature
// answer with an error, which callers treat as "no match".
type PriceLists interface {
	ListPriceLists(ctx context.Context) ([]model.PriceList, error)
	ListPriceListRecords(ctx context.Context, priceListID int, productID string) ([]model.PriceListRecord, error)
}

// Customers reads customer identity and group data.
type Customers interface {
	GetCustomer(ctx context.Context, customerID string) (*model.Customer, error)
	GetCustomerGroup(ctx context.Context, groupID int) (*model.CustomerGroup, error)

	// GetGuestCustomerGroupID returns the store's default guest group, or nil
	// when none is configured.
	GetGuestCustomerGroupID(ctx context.Context) (*int, error)
}

// Content manages storefront widgets and scripts.
type Content interface {
	EnsureWidgetTemplate(ctx context.Context, name, html string) (string, error)
	CreateWidget(ctx context.Context, req *WidgetRequest) (string, error)
	UpdateWidget(ctx context.Context, widgetUUID string, req *WidgetRequest) error
	DeleteWidget(ctx context.Context, widgetUUID string) error
	CreatePlacement(ctx context.Context, req *PlacementRequest) (string, error)
	EnsureScript(ctx context.Context, req *ScriptRequest) (string, error)
}

// Platform is everything the proxy needs from the store platform.
type Platform interface {
	Catalog
	PriceLists
	Customers
	Content
}

// WidgetRequest creates or updates a storefront widget from a template.
type WidgetRequest struct {
	Name          string
	TemplateUUID  string
	Configuration map[string]any
}

// PlacementRequest binds a widget to a page region.
type PlacementRequest struct {
	WidgetUUID   string
	TemplateFile string
	RegionName   string
	EntityID     string
	SortOrder    int
}

// ScriptRequest describes a storefront script tag.
type ScriptRequest struct {
	Name        string
	Description string
	Src         string
	Location    string // "head" or "footer"
	Visibility  string // e.g. "storefront", "all_pages"
}
