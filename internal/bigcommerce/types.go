// Package bigcommerce implements the platform adapter against the BigCommerce
// REST Management API (v2 and v3).
//
// All v3 responses are wrapped in a {"data": ..., "meta": ...} envelope;
// the v2 customer group endpoint returns the bare object. Prices arrive as JSON
// numbers and are decoded straight into decimal.Decimal.
package bigcommerce

import "github.com/shopspring/decimal"

// === Envelope ===

type envelope[T any] struct {
	Data T    `json:"data"`
	Meta meta `json:"meta"`
}

type meta struct {
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Total       int `json:"total"`
	Count       int `json:"count"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// bcError covers both the v3 problem shape and the v2 message list.
type bcError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

type bcV2Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// === Catalog ===

type bcProduct struct {
	ID                   int             `json:"id"`
	Name                 string          `json:"name"`
	SKU                  string          `json:"sku"`
	Price                decimal.Decimal `json:"price"`
	SalePrice            decimal.Decimal `json:"sale_price"`
	CalculatedPrice      decimal.Decimal `json:"calculated_price"`
	OrderQuantityMinimum int             `json:"order_quantity_minimum"`
	OrderQuantityMaximum int             `json:"order_quantity_maximum"`
	InventoryLevel       int             `json:"inventory_level"`
	InventoryTracking    string          `json:"inventory_tracking"` // none, product, variant
	IsVisible            bool            `json:"is_visible"`
	CustomURL            *bcCustomURL    `json:"custom_url,omitempty"`
	PrimaryImage         *bcImage        `json:"primary_image,omitempty"`
}

type bcCustomURL struct {
	URL string `json:"url"`
}

type bcImage struct {
	URLStandard  string `json:"url_standard"`
	URLThumbnail string `json:"url_thumbnail"`
}

type bcVariant struct {
	ID              int              `json:"id"`
	ProductID       int              `json:"product_id"`
	SKU             string           `json:"sku"`
	Price           *decimal.Decimal `json:"price"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	CalculatedPrice *decimal.Decimal `json:"calculated_price"`
}

// Bulk pricing rule types.
const (
	bulkTypePrice   = "price"   // amount off each unit
	bulkTypePercent = "percent" // percent off each unit
	bulkTypeFixed   = "fixed"   // fixed unit price
)

type bcBulkPricingRule struct {
	ID          int             `json:"id"`
	QuantityMin int             `json:"quantity_min"`
	QuantityMax int             `json:"quantity_max"` // 0 = unbounded
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
}

// === Price lists ===

type bcPriceList struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type bcPriceListRecord struct {
	PriceListID int             `json:"price_list_id"`
	ProductID   int             `json:"product_id"`
	VariantID   int             `json:"variant_id"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

// === Customers ===

type bcCustomer struct {
	ID              int                   `json:"id"`
	Email           string                `json:"email"`
	FirstName       string                `json:"first_name"`
	LastName        string                `json:"last_name"`
	CustomerGroupID int                   `json:"customer_group_id"` // 0 = no group
	Attributes      []bcCustomerAttribute `json:"attributes,omitempty"`
}

type bcCustomerAttribute struct {
	AttributeID    int    `json:"attribute_id"`
	AttributeValue string `json:"attribute_value"`
}

type bcCustomerGroup struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

type bcCustomerSettings struct {
	CustomerGroupSettings struct {
		GuestCustomerGroupID   int `json:"guest_customer_group_id"`
		DefaultCustomerGroupID int `json:"default_customer_group_id"`
	} `json:"customer_group_settings"`
}

// === Content ===

type bcWidgetTemplate struct {
	UUID     string `json:"uuid,omitempty"`
	Name     string `json:"name"`
	Template string `json:"template"`
}

type bcWidget struct {
	UUID                string         `json:"uuid,omitempty"`
	Name                string         `json:"name"`
	WidgetTemplateUUID  string         `json:"widget_template_uuid"`
	WidgetConfiguration map[string]any `json:"widget_configuration"`
}

type bcPlacement struct {
	UUID         string `json:"uuid,omitempty"`
	WidgetUUID   string `json:"widget_uuid"`
	TemplateFile string `json:"template_file"`
	Region       string `json:"region"`
	EntityID     string `json:"entity_id,omitempty"`
	SortOrder    int    `json:"sort_order"`
	Status       string `json:"status"`
}

type bcScript struct {
	UUID            string `json:"uuid,omitempty"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Src             string `json:"src"`
	AuthClientID    string `json:"auth_client_id,omitempty"`
	LoadMethod      string `json:"load_method"`
	Location        string `json:"location"`
	Visibility      string `json:"visibility"`
	Kind            string `json:"kind"`
	ConsentCategory string `json:"consent_category"`
}
