// Package model defines the storefront widget's public JSON contract and the
// platform-neutral shapes the resolvers consume.
package model

import "github.com/shopspring/decimal"

// DefaultCurrency is used when the platform does not report one.
const DefaultCurrency = "USD"

// CatalogProduct is the pricing-relevant subset of a catalog product.
type CatalogProduct struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku,omitempty"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	SalePrice       decimal.Decimal `json:"salePrice"`
	CalculatedPrice decimal.Decimal `json:"calculatedPrice"`
	Currency        string          `json:"currency,omitempty"`
	MinQuantity     int             `json:"minQuantity"`           // 0 when the platform sets no minimum
	MaxQuantity     int             `json:"maxQuantity,omitempty"` // 0 = unbounded
	ImageURL        string          `json:"imageUrl,omitempty"`
	URL             string          `json:"url,omitempty"`
	InventoryLevel  int             `json:"inventoryLevel"`
	Visible         bool            `json:"visible"`
}

// CatalogVariant carries the price overrides of a single variant.
// A nil field means the variant inherits the product's value.
type CatalogVariant struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"productId"`
	SKU             string           `json:"sku,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	SalePrice       *decimal.Decimal `json:"salePrice,omitempty"`
	CalculatedPrice *decimal.Decimal `json:"calculatedPrice,omitempty"`
}

// Catalog sort keys understood by the platform.
const (
	SortByID    = "id"
	SortByName  = "name"
	SortBySKU   = "sku"
	SortByPrice = "price"
)

// ProductQuery selects catalog rows for a product table. Sorting happens
// upstream so a page holds the first rows of the whole source.
type ProductQuery struct {
	ProductIDs  []string
	CategoryIDs []string
	Limit       int
	Sort        string // one of the SortBy keys; "" keeps platform order
	Descending  bool
}

// ProductRow is one row rendered by the product table widget.
type ProductRow struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku,omitempty"`
	Price       decimal.Decimal `json:"price"`
	SalePrice   decimal.Decimal `json:"salePrice"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	URL         string          `json:"url,omitempty"`
	InStock     bool            `json:"inStock"`
	MinQuantity int             `json:"minQuantity"`
	MaxQuantity int             `json:"maxQuantity,omitempty"`

	// Set when the row was priced for the visiting customer.
	PriceListName  string          `json:"priceListName,omitempty"`
	QuantityBreaks []QuantityBreak `json:"quantityBreaks,omitempty"`
}

// RowFromProduct reshapes a catalog product into the widget row contract.
func RowFromProduct(p CatalogProduct) ProductRow {
	minQty := p.MinQuantity
	if minQty < 1 {
		minQty = 1
	}
	return ProductRow{
		ProductID:   p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Price:       p.CalculatedPrice,
		SalePrice:   p.SalePrice,
		ImageURL:    p.ImageURL,
		URL:         p.URL,
		InStock:     p.InventoryLevel > 0,
		MinQuantity: minQty,
		MaxQuantity: p.MaxQuantity,
	}
}
