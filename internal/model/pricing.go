package model

import "github.com/shopspring/decimal"

// DiscountMode describes how a quantity break derives its tier price.
type DiscountMode string

const (
	// DiscountAbsolute sets the unit price to Amount.
	DiscountAbsolute DiscountMode = "absolute"
	// DiscountPercent takes Amount percent off the calculated price.
	DiscountPercent DiscountMode = "percent"
	// DiscountFixedOff subtracts Amount from the calculated price.
	DiscountFixedOff DiscountMode = "fixedOff"
)

// QuantityBreakRule is a bulk pricing rule as reported by the platform.
type QuantityBreakRule struct {
	MinQuantity int             `json:"minQuantity"`
	MaxQuantity int             `json:"maxQuantity,omitempty"` // 0 = unbounded
	Mode        DiscountMode    `json:"mode"`
	Amount      decimal.Decimal `json:"amount"`
}

// QuantityBreak is a rule resolved into a flat tier price.
// Ranges are closed [Min, Max]; a nil Max is unbounded.
type QuantityBreak struct {
	Min   int             `json:"min"`
	Max   *int            `json:"max"`
	Price decimal.Decimal `json:"price"`
}

// Contains reports whether qty falls inside the break's range.
func (b QuantityBreak) Contains(qty int) bool {
	if qty < b.Min {
		return false
	}
	return b.Max == nil || qty <= *b.Max
}

// PriceList is a named, group-scoped set of price overrides.
type PriceList struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// PriceListRecord is a single override inside a price list.
// An empty VariantID marks a product-level record.
type PriceListRecord struct {
	PriceListID int             `json:"priceListId"`
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
}

// PriceQuote is the computed price of one product for one customer group and
// quantity. It is built per request and never persisted.
type PriceQuote struct {
	ProductID     string   `json:"productId"`
	VariantID     string   `json:"variantId,omitempty"`
	CustomerGroup string   `json:"customerGroup"`
	CustomerTags  []string `json:"customerTags"`
	Quantity      int      `json:"quantity"`
	Currency      string   `json:"currency"`

	BasePrice       decimal.Decimal `json:"basePrice"`
	SalePrice       decimal.Decimal `json:"salePrice"`
	CalculatedPrice decimal.Decimal `json:"calculatedPrice"`

	PriceListID    int              `json:"priceListId,omitempty"`
	PriceListName  string           `json:"priceListName,omitempty"`
	PriceListPrice *decimal.Decimal `json:"priceListPrice,omitempty"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice,omitempty"`

	QuantityBreaks     []QuantityBreak  `json:"quantityBreaks"`
	QuantityBreakPrice *decimal.Decimal `json:"quantityBreakPrice,omitempty"`

	RetailPrice decimal.Decimal `json:"retailPrice"`
	FinalPrice  decimal.Decimal `json:"finalPrice"`

	MinOrderQuantity int  `json:"minOrderQuantity"`
	MaxOrderQuantity *int `json:"maxOrderQuantity"` // null = unbounded
}
