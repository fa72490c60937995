package model

import (
	"strings"
	"time"
)

// PublishStatus controls whether a configuration renders on the storefront.
type PublishStatus string

const (
	StatusDraft     PublishStatus = "draft"
	StatusPublished PublishStatus = "published"
)

// ProductSourceType selects which catalog products a table lists.
type ProductSourceType string

const (
	SourceAll      ProductSourceType = "all"
	SourceCategory ProductSourceType = "category"
	SourceManual   ProductSourceType = "manual"
)

// ProductSource describes the catalog slice a table renders.
type ProductSource struct {
	Type        ProductSourceType `json:"type"`
	CategoryIDs []string          `json:"categoryIds,omitempty"`
	ProductIDs  []string          `json:"productIds,omitempty"`
}

// Targeting restricts which visitors see a widget.
// Empty group and tag lists mean "everyone".
type Targeting struct {
	CustomerGroups []string `json:"customerGroups,omitempty"`
	CustomerTags   []string `json:"customerTags,omitempty"`
	HideFromGuests bool     `json:"hideFromGuests,omitempty"`
}

// Allows reports whether the visitor described by cc may see the widget.
// Groups and tags are alternatives: matching either grants access.
func (t Targeting) Allows(cc CustomerContext) bool {
	if t.HideFromGuests && !cc.IsLoggedIn {
		return false
	}
	if len(t.CustomerGroups) == 0 && len(t.CustomerTags) == 0 {
		return true
	}
	for _, g := range t.CustomerGroups {
		if strings.EqualFold(strings.TrimSpace(g), cc.CustomerGroup) {
			return true
		}
	}
	for _, tag := range t.CustomerTags {
		if cc.HasTag(strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}

// Placement locates the storefront region a widget is rendered into.
type Placement struct {
	TemplateFile string `json:"templateFile,omitempty"` // e.g. "pages/category"
	RegionName   string `json:"regionName,omitempty"`
	EntityID     string `json:"entityId,omitempty"`
	SortOrder    int    `json:"sortOrder,omitempty"`
}

// ProductTable is the admin-configured product table widget.
type ProductTable struct {
	ID                 string        `json:"productTableId"`
	StoreHash          string        `json:"storeHash"`
	Name               string        `json:"name"`
	Status             PublishStatus `json:"status"`
	Columns            []string      `json:"columns"`
	Source             ProductSource `json:"source"`
	PageSize           int           `json:"pageSize"`
	SortBy             string        `json:"sortBy"`
	ShowPricing        bool          `json:"showPricing"`
	ShowQuantityBreaks bool          `json:"showQuantityBreaks"`
	Targeting          Targeting     `json:"targeting"`
	Placement          Placement     `json:"placement"`
	WidgetUUID         string        `json:"widgetUuid,omitempty"`
	PlacementUUID      string        `json:"placementUuid,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// ProductTablePatch is a partial update; nil fields are left unchanged.
type ProductTablePatch struct {
	Name               *string        `json:"name,omitempty"`
	Status             *PublishStatus `json:"status,omitempty"`
	Columns            []string       `json:"columns,omitempty"`
	Source             *ProductSource `json:"source,omitempty"`
	PageSize           *int           `json:"pageSize,omitempty"`
	SortBy             *string        `json:"sortBy,omitempty"`
	ShowPricing        *bool          `json:"showPricing,omitempty"`
	ShowQuantityBreaks *bool          `json:"showQuantityBreaks,omitempty"`
	Targeting          *Targeting     `json:"targeting,omitempty"`
	Placement          *Placement     `json:"placement,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductTablePatch) IsEmpty() bool {
	return p.Name == nil && p.Status == nil && p.Columns == nil && p.Source == nil &&
		p.PageSize == nil && p.SortBy == nil && p.ShowPricing == nil &&
		p.ShowQuantityBreaks == nil && p.Targeting == nil && p.Placement == nil
}

// WidgetInstance is the legacy widget record that predates product tables.
// Display settings are free-form; only a few keys are understood.
type WidgetInstance struct {
	ID         string         `json:"widgetId"`
	StoreHash  string         `json:"storeHash"`
	Name       string         `json:"name"`
	WidgetType string         `json:"widgetType"`
	Enabled    bool           `json:"enabled"`
	Settings   map[string]any `json:"settings"`
	Targeting  Targeting      `json:"targeting"`
	Placement  Placement      `json:"placement"`
	WidgetUUID string         `json:"widgetUuid,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// WidgetInstancePatch is a partial update; nil fields are left unchanged.
type WidgetInstancePatch struct {
	Name      *string        `json:"name,omitempty"`
	Enabled   *bool          `json:"enabled,omitempty"`
	Settings  map[string]any `json:"settings,omitempty"`
	Targeting *Targeting     `json:"targeting,omitempty"`
	Placement *Placement     `json:"placement,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p WidgetInstancePatch) IsEmpty() bool {
	return p.Name == nil && p.Enabled == nil && p.Settings == nil && p.Targeting == nil && p.Placement == nil
}
