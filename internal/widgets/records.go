package widgets

import (
	"encoding/json"
	"fmt"

	"storefront-widgets/internal/model"
	"storefront-widgets/internal/store"
)

// tableSettings is the JSON document stored for a product table. Identity,
// name and timestamps live in record columns instead.
type tableSettings struct {
	Status             model.PublishStatus `json:"status"`
	Columns            []string            `json:"columns"`
	Source             model.ProductSource `json:"source"`
	PageSize           int                 `json:"pageSize"`
	SortBy             string              `json:"sortBy"`
	ShowPricing        bool                `json:"showPricing"`
	ShowQuantityBreaks bool                `json:"showQuantityBreaks"`
	Targeting          model.Targeting     `json:"targeting"`
	Placement          model.Placement     `json:"placement"`
	PlacementUUID      string              `json:"placementUuid,omitempty"`
}

type widgetSettings struct {
	WidgetType string          `json:"widgetType"`
	Enabled    bool            `json:"enabled"`
	Settings   map[string]any  `json:"settings"`
	Targeting  model.Targeting `json:"targeting"`
	Placement  model.Placement `json:"placement"`
}

func tableToRecord(t *model.ProductTable) (*store.Record, error) {
	raw, err := json.Marshal(tableSettings{
		Status:             t.Status,
		Columns:            t.Columns,
		Source:             t.Source,
		PageSize:           t.PageSize,
		SortBy:             t.SortBy,
		ShowPricing:        t.ShowPricing,
		ShowQuantityBreaks: t.ShowQuantityBreaks,
		Targeting:          t.Targeting,
		Placement:          t.Placement,
		PlacementUUID:      t.PlacementUUID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding product table settings: %w", err)
	}
	return &store.Record{
		ID:         t.ID,
		StoreHash:  t.StoreHash,
		Kind:       store.KindProductTable,
		Name:       t.Name,
		Settings:   raw,
		WidgetUUID: t.WidgetUUID,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}, nil
}

func tableFromRecord(rec *store.Record) (*model.ProductTable, error) {
	var s tableSettings
	if len(rec.Settings) > 0 {
		if err := json.Unmarshal(rec.Settings, &s); err != nil {
			return nil, fmt.Errorf("decoding product table %s: %w", rec.ID, err)
		}
	}
	return &model.ProductTable{
		ID:                 rec.ID,
		StoreHash:          rec.StoreHash,
		Name:               rec.Name,
		Status:             s.Status,
		Columns:            s.Columns,
		Source:             s.Source,
		PageSize:           s.PageSize,
		SortBy:             s.SortBy,
		ShowPricing:        s.ShowPricing,
		ShowQuantityBreaks: s.ShowQuantityBreaks,
		Targeting:          s.Targeting,
		Placement:          s.Placement,
		WidgetUUID:         rec.WidgetUUID,
		PlacementUUID:      s.PlacementUUID,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}, nil
}

func widgetToRecord(w *model.WidgetInstance) (*store.Record, error) {
	raw, err := json.Marshal(widgetSettings{
		WidgetType: w.WidgetType,
		Enabled:    w.Enabled,
		Settings:   w.Settings,
		Targeting:  w.Targeting,
		Placement:  w.Placement,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding widget settings: %w", err)
	}
	return &store.Record{
		ID:         w.ID,
		StoreHash:  w.StoreHash,
		Kind:       store.KindWidgetInstance,
		Name:       w.Name,
		Settings:   raw,
		WidgetUUID: w.WidgetUUID,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}, nil
}

func widgetFromRecord(rec *store.Record) (*model.WidgetInstance, error) {
	var s widgetSettings
	if len(rec.Settings) > 0 {
		if err := json.Unmarshal(rec.Settings, &s); err != nil {
			return nil, fmt.Errorf("decoding widget %s: %w", rec.ID, err)
		}
	}
	if s.Settings == nil {
		s.Settings = map[string]any{}
	}
	return &model.WidgetInstance{
		ID:         rec.ID,
		StoreHash:  rec.StoreHash,
		Name:       rec.Name,
		WidgetType: s.WidgetType,
		Enabled:    s.Enabled,
		Settings:   s.Settings,
		Targeting:  s.Targeting,
		Placement:  s.Placement,
		WidgetUUID: rec.WidgetUUID,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}
