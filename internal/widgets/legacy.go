package widgets

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"storefront-widgets/internal/model"
	"storefront-widgets/internal/store"
)

// DefaultWidgetType is assigned to legacy widgets saved without a type.
const DefaultWidgetType = "product_table"

func normalizeWidget(w *model.WidgetInstance) error {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return model.NewValidationError("name", "required")
	}
	if len(w.Name) > maxNameLength {
		return model.NewValidationError("name", "too long")
	}
	w.WidgetType = strings.TrimSpace(w.WidgetType)
	if w.WidgetType == "" {
		w.WidgetType = DefaultWidgetType
	}
	if w.Settings == nil {
		w.Settings = map[string]any{}
	}
	w.Targeting = normalizeTargeting(w.Targeting)
	return nil
}

// CreateWidget persists a legacy widget instance and, when enabled,
// publishes its storefront widget.
func (s *Service) CreateWidget(ctx context.Context, in model.WidgetInstance) (*model.WidgetInstance, error) {
	w := in
	w.ID = s.newID(WidgetPrefix)
	w.StoreHash = s.opts.StoreHash
	w.WidgetUUID = ""
	if err := normalizeWidget(&w); err != nil {
		return nil, err
	}

	rec, err := widgetToRecord(&w)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, storeError("widget", err)
	}
	w.CreatedAt, w.UpdatedAt = rec.CreatedAt, rec.UpdatedAt

	syncErr := s.syncWidget(ctx, &w)
	if w.WidgetUUID != "" {
		if err := s.saveWidget(ctx, &w); err != nil {
			return nil, err
		}
	}
	if syncErr != nil {
		return &w, syncErr
	}
	return &w, nil
}

// GetWidget returns a stored legacy widget.
func (s *Service) GetWidget(ctx context.Context, id string) (*model.WidgetInstance, error) {
	rec, err := s.repo.Get(ctx, s.opts.StoreHash, id)
	if err != nil {
		return nil, storeError("widget", err)
	}
	if rec.Kind != store.KindWidgetInstance {
		return nil, model.NewNotFoundError("widget")
	}
	w, err := widgetFromRecord(rec)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return w, nil
}

// ListWidgets returns the store's legacy widgets, newest first.
func (s *Service) ListWidgets(ctx context.Context) ([]model.WidgetInstance, error) {
	recs, err := s.repo.List(ctx, s.opts.StoreHash, store.Filter{Kind: store.KindWidgetInstance})
	if err != nil {
		return nil, storeError("widget", err)
	}
	out := make([]model.WidgetInstance, 0, len(recs))
	for i := range recs {
		w, err := widgetFromRecord(&recs[i])
		if err != nil {
			return nil, model.NewInternalError(err)
		}
		out = append(out, *w)
	}
	return out, nil
}

// UpdateWidget applies patch to a legacy widget and re-syncs it.
// Settings are merged key by key; a nil value removes the key.
func (s *Service) UpdateWidget(ctx context.Context, id string, patch model.WidgetInstancePatch) (*model.WidgetInstance, error) {
	w, err := s.GetWidget(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return w, nil
	}

	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Enabled != nil {
		w.Enabled = *patch.Enabled
	}
	for k, v := range patch.Settings {
		if v == nil {
			delete(w.Settings, k)
			continue
		}
		w.Settings[k] = v
	}
	if patch.Targeting != nil {
		w.Targeting = *patch.Targeting
	}
	if patch.Placement != nil {
		w.Placement = *patch.Placement
	}
	if err := normalizeWidget(w); err != nil {
		return nil, err
	}

	syncErr := s.syncWidget(ctx, w)
	if err := s.saveWidget(ctx, w); err != nil {
		return nil, err
	}
	if syncErr != nil {
		return w, syncErr
	}
	return w, nil
}

// DeleteWidget removes the storefront widget (best effort) and the record.
func (s *Service) DeleteWidget(ctx context.Context, id string) error {
	w, err := s.GetWidget(ctx, id)
	if err != nil {
		return err
	}
	s.removeWidget(ctx, w.WidgetUUID, w.ID)
	if err := s.repo.Delete(ctx, s.opts.StoreHash, id); err != nil {
		return storeError("widget", err)
	}
	return nil
}

// MigrateWidget converts a legacy widget into a product table, then deletes
// the legacy record. Understood settings keys: columns, pageSize, sortBy,
// productIds, categoryIds, showPricing, showQuantityBreaks.
func (s *Service) MigrateWidget(ctx context.Context, id string) (*model.ProductTable, error) {
	w, err := s.GetWidget(ctx, id)
	if err != nil {
		return nil, err
	}

	created, syncErr := s.CreateTable(ctx, TableFromWidget(w))
	if created == nil {
		return nil, syncErr
	}

	if err := s.DeleteWidget(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "legacy widget kept after migration",
			slog.String("widget_id", id),
			slog.String("table_id", created.ID),
			slog.String("error", err.Error()))
	}
	s.logger.InfoContext(ctx, "legacy widget migrated",
		slog.String("widget_id", id),
		slog.String("table_id", created.ID))
	return created, syncErr
}

// TableFromWidget maps a legacy widget's settings onto a product table.
func TableFromWidget(w *model.WidgetInstance) model.ProductTable {
	t := model.ProductTable{
		Name:               w.Name,
		Status:             model.StatusDraft,
		Columns:            stringList(w.Settings["columns"]),
		PageSize:           intSetting(w.Settings["pageSize"]),
		SortBy:             stringSetting(w.Settings["sortBy"]),
		ShowPricing:        boolSetting(w.Settings["showPricing"], true),
		ShowQuantityBreaks: boolSetting(w.Settings["showQuantityBreaks"], false),
		Targeting:          w.Targeting,
		Placement:          w.Placement,
	}
	if w.Enabled {
		t.Status = model.StatusPublished
	}

	switch {
	case len(stringList(w.Settings["productIds"])) > 0:
		t.Source = model.ProductSource{Type: model.SourceManual, ProductIDs: stringList(w.Settings["productIds"])}
	case len(stringList(w.Settings["categoryIds"])) > 0:
		t.Source = model.ProductSource{Type: model.SourceCategory, CategoryIDs: stringList(w.Settings["categoryIds"])}
	default:
		t.Source = model.ProductSource{Type: model.SourceAll}
	}
	return t
}

func (s *Service) saveWidget(ctx context.Context, w *model.WidgetInstance) error {
	rec, err := widgetToRecord(w)
	if err != nil {
		return model.NewInternalError(err)
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return storeError("widget", err)
	}
	w.CreatedAt, w.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

// Settings arrive as decoded JSON, so numbers are float64 and lists []any.

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			switch x := item.(type) {
			case string:
				out = append(out, x)
			case float64:
				out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
			}
		}
		return out
	case string:
		return strings.Split(list, ",")
	default:
		return nil
	}
}

func intSetting(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func stringSetting(v any) string {
	s, _ := v.(string)
	return s
}

func boolSetting(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}
