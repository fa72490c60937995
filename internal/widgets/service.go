// Package widgets implements the create, update and delete hooks for product
// tables and legacy widget instances, and keeps their storefront widgets in
// sync with the platform.
package widgets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"storefront-widgets/internal/adapter"
	"storefront-widgets/internal/model"
	"storefront-widgets/internal/pricing"
	"storefront-widgets/internal/store"
)

// ID prefixes for generated identifiers.
const (
	TablePrefix  = "pt_"
	WidgetPrefix = "wi_"
)

// Upstream is the platform surface the service needs.
type Upstream interface {
	adapter.Catalog
	adapter.Content
}

// Pricer quotes customer-specific prices for table rows.
type Pricer interface {
	Resolve(ctx context.Context, req pricing.Request) (*pricing.Resolution, error)
}

// Options configures a Service.
type Options struct {
	StoreHash       string
	TemplateName    string // storefront widget template name
	LoaderScriptURL string // "" skips the loader script on install
	ProxyBaseURL    string // baked into the widget template markup
	Pricer          Pricer // nil leaves catalog prices on table rows
}

// Service owns product table and widget instance records for one store.
type Service struct {
	repo     store.Repository
	upstream Upstream
	opts     Options
	logger   *slog.Logger
	newID    func(prefix string) string
}

// NewService creates a Service.
func NewService(repo store.Repository, upstream Upstream, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		upstream: upstream,
		opts:     opts,
		logger:   logger,
		newID:    func(prefix string) string { return prefix + uuid.NewString() },
	}
}

// CreateTable applies defaults, persists the table and, when published,
// creates its storefront widget. If the widget cannot be created the table
// is still saved (unpublished upstream) and the sync error is returned.
func (s *Service) CreateTable(ctx context.Context, in model.ProductTable) (*model.ProductTable, error) {
	t := in
	t.ID = s.newID(TablePrefix)
	t.StoreHash = s.opts.StoreHash
	t.WidgetUUID, t.PlacementUUID = "", ""
	if err := normalizeTable(&t); err != nil {
		return nil, err
	}

	rec, err := tableToRecord(&t)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, storeError("product table", err)
	}
	t.CreatedAt, t.UpdatedAt = rec.CreatedAt, rec.UpdatedAt

	s.logger.InfoContext(ctx, "product table created",
		slog.String("table_id", t.ID),
		slog.String("status", string(t.Status)))

	syncErr := s.syncTable(ctx, &t)
	if t.WidgetUUID != "" {
		if err := s.saveTable(ctx, &t); err != nil {
			return nil, err
		}
	}
	if syncErr != nil {
		return &t, syncErr
	}
	return &t, nil
}

// GetTable returns a stored product table.
func (s *Service) GetTable(ctx context.Context, id string) (*model.ProductTable, error) {
	rec, err := s.repo.Get(ctx, s.opts.StoreHash, id)
	if err != nil {
		return nil, storeError("product table", err)
	}
	if rec.Kind != store.KindProductTable {
		return nil, model.NewNotFoundError("product table")
	}
	t, err := tableFromRecord(rec)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	return t, nil
}

// ListTables returns the store's product tables, newest first.
func (s *Service) ListTables(ctx context.Context) ([]model.ProductTable, error) {
	recs, err := s.repo.List(ctx, s.opts.StoreHash, store.Filter{Kind: store.KindProductTable})
	if err != nil {
		return nil, storeError("product table", err)
	}
	out := make([]model.ProductTable, 0, len(recs))
	for i := range recs {
		t, err := tableFromRecord(&recs[i])
		if err != nil {
			return nil, model.NewInternalError(err)
		}
		out = append(out, *t)
	}
	return out, nil
}

// UpdateTable applies patch, re-validates, persists and re-syncs the
// storefront widget to the new publish state.
func (s *Service) UpdateTable(ctx context.Context, id string, patch model.ProductTablePatch) (*model.ProductTable, error) {
	t, err := s.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return t, nil
	}

	applyTablePatch(t, patch)
	if err := normalizeTable(t); err != nil {
		return nil, err
	}

	syncErr := s.syncTable(ctx, t)
	if err := s.saveTable(ctx, t); err != nil {
		return nil, err
	}
	if syncErr != nil {
		return t, syncErr
	}
	return t, nil
}

// DeleteTable removes the storefront widget (best effort) and the record.
func (s *Service) DeleteTable(ctx context.Context, id string) error {
	t, err := s.GetTable(ctx, id)
	if err != nil {
		return err
	}
	s.removeWidget(ctx, t.WidgetUUID, t.ID)
	if err := s.repo.Delete(ctx, s.opts.StoreHash, id); err != nil {
		return storeError("product table", err)
	}
	s.logger.InfoContext(ctx, "product table deleted", slog.String("table_id", id))
	return nil
}

func (s *Service) saveTable(ctx context.Context, t *model.ProductTable) error {
	rec, err := tableToRecord(t)
	if err != nil {
		return model.NewInternalError(err)
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return storeError("product table", err)
	}
	t.CreatedAt, t.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func applyTablePatch(t *model.ProductTable, p model.ProductTablePatch) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Columns != nil {
		t.Columns = p.Columns
	}
	if p.Source != nil {
		t.Source = *p.Source
	}
	if p.PageSize != nil {
		t.PageSize = *p.PageSize
	}
	if p.SortBy != nil {
		t.SortBy = *p.SortBy
	}
	if p.ShowPricing != nil {
		t.ShowPricing = *p.ShowPricing
	}
	if p.ShowQuantityBreaks != nil {
		t.ShowQuantityBreaks = *p.ShowQuantityBreaks
	}
	if p.Targeting != nil {
		t.Targeting = *p.Targeting
	}
	if p.Placement != nil {
		t.Placement = *p.Placement
	}
}

// storeError maps repository errors onto the API error taxonomy.
func storeError(resource string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return model.NewNotFoundError(resource)
	case errors.Is(err, store.ErrDuplicate):
		return &model.APIError{
			Code:       "CONFLICT",
			Message:    fmt.Sprintf("%s already exists", resource),
			StatusCode: 409,
			Err:        err,
		}
	default:
		return model.NewInternalError(err)
	}
}
