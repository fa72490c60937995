package widgets

import (
	"slices"
	"strings"

	"storefront-widgets/internal/model"
)

// Table defaults.
const (
	DefaultPageSize = 25
	MinPageSize     = 1
	MaxPageSize     = 100
	DefaultSortBy   = "name"
	maxNameLength   = 200
)

// Columns a product table can render.
var knownColumns = []string{
	"image", "name", "sku", "price", "quantity_breaks", "stock", "quantity", "add_to_cart",
}

// DefaultColumns is used when a table is saved without columns.
var DefaultColumns = []string{"image", "name", "sku", "price", "quantity", "add_to_cart"}

var sortOptions = []string{"name", "price", "sku", "newest", "manual"}

// normalizeTable fills defaults and validates t in place.
func normalizeTable(t *model.ProductTable) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return model.NewValidationError("name", "required")
	}
	if len(t.Name) > maxNameLength {
		return model.NewValidationError("name", "too long")
	}

	if t.Status == "" {
		t.Status = model.StatusDraft
	}
	if t.Status != model.StatusDraft && t.Status != model.StatusPublished {
		return model.NewValidationError("status", "must be draft or published")
	}

	if len(t.Columns) == 0 {
		t.Columns = slices.Clone(DefaultColumns)
	}
	seen := make(map[string]bool, len(t.Columns))
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		c = strings.ToLower(strings.TrimSpace(c))
		if !slices.Contains(knownColumns, c) {
			return model.NewValidationError("columns", "unknown column "+c)
		}
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	t.Columns = cols

	if err := normalizeSource(&t.Source); err != nil {
		return err
	}

	t.PageSize = clampPageSize(t.PageSize)

	t.SortBy = strings.ToLower(strings.TrimSpace(t.SortBy))
	if t.SortBy == "" {
		t.SortBy = DefaultSortBy
		if t.Source.Type == model.SourceManual {
			t.SortBy = "manual"
		}
	}
	if !slices.Contains(sortOptions, t.SortBy) {
		return model.NewValidationError("sortBy", "must be one of "+strings.Join(sortOptions, ", "))
	}

	t.Targeting = normalizeTargeting(t.Targeting)
	return nil
}

func normalizeSource(s *model.ProductSource) error {
	if s.Type == "" {
		s.Type = model.SourceAll
	}
	s.CategoryIDs = compactIDs(s.CategoryIDs)
	s.ProductIDs = compactIDs(s.ProductIDs)

	switch s.Type {
	case model.SourceAll:
		s.CategoryIDs, s.ProductIDs = nil, nil
	case model.SourceCategory:
		if len(s.CategoryIDs) == 0 {
			return model.NewValidationError("source.categoryIds", "required for category source")
		}
		s.ProductIDs = nil
	case model.SourceManual:
		if len(s.ProductIDs) == 0 {
			return model.NewValidationError("source.productIds", "required for manual source")
		}
		s.CategoryIDs = nil
	default:
		return model.NewValidationError("source.type", "must be all, category or manual")
	}
	return nil
}

func normalizeTargeting(t model.Targeting) model.Targeting {
	groups := make([]string, 0, len(t.CustomerGroups))
	for _, g := range t.CustomerGroups {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" && !slices.Contains(groups, g) {
			groups = append(groups, g)
		}
	}
	t.CustomerGroups = nilIfEmpty(groups)
	t.CustomerTags = nilIfEmpty(model.NormalizeTags(t.CustomerTags))
	return t
}

func clampPageSize(n int) int {
	switch {
	case n == 0:
		return DefaultPageSize
	case n < MinPageSize:
		return MinPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}

// compactIDs trims and de-duplicates IDs, keeping first-seen order.
func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return nilIfEmpty(out)
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
