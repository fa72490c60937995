// Package store persists widget and product table configuration records,
// scoped per store hash.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors. Callers match with errors.Is.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Kind distinguishes the two configuration shapes kept in one table.
type Kind string

const (
	KindProductTable   Kind = "product_table"
	KindWidgetInstance Kind = "widget_instance"
)

// Record is one stored configuration. Settings holds the kind-specific JSON
// document; the columns beside it are what queries filter on.
type Record struct {
	ID         string
	StoreHash  string
	Kind       Kind
	Name       string
	Settings   json.RawMessage
	WidgetUUID string // storefront widget, "" until published
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Kind  Kind
	Limit int
}

// Repository stores records. Implementations must be safe for concurrent use.
// Every method is scoped to a store hash; a record belonging to another store
// is reported as ErrNotFound.
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	Get(ctx context.Context, storeHash, id string) (*Record, error)
	List(ctx context.Context, storeHash string, f Filter) ([]Record, error)
	Delete(ctx context.Context, storeHash, id string) error
}
