package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Open connects to Postgres through the pgx stdlib driver and verifies the
// connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return db, nil
}

// PostgresRepository stores records in the widget_records table.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository wraps an open database.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// EnsureSchema creates the table and indexes if missing.
func (p *PostgresRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS widget_records (
			id TEXT PRIMARY KEY,
			store_hash TEXT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('product_table','widget_instance')),
			name TEXT NOT NULL,
			settings JSONB NOT NULL DEFAULT '{}'::jsonb,
			widget_uuid TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_widget_records_store_created ON widget_records (store_hash, created_at DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_widget_records_store_kind ON widget_records (store_hash, kind)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "ensure schema")
		}
	}
	return nil
}

func (p *PostgresRepository) Insert(ctx context.Context, rec *Record) error {
	now := p.now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO widget_records (id, store_hash, kind, name, settings, widget_uuid, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.StoreHash, string(rec.Kind), rec.Name, settingsArg(rec.Settings),
		nilIfEmpty(rec.WidgetUUID), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errors.Wrapf(ErrDuplicate, "insert %s", rec.ID)
		}
		return errors.Wrapf(err, "insert %s", rec.ID)
	}
	return nil
}

func (p *PostgresRepository) Update(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = p.now().UTC()

	err := p.db.QueryRowContext(ctx,
		`UPDATE widget_records SET kind=$3, name=$4, settings=$5, widget_uuid=$6, updated_at=$7
		WHERE store_hash=$1 AND id=$2
		RETURNING created_at`,
		rec.StoreHash, rec.ID, string(rec.Kind), rec.Name, settingsArg(rec.Settings),
		nilIfEmpty(rec.WidgetUUID), rec.UpdatedAt,
	).Scan(&rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(ErrNotFound, "update %s", rec.ID)
	}
	if err != nil {
		return errors.Wrapf(err, "update %s", rec.ID)
	}
	return nil
}

func (p *PostgresRepository) Get(ctx context.Context, storeHash, id string) (*Record, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, store_hash, kind, name, settings, widget_uuid, created_at, updated_at
		FROM widget_records WHERE store_hash=$1 AND id=$2`, storeHash, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "get %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", id)
	}
	return rec, nil
}

// List returns records newest first.
func (p *PostgresRepository) List(ctx context.Context, storeHash string, f Filter) ([]Record, error) {
	q := `SELECT id, store_hash, kind, name, settings, widget_uuid, created_at, updated_at
		FROM widget_records WHERE store_hash=$1`
	args := []any{storeHash}
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		q += fmt.Sprintf(" AND kind=$%d", len(args))
	}
	q += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list records")
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan record")
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list records")
	}
	return out, nil
}

func (p *PostgresRepository) Delete(ctx context.Context, storeHash, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM widget_records WHERE store_hash=$1 AND id=$2`, storeHash, id)
	if err != nil {
		return errors.Wrapf(err, "delete %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete %s", id)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "delete %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec        Record
		kind       string
		settings   []byte
		widgetUUID sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.StoreHash, &kind, &rec.Name, &settings, &widgetUUID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Kind = Kind(kind)
	rec.Settings = settings
	rec.WidgetUUID = widgetUUID.String
	return &rec, nil
}

// settingsArg passes JSON as text so the driver does not send bytea.
func settingsArg(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
