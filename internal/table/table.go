// Package table exposes tabular stores as opaque key/value tables of named
// fields, with lazy row scans and single-row updates.
package table

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrNotFound is returned by Get when no row matches the key.
var ErrNotFound = errors.New("table: row not found")

// Row is one record, addressable field by field. Values are driver scalars
// (string, int64, float64, []byte, bool, time.Time or nil).
type Row map[string]any

// Key holds a row's primary-key values, in primary-key column order.
// Values are opaque and compared for equality only.
type Key []any

// String renders the key for logs and failure reports.
func (k Key) String() string {
	if len(k) == 1 {
		return fmt.Sprint(k[0])
	}
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

// ColumnType names the scalar column types a store can add.
type ColumnType string

const (
	ColumnFloat ColumnType = "float"
	ColumnText  ColumnType = "text"
)

// Cursor streams (key, row) pairs lazily, database/sql style. Callers must
// Close it and check Err after the loop.
type Cursor interface {
	Next() bool
	Pair() (Key, Row)
	Err() error
	Close() error
}

// Store is the row-store contract consumed by the geocoding engine. A run
// holds exactly one Store; writes are single-row and immediately committed.
type Store interface {
	HasColumn(ctx context.Context, table, column string) (bool, error)
	AddColumn(ctx context.Context, table, column string, typ ColumnType) error

	// AddGeometryColumn adds a native spatial geometry column (POINT etc.).
	// Stores without spatial support return an error.
	AddGeometryColumn(ctx context.Context, table, column, geometryType string) error

	// PrimaryKeys returns the table's key columns in order. SQLite tables
	// without a declared key fall back to []string{"rowid"}.
	PrimaryKeys(ctx context.Context, table string) ([]string, error)

	Count(ctx context.Context, table string) (int, error)
	CountWhere(ctx context.Context, table, where string) (int, error)

	// Rows scans the table lazily. An empty where selects every row.
	Rows(ctx context.Context, table, where string) (Cursor, error)

	Get(ctx context.Context, table string, key Key) (Row, error)

	// Update sets fields on the row identified by key. For each column named
	// in conversions, the value is passed through the given store-side SQL
	// expression (which must contain exactly one parameter placeholder)
	// instead of being stored verbatim.
	Update(ctx context.Context, table string, key Key, fields Row, conversions map[string]string) error

	// GeomFromTextExpr is the store's expression converting a WKT parameter
	// into native geometry, for use as an Update conversion.
	GeomFromTextExpr() string

	Close() error
}

// Pairs adapts a Cursor to a range-over-func sequence. The caller still owns
// the cursor: check Err and Close after the loop.
func Pairs(c Cursor) iter.Seq2[Key, Row] {
	return func(yield func(Key, Row) bool) {
		for c.Next() {
			if !yield(c.Pair()) {
				return
			}
		}
	}
}

// QuoteIdent double-quotes an SQL identifier. Both SQLite and Postgres accept
// this form.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
