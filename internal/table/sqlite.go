package table

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
//
// SpatialGeometry support (AddGeometryColumn, GeomFromTextExpr) relies on the
// SpatiaLite extension being loaded into the connection; without it those
// statements fail at execution time.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for test fixtures.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) HasColumn(ctx context.Context, table, column string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: inspect %s", table)
	}
	return n > 0, nil
}

func (s *SQLiteStore) AddColumn(ctx context.Context, table, column string, typ ColumnType) error {
	sqlType := "TEXT"
	if typ == ColumnFloat {
		sqlType = "FLOAT"
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`,
		QuoteIdent(table), QuoteIdent(column), sqlType,
	))
	return eris.Wrapf(err, "sqlite: add column %s.%s", table, column)
}

func (s *SQLiteStore) AddGeometryColumn(ctx context.Context, table, column, geometryType string) error {
	_, err := s.db.ExecContext(ctx,
		`SELECT AddGeometryColumn(?, ?, 4326, ?, 'XY')`,
		table, column, geometryType,
	)
	return eris.Wrapf(err, "sqlite: add geometry column %s.%s (is SpatiaLite loaded?)", table, column)
}

func (s *SQLiteStore) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`,
		table,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: primary keys of %s", table)
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan primary key")
		}
		pks = append(pks, name)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "sqlite: primary keys of %s", table)
	}
	if len(pks) == 0 {
		// No declared key: SQLite tables still have an implicit rowid.
		pks = []string{"rowid"}
	}
	return pks, nil
}

func (s *SQLiteStore) Count(ctx context.Context, table string) (int, error) {
	return s.CountWhere(ctx, table, "")
}

func (s *SQLiteStore) CountWhere(ctx context.Context, table, where string) (int, error) {
	q := fmt.Sprintf(`SELECT count(*) FROM %s`, QuoteIdent(table))
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "sqlite: count rows in %s", table)
	}
	return n, nil
}

func (s *SQLiteStore) Rows(ctx context.Context, table, where string) (Cursor, error) {
	pks, err := s.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}

	sel := "*"
	if len(pks) == 1 && pks[0] == "rowid" {
		sel = "rowid, *"
	}
	q := fmt.Sprintf(`SELECT %s FROM %s`, sel, QuoteIdent(table))
	if where != "" {
		q += " WHERE " + where
	}

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: scan %s", table)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, eris.Wrapf(err, "sqlite: columns of %s", table)
	}
	return &sqlCursor{rows: rows, cols: cols, pks: pks}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, table string, key Key) (Row, error) {
	pks, err := s.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(key) != len(pks) {
		return nil, eris.Errorf("sqlite: key has %d values, table %s has %d key columns", len(key), table, len(pks))
	}

	sel := "*"
	if len(pks) == 1 && pks[0] == "rowid" {
		sel = "rowid, *"
	}
	preds := make([]string, len(pks))
	for i, pk := range pks {
		preds[i] = QuoteIdent(pk) + " = ?"
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`,
		sel, QuoteIdent(table), strings.Join(preds, " AND "))

	rows, err := s.db.QueryContext(ctx, q, []any(key)...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get row from %s", table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: columns of %s", table)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, eris.Wrapf(err, "sqlite: get row from %s", table)
		}
		return nil, ErrNotFound
	}
	return scanRow(rows, cols)
}

func (s *SQLiteStore) Update(ctx context.Context, table string, key Key, fields Row, conversions map[string]string) error {
	pks, err := s.PrimaryKeys(ctx, table)
	if err != nil {
		return err
	}
	if len(key) != len(pks) {
		return eris.Errorf("sqlite: key has %d values, table %s has %d key columns", len(key), table, len(pks))
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+len(key))
	for _, col := range cols {
		if expr, ok := conversions[col]; ok {
			sets = append(sets, QuoteIdent(col)+" = "+expr)
		} else {
			sets = append(sets, QuoteIdent(col)+" = ?")
		}
		args = append(args, fields[col])
	}

	preds := make([]string, len(pks))
	for i, pk := range pks {
		preds[i] = QuoteIdent(pk) + " = ?"
	}
	args = append(args, []any(key)...)

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE %s`,
		QuoteIdent(table), strings.Join(sets, ", "), strings.Join(preds, " AND "))

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update row in %s", table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GeomFromTextExpr() string {
	return "GeomFromText(?, 4326)"
}

// sqlCursor adapts *sql.Rows to Cursor, extracting the key from each row.
type sqlCursor struct {
	rows *sql.Rows
	cols []string
	pks  []string

	current Row
	err     error
}

func (c *sqlCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	row, err := scanRow(c.rows, c.cols)
	if err != nil {
		c.err = err
		return false
	}
	c.current = row
	return true
}

func (c *sqlCursor) Pair() (Key, Row) {
	key := make(Key, len(c.pks))
	for i, pk := range c.pks {
		key[i] = c.current[pk]
	}
	return key, c.current
}

func (c *sqlCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return eris.Wrap(c.rows.Err(), "table: iterate rows")
}

func (c *sqlCursor) Close() error {
	return c.rows.Close()
}

func scanRow(rows *sql.Rows, cols []string) (Row, error) {
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, eris.Wrap(err, "table: scan row")
	}

	row := make(Row, len(cols))
	for i, col := range cols {
		v := vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[col] = v
	}
	return row, nil
}
