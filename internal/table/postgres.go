package table

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgx. SpatialGeometry maps to a PostGIS
// geometry(Point,4326) column.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to the given database URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// splitTable separates an optionally schema-qualified table name.
func splitTable(table string) (schema, name string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "public", table
}

// quoteTable quotes an optionally schema-qualified table name.
func quoteTable(table string) string {
	schema, name := splitTable(table)
	return QuoteIdent(schema) + "." + QuoteIdent(name)
}

func (s *PostgresStore) HasColumn(ctx context.Context, table, column string) (bool, error) {
	schema, name := splitTable(table)
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.columns
		 WHERE table_schema = $1 AND table_name = $2 AND column_name = $3`,
		schema, name, column,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: inspect %s", table)
	}
	return n > 0, nil
}

func (s *PostgresStore) AddColumn(ctx context.Context, table, column string, typ ColumnType) error {
	sqlType := "TEXT"
	if typ == ColumnFloat {
		sqlType = "DOUBLE PRECISION"
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s`,
		quoteTable(table), QuoteIdent(column), sqlType,
	))
	return eris.Wrapf(err, "postgres: add column %s.%s", table, column)
}

func (s *PostgresStore) AddGeometryColumn(ctx context.Context, table, column, geometryType string) error {
	// PostGIS type names are capitalized (Point, not POINT).
	geomType := strings.ToUpper(geometryType[:1]) + strings.ToLower(geometryType[1:])
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s geometry(%s,4326)`,
		quoteTable(table), QuoteIdent(column), geomType,
	))
	return eris.Wrapf(err, "postgres: add geometry column %s.%s (is PostGIS installed?)", table, column)
}

func (s *PostgresStore) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.attname
		 FROM pg_index i
		 JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		 WHERE i.indrelid = $1::regclass AND i.indisprimary
		 ORDER BY array_position(i.indkey, a.attnum)`,
		table,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: primary keys of %s", table)
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan primary key")
		}
		pks = append(pks, name)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "postgres: primary keys of %s", table)
	}
	if len(pks) == 0 {
		return nil, eris.Errorf("postgres: table %s has no primary key", table)
	}
	return pks, nil
}

func (s *PostgresStore) Count(ctx context.Context, table string) (int, error) {
	return s.CountWhere(ctx, table, "")
}

func (s *PostgresStore) CountWhere(ctx context.Context, table, where string) (int, error) {
	q := fmt.Sprintf(`SELECT count(*) FROM %s`, quoteTable(table))
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := s.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "postgres: count rows in %s", table)
	}
	return n, nil
}

func (s *PostgresStore) Rows(ctx context.Context, table, where string) (Cursor, error) {
	pks, err := s.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT * FROM %s`, quoteTable(table))
	if where != "" {
		q += " WHERE " + where
	}
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: scan %s", table)
	}
	return &pgxCursor{rows: rows, pks: pks}, nil
}

func (s *PostgresStore) Get(ctx context.Context, table string, key Key) (Row, error) {
	pks, err := s.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(key) != len(pks) {
		return nil, eris.Errorf("postgres: key has %d values, table %s has %d key columns", len(key), table, len(pks))
	}

	preds := make([]string, len(pks))
	for i, pk := range pks {
		preds[i] = fmt.Sprintf("%s = $%d", QuoteIdent(pk), i+1)
	}
	q := fmt.Sprintf(`SELECT * FROM %s WHERE %s`,
		quoteTable(table), strings.Join(preds, " AND "))

	rows, err := s.pool.Query(ctx, q, []any(key)...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get row from %s", table)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, eris.Wrapf(err, "postgres: get row from %s", table)
		}
		return nil, ErrNotFound
	}
	return scanPgxRow(rows)
}

func (s *PostgresStore) Update(ctx context.Context, table string, key Key, fields Row, conversions map[string]string) error {
	pks, err := s.PrimaryKeys(ctx, table)
	if err != nil {
		return err
	}
	if len(key) != len(pks) {
		return eris.Errorf("postgres: key has %d values, table %s has %d key columns", len(key), table, len(pks))
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+len(key))
	for i, col := range cols {
		placeholder := fmt.Sprintf("$%d", i+1)
		if expr, ok := conversions[col]; ok {
			sets = append(sets, QuoteIdent(col)+" = "+strings.Replace(expr, "?", placeholder, 1))
		} else {
			sets = append(sets, QuoteIdent(col)+" = "+placeholder)
		}
		args = append(args, fields[col])
	}

	preds := make([]string, len(pks))
	for i, pk := range pks {
		preds[i] = fmt.Sprintf("%s = $%d", QuoteIdent(pk), len(cols)+i+1)
	}
	args = append(args, []any(key)...)

	q := fmt.Sprintf(`UPDATE %s SET %s WHERE %s`,
		quoteTable(table), strings.Join(sets, ", "), strings.Join(preds, " AND "))

	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update row in %s", table)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GeomFromTextExpr() string {
	return "ST_GeomFromText(?, 4326)"
}

// pgxCursor adapts pgx.Rows to Cursor.
type pgxCursor struct {
	rows pgx.Rows
	pks  []string

	current Row
	err     error
}

func (c *pgxCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	row, err := scanPgxRow(c.rows)
	if err != nil {
		c.err = err
		return false
	}
	c.current = row
	return true
}

func (c *pgxCursor) Pair() (Key, Row) {
	key := make(Key, len(c.pks))
	for i, pk := range c.pks {
		key[i] = c.current[pk]
	}
	return key, c.current
}

func (c *pgxCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return eris.Wrap(c.rows.Err(), "table: iterate rows")
}

func (c *pgxCursor) Close() error {
	c.rows.Close()
	return nil
}

func scanPgxRow(rows pgx.Rows) (Row, error) {
	vals, err := rows.Values()
	if err != nil {
		return nil, eris.Wrap(err, "table: scan row")
	}
	fields := rows.FieldDescriptions()

	row := make(Row, len(fields))
	for i, fd := range fields {
		v := vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[fd.Name] = v
	}
	return row, nil
}
