package engine

import (
	"context"
	"fmt"

	"github.com/sells-group/geocode-cli/internal/table"
)

// ungeocodedWhere is the negation of "already geocoded" for the mode:
// coordinates mode wants either coordinate NULL, geometry modes want the
// geometry column NULL.
func ungeocodedWhere(mode Mode, fields Fields) string {
	fields = fields.WithDefaults()
	if mode == ModeCoordinates {
		return fmt.Sprintf("%s IS NULL OR %s IS NULL",
			table.QuoteIdent(fields.Latitude), table.QuoteIdent(fields.Longitude))
	}
	return table.QuoteIdent(fields.Geometry) + " IS NULL"
}

// SelectUngeocoded returns a lazy cursor over rows still lacking geocoded
// output under the given mode, and their count computed via a count query so
// callers can show progress without buffering rows. With force, every row in
// the table is returned.
//
// The predicate matches the active mode only; running it against a table
// populated under a different mode is a caller error, not detected here.
func SelectUngeocoded(ctx context.Context, store table.Store, tbl string, mode Mode, fields Fields, force bool) (table.Cursor, int, error) {
	where := ""
	if !force {
		where = ungeocodedWhere(mode, fields)
	}

	count, err := store.CountWhere(ctx, tbl, where)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := store.Rows(ctx, tbl, where)
	if err != nil {
		return nil, 0, err
	}
	return cursor, count, nil
}
