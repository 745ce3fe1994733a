package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geocode-cli/internal/table"
)

// TableProvider resolves queries by primary-key lookup against a reference
// table whose geometry column holds a GeoJSON Point. It exists for tests and
// offline runs; don't use it for anything else.
type TableProvider struct {
	store      table.Store
	table      string
	labelField string
}

// NewTableProvider creates a lookup provider over the given reference table.
func NewTableProvider(store table.Store, tbl, labelField string) *TableProvider {
	if labelField == "" {
		labelField = "addr:full"
	}
	return &TableProvider{store: store, table: tbl, labelField: labelField}
}

// Name implements Provider.
func (p *TableProvider) Name() string { return "table" }

// Geocode implements Provider. The query is used verbatim as the row key.
func (p *TableProvider) Geocode(ctx context.Context, query string, _ QueryOptions) (*Result, error) {
	row, err := p.store.Get(ctx, p.table, table.Key{query})
	if errors.Is(err, table.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "geocode: table lookup")
	}

	geomText, _ := row["geometry"].(string)
	var geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	}
	if err := json.Unmarshal([]byte(geomText), &geometry); err != nil {
		return nil, eris.Wrap(err, "geocode: table parse geometry")
	}
	if len(geometry.Coordinates) < 2 {
		return nil, nil
	}

	return &Result{
		Latitude:  geometry.Coordinates[1],
		Longitude: geometry.Coordinates[0],
		Label:     fmt.Sprint(row[p.labelField]),
		Raw:       json.RawMessage(geomText),
	}, nil
}
