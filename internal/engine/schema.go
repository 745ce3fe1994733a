package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/geocode-cli/internal/table"
)

// EnsureSchema adds the active mode's output columns and the provenance
// column if they are missing. Adding columns is idempotent; existing columns
// and their data are never touched.
func EnsureSchema(ctx context.Context, store table.Store, tbl string, mode Mode, fields Fields) error {
	fields = fields.WithDefaults()
	log := zap.L().With(zap.String("table", tbl))

	switch mode {
	case ModeCoordinates:
		for _, col := range []string{fields.Latitude, fields.Longitude} {
			ok, err := store.HasColumn(ctx, tbl, col)
			if err != nil {
				return err
			}
			if !ok {
				log.Info("adding column", zap.String("column", col))
				if err := store.AddColumn(ctx, tbl, col, table.ColumnFloat); err != nil {
					return err
				}
			}
		}

	case ModeGeoJSON, ModeSpatial:
		ok, err := store.HasColumn(ctx, tbl, fields.Geometry)
		if err != nil {
			return err
		}
		if !ok {
			log.Info("adding geometry column", zap.String("column", fields.Geometry))
			if mode == ModeSpatial {
				err = store.AddGeometryColumn(ctx, tbl, fields.Geometry, "POINT")
			} else {
				err = store.AddColumn(ctx, tbl, fields.Geometry, table.ColumnText)
			}
			if err != nil {
				return err
			}
		}
	}

	ok, err := store.HasColumn(ctx, tbl, fields.Provenance)
	if err != nil {
		return err
	}
	if !ok {
		log.Info("adding provenance column", zap.String("column", fields.Provenance))
		if err := store.AddColumn(ctx, tbl, fields.Provenance, table.ColumnText); err != nil {
			return err
		}
	}
	return nil
}
