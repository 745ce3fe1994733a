package engine

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/geocode-cli/internal/table"
	"github.com/sells-group/geocode-cli/pkg/geocode"
)

// DefaultTemplate is the query template used when none is configured.
const DefaultTemplate = "{location}"

// Options configures a geocoding run.
type Options struct {
	Template string        // query template; default DefaultTemplate
	Delay    time.Duration // minimum gap between provider calls
	Mode     Mode
	Fields   Fields
	Force    bool // reprocess rows that are already geocoded
	Query    geocode.QueryOptions
}

func (o Options) withDefaults() Options {
	if o.Template == "" {
		o.Template = DefaultTemplate
	}
	o.Fields = o.Fields.WithDefaults()
	return o
}

// Outcome is one row's result in streaming mode. On success Row carries the
// encoded updates merged in; on failure Row is the original row and Err says
// why (nil when the provider simply found nothing).
type Outcome struct {
	Key   table.Key
	Row   table.Row
	OK    bool
	Query string // rendered query; empty if rendering failed
	Err   error
}

// Failure identifies a row a table-mode run could not geocode.
type Failure struct {
	Key   table.Key
	Query string
	Err   error
}

// Report summarizes a table-mode run.
type Report struct {
	Attempted int
	Succeeded int
	Failures  []Failure
}

// GeocodeTable geocodes every ungeocoded row of the table in sequence,
// writing each success back immediately. Rows that fail stay NULL and are
// picked up again by the next run; failures are collected in the report, not
// returned as errors. Store write failures and context cancellation abort the
// run between rows.
//
// The provider is always wrapped in a throttle, even with zero delay.
func GeocodeTable(ctx context.Context, store table.Store, tbl string, provider geocode.Provider, opts Options) (*Report, error) {
	opts = opts.withDefaults()

	log := zap.L().With(
		zap.String("run_id", uuid.New().String()),
		zap.String("table", tbl),
		zap.String("provider", provider.Name()),
		zap.String("mode", opts.Mode.String()),
	)

	pks, err := store.PrimaryKeys(ctx, tbl)
	if err != nil {
		return nil, err
	}

	cursor, todo, err := SelectUngeocoded(ctx, store, tbl, opts.Mode, opts.Fields, opts.Force)
	if err != nil {
		return nil, err
	}
	defer cursor.Close() //nolint:errcheck

	var conversions map[string]string
	if opts.Mode == ModeSpatial {
		conversions = map[string]string{opts.Fields.Geometry: store.GeomFromTextExpr()}
	}

	throttled := geocode.Throttle(provider, opts.Delay)
	log.Info("geocoding rows", zap.Int("todo", todo))

	report := &Report{}
	for cursor.Next() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		_, row := cursor.Pair()
		// The key is recomputed from the row's own key fields at iteration
		// time; selection APIs differ in what they hand back.
		key := keyFromRow(row, pks)
		report.Attempted++

		query, result, rowErr := geocodeRow(ctx, throttled, opts.Template, row, opts.Query)
		if rowErr != nil {
			if ctxDone(rowErr) {
				return report, rowErr
			}
			log.Warn("row failed",
				zap.String("key", key.String()),
				zap.String("query", query),
				zap.Error(rowErr),
			)
			report.Failures = append(report.Failures, Failure{Key: key, Query: query, Err: rowErr})
			continue
		}
		if result == nil {
			log.Info("no result for row",
				zap.String("key", key.String()),
				zap.String("query", query),
			)
			report.Failures = append(report.Failures, Failure{Key: key, Query: query})
			continue
		}

		updates, err := Encode(result, opts.Mode, opts.Fields, throttled.Name())
		if err != nil {
			return report, err
		}
		if err := store.Update(ctx, tbl, key, updates, conversions); err != nil {
			return report, err
		}
		report.Succeeded++

		if report.Attempted%100 == 0 {
			log.Info("progress",
				zap.Int("attempted", report.Attempted),
				zap.Int("todo", todo),
				zap.Int("succeeded", report.Succeeded),
			)
		}
	}
	if err := cursor.Err(); err != nil {
		return report, err
	}

	log.Info("run complete",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failures)),
	)
	return report, nil
}

// GeocodeList geocodes an arbitrary sequence of (key, row) pairs, yielding
// one Outcome per input row in input order. The returned sequence is lazy and
// single-pass, performs no write-back, and applies no throttling of its own;
// pass a Throttle-wrapped provider if rate limiting is wanted.
func GeocodeList(ctx context.Context, rows iter.Seq2[table.Key, table.Row], provider geocode.Provider, opts Options) iter.Seq[Outcome] {
	opts = opts.withDefaults()

	return func(yield func(Outcome) bool) {
		for key, row := range rows {
			query, result, err := geocodeRow(ctx, provider, opts.Template, row, opts.Query)

			out := Outcome{Key: key, Row: row, Query: query, Err: err}
			if err == nil && result != nil {
				updates, encErr := Encode(result, opts.Mode, opts.Fields, provider.Name())
				if encErr != nil {
					out.Err = encErr
				} else {
					for col, v := range updates {
						row[col] = v
					}
					out.OK = true
				}
			}

			if !yield(out) {
				return
			}
			if ctxDone(out.Err) {
				return
			}
		}
	}
}

// geocodeRow renders the query and invokes the provider for one row.
func geocodeRow(ctx context.Context, provider geocode.Provider, template string, row table.Row, qopts geocode.QueryOptions) (string, *geocode.Result, error) {
	query, err := RenderQuery(template, row)
	if err != nil {
		return "", nil, err
	}
	result, err := provider.Geocode(ctx, query, qopts)
	if err != nil {
		return query, nil, err
	}
	return query, result, nil
}

func keyFromRow(row table.Row, pks []string) table.Key {
	key := make(table.Key, len(pks))
	for i, pk := range pks {
		key[i] = row[pk]
	}
	return key
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
