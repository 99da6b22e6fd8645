package etl

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// ── Destination ────────────────────────────────────────────
// A Destination writes one dataset's records to a target. The only
// shipped destination is flat CSV files; registry data is not stored or
// indexed anywhere else.

// Destination writes records for a dataset and reports how many rows
// landed.
type Destination interface {
	Write(ctx context.Context, id string, schema *Schema, records []Record) (int, error)
}

// CSVWriter implements Destination as one {id}.csv file per dataset in
// Dir. The header row is the schema's field names in declaration order;
// values are written verbatim under standard CSV escaping. Empty and
// absent values are indistinguishable in the output.
type CSVWriter struct {
	Dir string
}

func (w *CSVWriter) Write(ctx context.Context, id string, schema *Schema, records []Record) (int, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(w.Dir, id+".csv")
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(schema.FieldNames()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	written := 0
	row := make([]string, len(schema.Fields))
	for i, rec := range records {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		for j, field := range schema.Fields {
			row[j] = rec.Data[field.Name]
		}
		if err := cw.Write(row); err != nil {
			return written, fmt.Errorf("write row %d: %w", i, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", path, err)
	}
	return written, nil
}
