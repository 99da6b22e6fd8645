package etl

import "fmt"

// ── Record ─────────────────────────────────────────────────
// Common intermediate data format.
// The decoder emits Records, destinations consume Records.

// Field describes a single fixed-width column: the half-open character
// range [Start, Start+Length) it occupies on a record line.
type Field struct {
	Name   string `json:"name"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
}

// Schema describes the fixed-width layout of one dataset's export file.
// Field order is declaration order and drives CSV column order.
type Schema struct {
	Fields []Field `json:"fields"`
}

// FieldNames returns an ordered list of field names.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Width returns the physical record width implied by the last field.
func (s *Schema) Width() int {
	if len(s.Fields) == 0 {
		return 0
	}
	last := s.Fields[len(s.Fields)-1]
	return last.Start + last.Length
}

// Validate checks the layout invariants: positive lengths, fields sorted
// by start offset, ranges non-overlapping.
func (s *Schema) Validate() error {
	end := 0
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("field at offset %d has no name", f.Start)
		}
		if f.Length <= 0 {
			return fmt.Errorf("field %q has non-positive length %d", f.Name, f.Length)
		}
		if f.Start < end {
			return fmt.Errorf("field %q starts at %d, overlapping the previous field ending at %d", f.Name, f.Start, end)
		}
		end = f.Start + f.Length
	}
	return nil
}

// Record is a single row of data flowing through the pipeline.
// Values stay verbatim trimmed strings: the source format mixes ambiguous
// date encodings, so no type coercion happens here. Callers wanting dates
// or numbers parse them downstream.
type Record struct {
	Data map[string]string `json:"data"`
}
