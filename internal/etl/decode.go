package etl

import "strings"

// ── Fixed-width decoder ────────────────────────────────────
// Pure transformation from decoded export text to Records. Charset
// decoding, archive handling, and all other I/O stay in the sources so
// this parses in-memory strings only.

// The mainframe export maps punctuation used inside name/address free
// text to non-standard code points. The substitution table was derived
// empirically from ILSOS exports; if the authority ever changes its
// export encoding, revalidate these mappings. NUL bytes are deleted
// outright rather than substituted.
var lineCleaner = strings.NewReplacer(
	"İ", "[", // İ
	"¨", "]", // ¨
	"¬", "^", // ¬
	"\x00", "",
)

// Decode parses fixed-width export text into one Record per data line.
//
// The first and last lines are mainframe job header/trailer and never
// data; fewer than two lines is a legitimate empty dataset, not an
// error. Records preserve input line order so repeated runs produce
// diffable output.
func Decode(text string, schema *Schema) []Record {
	lines := splitLines(text)
	if len(lines) <= 2 {
		return nil
	}
	lines = lines[1 : len(lines)-1]

	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		// Substitution happens before slicing so a legacy glyph inside a
		// field range lands in the output as its ASCII equivalent.
		clean := []rune(lineCleaner.Replace(line))

		data := make(map[string]string, len(schema.Fields))
		for _, f := range schema.Fields {
			data[f.Name] = sliceField(clean, f)
		}
		records = append(records, Record{Data: data})
	}
	return records
}

// sliceField extracts a field's character range, trimmed. Lines shorter
// than the schema width yield whatever characters are available: legacy
// exports right-trim blank trailing fields, so a ragged line is a
// tolerance case, not an error.
func sliceField(line []rune, f Field) string {
	start := min(f.Start, len(line))
	end := min(f.Start+f.Length, len(line))
	return strings.TrimSpace(string(line[start:end]))
}

// splitLines trims outer whitespace and splits on newlines, stripping a
// trailing carriage return per line for CRLF exports.
func splitLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
