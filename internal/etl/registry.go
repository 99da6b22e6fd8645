package etl

import (
	"errors"
	"fmt"
	"sort"
)

// ── Schema registry ────────────────────────────────────────
// One explicit layout per dataset identifier. The offsets encode
// institutional knowledge of an unversioned legacy format, so each table
// is kept fully spelled out and auditable against the ILSOS format
// documentation. Several datasets share a leading file_number key, but
// the layouts are deliberately independent: the formats are allowed to
// diverge over time.

// ErrUnknownDataset is returned when an identifier has no registered schema.
var ErrUnknownDataset = errors.New("unknown dataset")

// Corporation datasets.
var (
	corpMasterSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"incorp_date", 8, 8},
		{"extended_date", 16, 8},
		{"state_code", 24, 2},
		{"corp_intent", 26, 3},
		{"status", 29, 2},
		{"type_corp", 31, 1},
		{"trans_date", 32, 8},
		{"pres_name_addr", 40, 60},
		{"sec_name_addr", 100, 60},
	}}

	corpNameSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"name", 8, 189},
	}}

	corpAgentSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"agent_name", 8, 60},
		{"agent_street", 68, 45},
		{"agent_city", 113, 30},
		{"agent_change_date", 143, 8},
		{"agent_code", 151, 1},
		{"agent_zip", 152, 9},
		{"agent_county_code", 161, 3},
	}}

	corpAssumedOldSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"cancel_date", 8, 8},
		{"assumed_curr_date", 16, 8},
		{"assumed_old_ind", 24, 1},
		{"assumed_old_date", 25, 8},
		{"assumed_old_name", 33, 189},
	}}
)

// LLC datasets.
var (
	llcMasterSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"purpose_code", 8, 6},
		{"status_code", 14, 2},
		{"status_date", 16, 8},
		{"organized_date", 24, 8},
		{"dissolution_date", 32, 8},
		{"management_type", 40, 1},
		{"juris_organized", 41, 2},
		{"records_off_street", 43, 45},
		{"records_off_city", 88, 30},
		{"records_off_zip", 118, 9},
		{"records_off_juris", 127, 2},
		{"assumed_in", 129, 1},
		{"old_ind", 130, 1},
		{"provisions_ind", 131, 1},
		{"opt_ind", 132, 1},
		{"series_ind", 133, 1},
		{"uap_ind", 134, 1},
		{"l3c_ind", 135, 1},
	}}

	llcNameSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"name", 8, 120},
	}}

	llcAgentSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"agent_code", 8, 1},
		{"agent_name", 9, 60},
		{"agent_street", 69, 45},
		{"agent_city", 114, 30},
		{"agent_zip", 144, 9},
		{"agent_county_code", 153, 3},
		{"agent_change_date", 156, 8},
	}}

	llcOldNameSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"old_date_filed", 8, 8},
		{"llc_name", 16, 120},
		{"series_nbr", 136, 3},
	}}

	llcManagerSchema = &Schema{Fields: []Field{
		{"file_number", 0, 8},
		{"mm_name", 8, 60},
		{"mm_street", 68, 45},
		{"mm_city", 113, 30},
		{"mm_juris", 143, 2},
		{"mm_zip", 145, 9},
		{"mm_file_date", 154, 8},
		{"mm_type_code", 162, 1},
	}}
)

var schemas = map[string]*Schema{
	"cdxallmst": corpMasterSchema,
	"cdxallnam": corpNameSchema,
	"cdxallagt": corpAgentSchema,
	"cdxallaon": corpAssumedOldSchema,
	"llcallmst": llcMasterSchema,
	"llcallnam": llcNameSchema,
	"llcallagt": llcAgentSchema,
	"llcallold": llcOldNameSchema,
	"llcallmgr": llcManagerSchema,
}

// LookupSchema returns the schema registered for a dataset identifier.
// Lookup is exact-match; an unrecognized identifier fails loudly rather
// than defaulting.
func LookupSchema(id string) (*Schema, error) {
	s, ok := schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
	}
	return s, nil
}

// SchemaIDs returns all registered dataset identifiers, sorted.
func SchemaIDs() []string {
	ids := make([]string, 0, len(schemas))
	for id := range schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
