package etl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landlordmapper/ilsos-downloader/internal/etl"
)

func TestSchemas_LayoutInvariants(t *testing.T) {
	ids := etl.SchemaIDs()
	require.Len(t, ids, 9)

	for _, id := range ids {
		schema, err := etl.LookupSchema(id)
		require.NoError(t, err, id)
		require.NotEmpty(t, schema.Fields, id)

		assert.NoError(t, schema.Validate(), "layout invariants violated for %s", id)
		assert.Equal(t, 0, schema.Fields[0].Start, "%s must start at offset 0", id)
		assert.Positive(t, schema.Width(), id)
	}
}

func TestLookupSchema_UnknownDataset(t *testing.T) {
	_, err := etl.LookupSchema("cdxbogus")

	require.Error(t, err)
	assert.ErrorIs(t, err, etl.ErrUnknownDataset)
	assert.Contains(t, err.Error(), "cdxbogus")
}

func TestSchemaValidate_RejectsBadLayouts(t *testing.T) {
	overlapping := &etl.Schema{Fields: []etl.Field{
		{Name: "a", Start: 0, Length: 5},
		{Name: "b", Start: 3, Length: 2},
	}}
	assert.Error(t, overlapping.Validate())

	unsorted := &etl.Schema{Fields: []etl.Field{
		{Name: "a", Start: 10, Length: 5},
		{Name: "b", Start: 0, Length: 5},
	}}
	assert.Error(t, unsorted.Validate())

	zeroLength := &etl.Schema{Fields: []etl.Field{
		{Name: "a", Start: 0, Length: 0},
	}}
	assert.Error(t, zeroLength.Validate())
}

func TestDatasets_MatchSchemaRegistry(t *testing.T) {
	require.Len(t, etl.Datasets, 9)

	seen := make(map[string]bool)
	for _, ds := range etl.Datasets {
		assert.False(t, seen[ds.ID], "duplicate dataset id %s", ds.ID)
		seen[ds.ID] = true

		_, err := etl.LookupSchema(ds.ID)
		assert.NoError(t, err, "dataset %s has no schema", ds.ID)
		assert.NotEmpty(t, ds.Name, ds.ID)
		assert.Contains(t, ds.URL, ds.ID+".zip", ds.ID)
	}

	// And the other direction: every schema has a dataset.
	for _, id := range etl.SchemaIDs() {
		_, err := etl.DatasetByID(id)
		assert.NoError(t, err, "schema %s has no dataset entry", id)
	}
}

func TestSelectDatasets(t *testing.T) {
	all, err := etl.SelectDatasets(nil)
	require.NoError(t, err)
	assert.Len(t, all, 9)

	subset, err := etl.SelectDatasets([]string{"llcallmgr", "cdxallmst"})
	require.NoError(t, err)
	require.Len(t, subset, 2)
	assert.Equal(t, "llcallmgr", subset[0].ID)
	assert.Equal(t, "cdxallmst", subset[1].ID)

	_, err = etl.SelectDatasets([]string{"cdxallmst", "nope"})
	assert.ErrorIs(t, err, etl.ErrUnknownDataset)
}

func TestSchema_FieldNamesOrder(t *testing.T) {
	schema, err := etl.LookupSchema("cdxallagt")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"file_number", "agent_name", "agent_street", "agent_city",
		"agent_change_date", "agent_code", "agent_zip", "agent_county_code",
	}, schema.FieldNames())
}
