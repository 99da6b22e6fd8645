package etl

import "fmt"

// Dataset identifies one published ILSOS bulk-data export. The ID doubles
// as the schema registry key and the output CSV base name.
type Dataset struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	URL  string `json:"url"`
}

// Datasets is the fixed table of supported exports, 1:1 with the schema
// registry.
var Datasets = []Dataset{
	{
		Name: "Illinois Corporations Bulk Data - Master",
		ID:   "cdxallmst",
		URL:  "https://www.ilsos.gov/data/bs/cdxallmst.zip",
	},
	{
		Name: "Illinois Corporations Bulk Data - Company Name",
		ID:   "cdxallnam",
		URL:  "https://www.ilsos.gov/data/bs/cdxallnam.zip",
	},
	{
		Name: "Illinois Corporations Bulk Data - Agent",
		ID:   "cdxallagt",
		URL:  "https://www.ilsos.gov/data/bs/cdxallagt.zip",
	},
	{
		Name: "Illinois Corporations Bulk Data - Assumed/Old Names",
		ID:   "cdxallaon",
		URL:  "https://www.ilsos.gov/data/bs/cdxallaon.zip",
	},
	{
		Name: "Illinois LLC Bulk Data - Master",
		ID:   "llcallmst",
		URL:  "https://www.ilsos.gov/data/bs/llcallmst.zip",
	},
	{
		Name: "Illinois LLC Bulk Data - Company Name",
		ID:   "llcallnam",
		URL:  "https://www.ilsos.gov/data/bs/llcallnam.zip",
	},
	{
		Name: "Illinois LLC Bulk Data - Agent",
		ID:   "llcallagt",
		URL:  "https://www.ilsos.gov/data/bs/llcallagt.zip",
	},
	{
		Name: "Illinois LLC Bulk Data - Old Names",
		ID:   "llcallold",
		URL:  "https://www.ilsos.gov/data/bs/llcallold.zip",
	},
	{
		Name: "Illinois LLC Bulk Data - Managers",
		ID:   "llcallmgr",
		URL:  "https://www.ilsos.gov/data/bs/llcallmgr.zip",
	},
}

// DatasetByID returns the descriptor for a dataset identifier.
func DatasetByID(id string) (Dataset, error) {
	for _, ds := range Datasets {
		if ds.ID == id {
			return ds, nil
		}
	}
	return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownDataset, id)
}

// SelectDatasets resolves a list of identifiers to descriptors, failing
// on the first unknown id. An empty list selects every dataset.
func SelectDatasets(ids []string) ([]Dataset, error) {
	if len(ids) == 0 {
		return Datasets, nil
	}
	out := make([]Dataset, 0, len(ids))
	for _, id := range ids {
		ds, err := DatasetByID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}
