package importer

import "fmt"

// PreviewResult is what a dry run reports back to the dashboard.
type PreviewResult struct {
	Preview   []interface{} `json:"preview"`
	Errors    []string      `json:"errors"`
	TotalRows int           `json:"total_rows"`
}

// Preview validates up to PreviewRows records with check and never writes.
// TotalRows counts every data row, not only the previewed ones.
func Preview(records []Record, check func(Record) (interface{}, []string)) PreviewResult {
	res := PreviewResult{
		Preview:   []interface{}{},
		Errors:    []string{},
		TotalRows: len(records),
	}
	for i, rec := range records {
		if i == PreviewRows {
			break
		}
		draft, problems := check(rec)
		res.Preview = append(res.Preview, draft)
		for _, p := range problems {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", rec.Row, p))
		}
	}
	return res
}
