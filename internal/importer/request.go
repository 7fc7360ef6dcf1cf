package importer

// Request is the JSON body of the preview and import endpoints.
type Request struct {
	CSVData      string       `json:"csv_data" validate:"required"`
	FieldMapping FieldMapping `json:"field_mapping" validate:"required,min=1"`
	HasHeader    *bool        `json:"has_header"`
	SkipErrors   bool         `json:"skip_errors"`
}

// Header reports whether the first data line is a header; true when omitted.
func (r Request) Header() bool {
	return r.HasHeader == nil || *r.HasHeader
}

// Records parses the CSV text and maps it for entity.
func (r Request) Records(entity Entity) ([]Record, error) {
	if err := r.FieldMapping.Check(entity); err != nil {
		return nil, err
	}
	return r.FieldMapping.Records(Parse(r.CSVData, r.Header())), nil
}
