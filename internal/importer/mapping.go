package importer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"rentdesk_backend/pkg/utils/apperror"
)

// ColumnMapping assigns one CSV column (zero based) to a target field.
type ColumnMapping struct {
	Column int   `json:"column"`
	Field  Field `json:"field"`
}

// FieldMapping is an ordered list of column assignments.
//
// On the wire it may be an object keyed by column index
// ({"0":"name","1":"type"}), an array of field names where the position is
// the column and "" leaves the column unmapped, or an array of
// {"column":0,"field":"name"} objects.
type FieldMapping []ColumnMapping

func (m *FieldMapping) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*m = nil
		return nil
	}

	var out FieldMapping
	switch {
	case strings.HasPrefix(trimmed, "{"):
		var byIndex map[string]Field
		if err := json.Unmarshal(data, &byIndex); err != nil {
			return errors.Wrap(err, "field_mapping")
		}
		for key, field := range byIndex {
			col, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil {
				return errors.Errorf("field_mapping: column key %q is not a number", key)
			}
			out = append(out, ColumnMapping{Column: col, Field: field})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })

	case strings.HasPrefix(trimmed, "["):
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return errors.Wrap(err, "field_mapping")
		}
		for i, item := range items {
			var name Field
			if err := json.Unmarshal(item, &name); err == nil {
				out = append(out, ColumnMapping{Column: i, Field: name})
				continue
			}
			var cm ColumnMapping
			if err := json.Unmarshal(item, &cm); err != nil {
				return errors.Wrapf(err, "field_mapping[%d]", i)
			}
			out = append(out, cm)
		}

	default:
		return errors.New("field_mapping must be an object or an array")
	}

	*m = out.withoutEmpty()
	return nil
}

func (m FieldMapping) withoutEmpty() FieldMapping {
	out := make(FieldMapping, 0, len(m))
	for _, cm := range m {
		cm.Field = Field(strings.TrimSpace(string(cm.Field)))
		if cm.Field != "" {
			out = append(out, cm)
		}
	}
	return out
}

// Check rejects negative columns and fields the entity does not have.
func (m FieldMapping) Check(entity Entity) error {
	for _, cm := range m {
		if cm.Column < 0 {
			return apperror.BadRequest(fmt.Sprintf("Invalid column %d for field '%s'", cm.Column, cm.Field), nil)
		}
		if !entity.Allows(cm.Field) {
			return apperror.BadRequest(fmt.Sprintf("Unknown field '%s' mapped from column %d", cm.Field, cm.Column), nil)
		}
	}
	return nil
}

// Record is one mapped CSV row. Row is 1-based over the data rows.
type Record struct {
	Row    int
	Values map[Field]string
}

func (r Record) Get(f Field) string {
	return r.Values[f]
}

func (r Record) Has(f Field) bool {
	_, ok := r.Values[f]
	return ok
}

var requiredMarker = regexp.MustCompile(`(?i)\s*\[REQUIRED\]\s*`)

// CleanValue trims a cell, strips surrounding quotes and drops a [REQUIRED]
// marker left over from the template header.
func CleanValue(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.Trim(v, `"'`)
	v = requiredMarker.ReplaceAllString(v, "")
	return strings.TrimSpace(v)
}

// Apply maps one parsed row. Columns beyond the row length and empty cells
// are left out of the record.
func (m FieldMapping) Apply(row []string, rowNumber int) Record {
	rec := Record{Row: rowNumber, Values: make(map[Field]string, len(m))}
	for _, cm := range m {
		if cm.Column >= len(row) {
			continue
		}
		if v := CleanValue(row[cm.Column]); v != "" {
			rec.Values[cm.Field] = v
		}
	}
	return rec
}

// Records maps every data row, numbering them from 1.
func (m FieldMapping) Records(rows [][]string) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = m.Apply(row, i+1)
	}
	return out
}
