package ingest

import (
	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// Schema maps canonical field names to column positions of a raw table
type Schema struct {
	index map[contracts.Field]int
}

// ValidateSchema checks that every required field is in the header.
// Names are compared trimmed and case-insensitive. On failure the
// SchemaError lists every missing field, in required order.
// ⭐ SSOT: 필수 컬럼 검증은 여기서만
func ValidateSchema(header []string) (*Schema, error) {
	index := make(map[contracts.Field]int, len(header))
	for i, name := range header {
		f := contracts.NormalizeFieldName(name)
		if _, dup := index[f]; dup {
			continue // 중복 컬럼은 첫 번째만 사용
		}
		index[f] = i
	}

	var missing []string
	for _, f := range contracts.RequiredFields {
		if _, ok := index[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	return &Schema{index: index}, nil
}

// Has reports whether the table carries the field
func (s *Schema) Has(f contracts.Field) bool {
	_, ok := s.index[f]
	return ok
}

// Columns returns the set of known fields present in the table
func (s *Schema) Columns() map[contracts.Field]bool {
	cols := make(map[contracts.Field]bool, len(contracts.RequiredFields)+1)
	for _, f := range contracts.RequiredFields {
		if s.Has(f) {
			cols[f] = true
		}
	}
	if s.Has(contracts.FieldProductCost) {
		cols[contracts.FieldProductCost] = true
	}
	return cols
}

// resolve returns the column position of a field that must exist
func (s *Schema) resolve(f contracts.Field) (int, error) {
	i, ok := s.index[f]
	if !ok {
		return 0, &DataIntegrityError{Field: string(f)}
	}
	return i, nil
}
