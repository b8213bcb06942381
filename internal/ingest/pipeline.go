package ingest

import (
	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// ValidateAndNormalize runs the full cleaning pipeline over a raw table:
// schema check → type normalization → row sanitizing → range audit.
//
// Fatal errors (*SchemaError, *DataIntegrityError) stop the pipeline and
// are returned unmodified. Data-quality issues are returned as warnings in
// the order they were found and never interrupt processing.
// ⭐ SSOT: 업로드 데이터 정제 파이프라인
func ValidateAndNormalize(raw contracts.RawTable) (*contracts.Dataset, []string, error) {
	schema, err := ValidateSchema(raw.Header)
	if err != nil {
		return nil, nil, err
	}

	typed, err := Normalize(raw, schema)
	if err != nil {
		return nil, nil, err
	}

	cleaned, warnings, err := Sanitize(typed)
	if err != nil {
		return nil, nil, err
	}

	warnings = append(warnings, Audit(cleaned)...)
	if warnings == nil {
		warnings = []string{}
	}

	return cleaned, warnings, nil
}
