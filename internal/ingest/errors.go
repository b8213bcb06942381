package ingest

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from an upload.
// It is fatal: nothing downstream runs and nothing is persisted.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// DataIntegrityError reports a field that should exist after schema
// validation but does not. It indicates a logic inconsistency, not bad data.
type DataIntegrityError struct {
	Field string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("column %q not found after schema validation", e.Field)
}
