package assembly

import (
	"fmt"
	"strings"
)

// TemplateNotFoundError reports a missing template file. It is fatal to the
// current assembly call and surfaced to the caller verbatim.
type TemplateNotFoundError struct {
	Path string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template file not found: %s", e.Path)
}

// MissingInputError reports required document fields that were absent or
// empty. It blocks assembly without touching any state.
type MissingInputError struct {
	Fields []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("required fields missing: %s", strings.Join(e.Fields, ", "))
}
