package document

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
)

// Schema is the JSON schema every stored project must satisfy. It is
// deliberately loose about optional arrays so documents written by older
// versions still validate.
//
//go:embed schema.json
var Schema []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(Schema))
})

// FieldError is one schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every schema violation found in a document.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// Validate checks raw JSON against [Schema]. Schema violations are returned
// as an INVALID_DOCUMENT error wrapping *ValidationErrors.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInternal, err, "compile document schema")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInvalidDocument, err, "document is not valid JSON")
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationErrors{}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{Field: desc.Field(), Message: desc.Description()})
	}
	return rerrors.Wrap(rerrors.ErrCodeInvalidDocument, ve, "document does not match schema")
}
