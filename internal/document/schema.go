package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

const schemaURL = "https://kaizen.local/schemas/document.schema.json"

//go:embed document.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Validate checks raw JSON against the document schema.
func Validate(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ferrors.SchemaError("document is not valid JSON").WithCause(err).Build()
	}
	return validateValue(v)
}

func validateValue(v any) error {
	s, err := compiledSchema()
	if err != nil {
		return ferrors.InternalError("document schema failed to compile").WithCause(err).Build()
	}
	if err := s.Validate(v); err != nil {
		return ferrors.SchemaError("document failed schema validation").WithCause(err).Build()
	}
	return nil
}
