package outline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dgallion1/docoutline/internal/doctree"
)

//go:embed outline.schema.json
var outputSchemaJSON string

var (
	compileOnce  sync.Once
	outputSchema *jsonschema.Schema
	compileErr   error
)

// OutputSchema returns the compiled JSON Schema for outline documents.
func OutputSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("outline.schema.json", strings.NewReader(outputSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("outline.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile outline schema: %w", err)
			return
		}
		outputSchema = schema
	})
	return outputSchema, compileErr
}

// OutputSchemaJSON returns the raw output schema document.
func OutputSchemaJSON() []byte {
	return []byte(outputSchemaJSON)
}

// ValidateJSON validates serialized outline bytes against the output schema.
func ValidateJSON(data []byte) error {
	schema, err := OutputSchema()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: not valid JSON: %v", ErrInvalidOutline, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutline, err)
	}
	return nil
}

// Validate checks an outline against the structural rules and the output
// schema.
func Validate(o *doctree.Outline) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutline, err)
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutline, err)
	}
	return ValidateJSON(data)
}
