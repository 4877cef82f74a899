package outline

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/dgallion1/docoutline/internal/doctree"
)

var (
	inputOnce   sync.Once
	inputSchema []byte
	inputErr    error
)

// InputSchemaJSON returns the JSON Schema of the span document accepted by
// the spans endpoint, generated from doctree.Document.
func InputSchemaJSON() ([]byte, error) {
	inputOnce.Do(func() {
		s, err := jsonschema.For[doctree.Document](nil)
		if err != nil {
			inputErr = fmt.Errorf("derive input schema: %w", err)
			return
		}
		inputSchema, inputErr = json.MarshalIndent(s, "", "  ")
	})
	return inputSchema, inputErr
}
