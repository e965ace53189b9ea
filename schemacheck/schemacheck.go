// Package schemacheck checks that schema files are valid JSON Schema documents
// before they are handed to the generator.
package schemacheck

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goaux/stacktrace/v2"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// InvalidError is returned for a file that is not a valid JSON Schema.
type InvalidError struct {
	Path string
	Err  error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid schema %s: %v", e.Path, e.Err)
}

func (e *InvalidError) Unwrap() error { return e.Err }

// Validate compiles the schema at path. Documents without "$schema" are
// compiled as draft 7. References to sibling files are resolved from disk.
func Validate(path string) error {
	data, err := stacktrace.Trace2(os.ReadFile(path))
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &InvalidError{Path: path, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if _, err := compiler.Compile(path); err != nil {
		return &InvalidError{Path: path, Err: err}
	}
	return nil
}
