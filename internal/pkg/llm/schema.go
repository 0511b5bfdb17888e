package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled tool schemas by tool name
var schemaCache sync.Map

// ValidateArguments checks raw tool-call arguments against the tool's parameter schema.
// It returns *ErrInvalidResponse when the arguments are not JSON or do not match.
func ValidateArguments(tool Tool, raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON arguments for %s: %w", tool.Name, err)}
	}

	if tool.Parameters == nil {
		return nil
	}

	compiled, err := compiledSchema(tool)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", tool.Name, err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("arguments for %s: %w", tool.Name, err)}
	}
	return nil
}

func compiledSchema(tool Tool) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(tool.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON value, not a Go map with typed slices.
	defBytes, err := json.Marshal(tool.Parameters)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://tools/%s.json", tool.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(tool.Name, compiled)
	return compiled, nil
}
