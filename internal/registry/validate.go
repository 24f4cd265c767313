package registry

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"pagebuilder/internal/domain"
)

// ValidationError reports props that do not satisfy a component's schema.
type ValidationError struct {
	ComponentType string
	Cause         error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid props for component %q: %v", e.ComponentType, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Validate checks props against the prop schema of id. It returns nil for
// unknown ids and for definitions without a schema; validation reports,
// it never blocks rendering.
func (r *Registry) Validate(id string, props domain.Props) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok || e.schema == nil {
		return nil
	}

	// Round-trip through JSON so Go numeric types reach the validator as
	// JSON numbers.
	data, err := json.Marshal(props.Clone())
	if err != nil {
		return &ValidationError{ComponentType: id, Cause: fmt.Errorf("encode props: %w", err)}
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationError{ComponentType: id, Cause: fmt.Errorf("decode props: %w", err)}
	}
	if err := e.schema.Validate(value); err != nil {
		return &ValidationError{ComponentType: id, Cause: err}
	}
	return nil
}

func resolveSchema(schemaMap map[string]any) (*jsonschema.Resolved, error) {
	var schema jsonschema.Schema
	schemaBytes, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal prop schema: %w", err)
	}
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return nil, fmt.Errorf("unmarshal prop schema: %w", err)
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("resolve prop schema: %w", err)
	}
	return resolved, nil
}
