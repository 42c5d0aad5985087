package executor

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/viant/waypoint/runtime/execution"
	"github.com/xeipuuv/gojsonschema"
)

// validator checks caller inputs against action JSON schemas
type validator struct {
	mux   sync.Mutex
	cache map[string]*gojsonschema.Schema
}

func (v *validator) validate(action string, schemaDoc map[string]interface{}, inputs map[string]interface{}) error {
	schema, err := v.schema(schemaDoc)
	if err != nil {
		return fmt.Errorf("invalid input schema for action %s: %w", action, err)
	}
	if inputs == nil {
		inputs = map[string]interface{}{}
	}
	data, err := json.Marshal(inputs)
	if err != nil {
		return &execution.ValidationError{Action: action, Fields: []execution.FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error for action %s: %w", action, err)
	}
	if result.Valid() {
		return nil
	}
	ret := &execution.ValidationError{Action: action}
	for _, desc := range result.Errors() {
		ret.Fields = append(ret.Fields, execution.FieldError{Field: desc.Field(), Message: desc.Description()})
	}
	return ret
}

func (v *validator) schema(doc map[string]interface{}) (*gojsonschema.Schema, error) {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	key := string(encoded)
	v.mux.Lock()
	defer v.mux.Unlock()
	if schema, ok := v.cache[key]; ok {
		return schema, nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(key))
	if err != nil {
		return nil, err
	}
	v.cache[key] = schema
	return schema, nil
}

func newValidator() *validator {
	return &validator{cache: make(map[string]*gojsonschema.Schema)}
}
