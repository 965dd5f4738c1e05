package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-community/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Validator checks field payloads against the JSON schema derived from a field list.
type Validator struct {
	fields  []schema.Field
	full    *jsonschema.Schema
	partial *jsonschema.Schema
}

// Compile derives and compiles the schemas for fields.
func Compile(fields []schema.Field) (*Validator, error) {
	document := FieldsSchema(fields)
	full, err := compileSchema(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	relaxed := cloneMap(document)
	delete(relaxed, "required")
	partial, err := compileSchema(relaxed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Validator{
		fields:  append([]schema.Field(nil), fields...),
		full:    full,
		partial: partial,
	}, nil
}

// Validate checks payload. Partial validation skips required fields and is used
// for draft saves.
func (v *Validator) Validate(payload map[string]any, partial bool) error {
	if v == nil {
		return nil
	}
	normalized, err := normalizePayload(payload)
	if err != nil {
		return &PayloadValidationError{Issues: []ValidationIssue{{Message: err.Error()}}, Cause: err}
	}
	compiled := v.full
	if partial {
		compiled = v.partial
	}
	if err := compiled.Validate(normalized); err != nil {
		return &PayloadValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// Sanitize keeps only declared fields.
func (v *Validator) Sanitize(payload map[string]any) map[string]any {
	if v == nil {
		return payload
	}
	return Sanitize(v.fields, payload)
}

// Sanitize keeps only the keys of payload that name a declared field.
func Sanitize(fields []schema.Field, payload map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if value, ok := payload[field.Name]; ok {
			out[field.Name] = value
		}
	}
	return out
}

// ApplyDefaults fills missing values from field defaults.
func ApplyDefaults(fields []schema.Field, payload map[string]any) map[string]any {
	if payload == nil {
		payload = map[string]any{}
	}
	for _, field := range fields {
		if field.DefaultValue == nil {
			continue
		}
		if _, ok := payload[field.Name]; !ok {
			payload[field.Name] = field.DefaultValue
		}
	}
	return payload
}

// FieldsSchema converts field declarations into a draft 2020-12 object schema.
// Unknown keys are tolerated; callers strip them with Sanitize.
func FieldsSchema(fields []schema.Field) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]any, 0)
	for _, field := range fields {
		property := fieldSchema(field)
		if !field.Required {
			property = map[string]any{"anyOf": []any{property, map[string]any{"type": "null"}}}
		} else {
			required = append(required, field.Name)
		}
		properties[field.Name] = property
	}
	document := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		document["required"] = required
	}
	return document
}

func fieldSchema(field schema.Field) map[string]any {
	var item map[string]any
	switch field.Type {
	case schema.FieldText, schema.FieldTextarea:
		item = map[string]any{"type": "string"}
	case schema.FieldEmail:
		item = map[string]any{"type": "string", "format": "email"}
	case schema.FieldNumber:
		item = map[string]any{"type": "number"}
	case schema.FieldCheckbox:
		item = map[string]any{"type": "boolean"}
	case schema.FieldDate:
		item = map[string]any{"type": "string", "format": "date-time"}
	case schema.FieldSelect:
		values := make([]any, 0, len(field.Options))
		for _, value := range field.OptionValues() {
			values = append(values, value)
		}
		item = map[string]any{"enum": values}
	case schema.FieldRelationship:
		item = map[string]any{"type": "string", "format": "uuid"}
	case schema.FieldRichText:
		item = map[string]any{"type": []any{"string", "array", "object"}}
	default:
		item = map[string]any{}
	}
	if field.HasMany && (field.Type == schema.FieldSelect || field.Type == schema.FieldRelationship || field.Type == schema.FieldText || field.Type == schema.FieldNumber) {
		return map[string]any{"type": "array", "items": item}
	}
	return item
}

// Normalize round-trips payload through JSON so stored values share the types
// a JSON decoder produces: ids become strings and numbers float64.
func Normalize(payload map[string]any) (map[string]any, error) {
	normalized, err := normalizePayload(payload)
	if err != nil {
		return nil, err
	}
	out, _ := normalized.(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func normalizePayload(payload map[string]any) (any, error) {
	if payload == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[key] = cloneMap(typed)
		case []any:
			out[key] = cloneSlice(typed)
		default:
			out[key] = value
		}
	}
	return out
}

func cloneSlice(input []any) []any {
	if input == nil {
		return nil
	}
	out := make([]any, len(input))
	for i, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[i] = cloneMap(typed)
		case []any:
			out[i] = cloneSlice(typed)
		default:
			out[i] = value
		}
	}
	return out
}

func compileSchema(document map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
