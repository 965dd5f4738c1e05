package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType enumerates the supported field kinds.
type FieldType string

const (
	FieldText         FieldType = "text"
	FieldTextarea     FieldType = "textarea"
	FieldEmail        FieldType = "email"
	FieldNumber       FieldType = "number"
	FieldCheckbox     FieldType = "checkbox"
	FieldDate         FieldType = "date"
	FieldSelect       FieldType = "select"
	FieldRelationship FieldType = "relationship"
	FieldRichText     FieldType = "richText"
)

// Option is a selectable value of a select field.
type Option struct {
	Label string
	Value string
}

// Field declares one named value stored on a document.
type Field struct {
	Name         string
	Type         FieldType
	Label        string
	Required     bool
	Unique       bool
	HasMany      bool
	RelationTo   string
	Options      []Option
	DefaultValue any
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the field declaration in isolation.
func (f Field) Validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return ErrFieldNameRequired
	}
	if !fieldNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrFieldNameInvalid, name)
	}
	if isReservedField(name) {
		return fmt.Errorf("%w: %q", ErrFieldNameReserved, name)
	}
	switch f.Type {
	case FieldText, FieldTextarea, FieldEmail, FieldNumber, FieldCheckbox, FieldDate, FieldRichText:
	case FieldSelect:
		if len(f.Options) == 0 {
			return fmt.Errorf("%w: %s", ErrSelectOptionsRequired, name)
		}
	case FieldRelationship:
		if strings.TrimSpace(f.RelationTo) == "" {
			return fmt.Errorf("%w: %s", ErrRelationToRequired, name)
		}
	default:
		return fmt.Errorf("%w: %s (%q)", ErrFieldTypeUnknown, name, f.Type)
	}
	return nil
}

// OptionValues lists the stored values of a select field.
func (f Field) OptionValues() []string {
	values := make([]string, 0, len(f.Options))
	for _, option := range f.Options {
		values = append(values, option.Value)
	}
	return values
}

func isReservedField(name string) bool {
	switch name {
	case "id", "_status", "createdAt", "updatedAt", "globalType":
		return true
	default:
		return false
	}
}

func validateFields(owner string, fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if err := field.Validate(); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
		if _, ok := seen[field.Name]; ok {
			return fmt.Errorf("%s: %w: %s", owner, ErrFieldDuplicate, field.Name)
		}
		seen[field.Name] = struct{}{}
	}
	return nil
}
