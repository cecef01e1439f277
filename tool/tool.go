// Package tool implements the tool-calling subsystem: schema definitions the
// model is prompted with, a registry the agent loop resolves calls against,
// JSON schema generation in the OpenAI function envelope, and localized
// markdown descriptions for system prompts.
package tool

import (
	"errors"
	"fmt"
)

// PropertyType enumerates the JSON schema types a parameter can take.
type PropertyType string

const (
	// TypeString is a JSON string parameter.
	TypeString PropertyType = "string"
	// TypeNumber is a floating-point parameter.
	TypeNumber PropertyType = "number"
	// TypeInteger is an integral parameter.
	TypeInteger PropertyType = "integer"
	// TypeBoolean is a true/false parameter.
	TypeBoolean PropertyType = "boolean"
	// TypeArray is a list parameter.
	TypeArray PropertyType = "array"
	// TypeObject is a nested object parameter.
	TypeObject PropertyType = "object"
)

func (t PropertyType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject:
		return true
	default:
		return false
	}
}

// Property describes one parameter of a tool.
type Property struct {
	Name        string
	Type        PropertyType
	Description string
	Required    bool
	// Enum restricts a string parameter to a fixed set of values.
	Enum []string
	// Items describes the element schema of an array parameter.
	Items *Property
	// Properties describes the fields of a nested object parameter.
	Properties []Property
}

func (p Property) validate(toolName string) error {
	if p.Name == "" {
		return fmt.Errorf("tool %q: property has no name", toolName)
	}
	if !p.Type.valid() {
		return fmt.Errorf("tool %q: property %q has invalid type %q", toolName, p.Name, p.Type)
	}
	if p.Items != nil && !p.Items.Type.valid() {
		return fmt.Errorf("tool %q: property %q has invalid item type %q", toolName, p.Name, p.Items.Type)
	}
	for _, nested := range p.Properties {
		if err := nested.validate(toolName); err != nil {
			return err
		}
	}
	return nil
}

// Definition describes a tool the model may call. Definitions carry schema
// only; execution is wired separately so the same definitions can back
// different executors.
type Definition struct {
	Name        string
	Description string
	Properties  []Property
}

// Validate checks a definition is well formed before registration.
func (d Definition) Validate() error {
	if d.Name == "" {
		return errors.New("tool: definition has no name")
	}
	for _, p := range d.Properties {
		if err := p.validate(d.Name); err != nil {
			return err
		}
	}
	return nil
}

// StringProperty builds a required or optional string parameter.
func StringProperty(name, description string, required bool) Property {
	return Property{Name: name, Type: TypeString, Description: description, Required: required}
}

// EnumProperty builds a string parameter restricted to the given values.
func EnumProperty(name, description string, required bool, values ...string) Property {
	return Property{Name: name, Type: TypeString, Description: description, Required: required, Enum: values}
}

// NumberProperty builds a floating-point parameter.
func NumberProperty(name, description string, required bool) Property {
	return Property{Name: name, Type: TypeNumber, Description: description, Required: required}
}

// IntegerProperty builds an integral parameter.
func IntegerProperty(name, description string, required bool) Property {
	return Property{Name: name, Type: TypeInteger, Description: description, Required: required}
}

// BooleanProperty builds a true/false parameter.
func BooleanProperty(name, description string, required bool) Property {
	return Property{Name: name, Type: TypeBoolean, Description: description, Required: required}
}

// ArrayProperty builds a list parameter whose elements follow items.
func ArrayProperty(name, description string, required bool, items Property) Property {
	return Property{Name: name, Type: TypeArray, Description: description, Required: required, Items: &items}
}

// ObjectProperty builds a nested object parameter with the given fields.
func ObjectProperty(name, description string, required bool, properties ...Property) Property {
	return Property{Name: name, Type: TypeObject, Description: description, Required: required, Properties: properties}
}
