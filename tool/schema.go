package tool

import (
	"github.com/pocketllm/agentkit/arena"
	"github.com/pocketllm/agentkit/jsonval"
)

// JSON renders the property as a JSON schema fragment.
func (p Property) JSON(a *arena.Arena) *jsonval.Value {
	v := jsonval.Object(0)
	_ = v.Set(a, "type", jsonval.String(a, string(p.Type)))
	if p.Description != "" {
		_ = v.Set(a, "description", jsonval.String(a, p.Description))
	}
	if len(p.Enum) > 0 {
		enum := jsonval.Array(len(p.Enum))
		for _, e := range p.Enum {
			_ = enum.Append(jsonval.String(a, e))
		}
		_ = v.Set(a, "enum", enum)
	}
	if p.Items != nil {
		_ = v.Set(a, "items", p.Items.JSON(a))
	}
	if len(p.Properties) > 0 {
		nested := jsonval.Object(len(p.Properties))
		for _, np := range p.Properties {
			_ = nested.Set(a, np.Name, np.JSON(a))
		}
		_ = v.Set(a, "properties", nested)
		var required *jsonval.Value
		for _, np := range p.Properties {
			if !np.Required {
				continue
			}
			if required == nil {
				required = jsonval.Array(0)
			}
			_ = required.Append(jsonval.String(a, np.Name))
		}
		if required != nil {
			_ = v.Set(a, "required", required)
		}
	}
	return v
}

// SchemaJSON renders the parameter object schema:
//
//	{"type":"object","properties":{...},"required":[...]}
//
// The required array is present only when at least one property demands it.
func (d Definition) SchemaJSON(a *arena.Arena) *jsonval.Value {
	schema := jsonval.Object(0)
	_ = schema.Set(a, "type", jsonval.String(a, "object"))

	props := jsonval.Object(len(d.Properties))
	for _, p := range d.Properties {
		_ = props.Set(a, p.Name, p.JSON(a))
	}
	_ = schema.Set(a, "properties", props)

	var required *jsonval.Value
	for _, p := range d.Properties {
		if !p.Required {
			continue
		}
		if required == nil {
			required = jsonval.Array(0)
		}
		_ = required.Append(jsonval.String(a, p.Name))
	}
	if required != nil {
		_ = schema.Set(a, "required", required)
	}
	return schema
}

// FunctionJSON renders the definition in the OpenAI function envelope:
//
//	{"type":"function","function":{"name":...,"description":...,"parameters":<schema>}}
func (d Definition) FunctionJSON(a *arena.Arena) *jsonval.Value {
	fn := jsonval.Object(0)
	_ = fn.Set(a, "name", jsonval.String(a, d.Name))
	_ = fn.Set(a, "description", jsonval.String(a, d.Description))
	_ = fn.Set(a, "parameters", d.SchemaJSON(a))

	envelope := jsonval.Object(0)
	_ = envelope.Set(a, "type", jsonval.String(a, "function"))
	_ = envelope.Set(a, "function", fn)
	return envelope
}

// FunctionsJSON renders every registered tool as an array of function
// envelopes, in registration order.
func (r *Registry) FunctionsJSON(a *arena.Arena) *jsonval.Value {
	defs := r.Definitions()
	arr := jsonval.Array(len(defs))
	for _, d := range defs {
		_ = arr.Append(d.FunctionJSON(a))
	}
	return arr
}
