package tool

import "strings"

// Locale selects the language of generated prompt text.
type Locale string

const (
	// LocaleEN produces English prompt text.
	LocaleEN Locale = "en"
	// LocaleJA produces Japanese prompt text.
	LocaleJA Locale = "ja"
)

type labels struct {
	parameters string
	required   string
	noParams   string
}

func labelsFor(loc Locale) labels {
	if loc == LocaleJA {
		return labels{
			parameters: "**パラメータ:**",
			required:   "*必須*",
			noParams:   "パラメータなし",
		}
	}
	return labels{
		parameters: "**Parameters:**",
		required:   "*required*",
		noParams:   "No parameters",
	}
}

// Describe renders the definition as markdown for inclusion in a system
// prompt. The model reads this, so the wording stays stable across releases.
func (d Definition) Describe(loc Locale) string {
	lb := labelsFor(loc)

	var sb strings.Builder
	sb.WriteString("### ")
	sb.WriteString(d.Name)
	sb.WriteString("\n\n")
	if d.Description != "" {
		sb.WriteString(d.Description)
		sb.WriteString("\n\n")
	}

	if len(d.Properties) == 0 {
		sb.WriteString(lb.noParams)
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(lb.parameters)
	sb.WriteString("\n")
	for _, p := range d.Properties {
		sb.WriteString("- `")
		sb.WriteString(p.Name)
		sb.WriteString("` (")
		sb.WriteString(string(p.Type))
		if p.Required {
			sb.WriteString(", ")
			sb.WriteString(lb.required)
		}
		sb.WriteString(")")
		if p.Description != "" {
			sb.WriteString(": ")
			sb.WriteString(p.Description)
		}
		if len(p.Enum) > 0 {
			sb.WriteString(" [")
			sb.WriteString(strings.Join(p.Enum, ", "))
			sb.WriteString("]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Describe renders every registered tool, in registration order, separated
// by blank lines.
func (r *Registry) Describe(loc Locale) string {
	defs := r.Definitions()
	parts := make([]string, len(defs))
	for i, d := range defs {
		parts[i] = d.Describe(loc)
	}
	return strings.Join(parts, "\n")
}
