package tool

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlProperty struct {
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type"`
	Description string         `yaml:"description"`
	Required    bool           `yaml:"required"`
	Enum        []string       `yaml:"enum"`
	Items       *yamlProperty  `yaml:"items"`
	Properties  []yamlProperty `yaml:"properties"`
}

func (yp yamlProperty) toProperty() Property {
	pt := PropertyType(yp.Type)
	if yp.Type == "" {
		pt = TypeString
	}
	p := Property{
		Name:        yp.Name,
		Type:        pt,
		Description: yp.Description,
		Required:    yp.Required,
		Enum:        yp.Enum,
	}
	if yp.Items != nil {
		items := yp.Items.toProperty()
		p.Items = &items
	}
	for _, nested := range yp.Properties {
		p.Properties = append(p.Properties, nested.toProperty())
	}
	return p
}

type yamlDefinition struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Properties  []yamlProperty `yaml:"properties"`
}

type yamlFile struct {
	Tools []yamlDefinition `yaml:"tools"`
}

// LoadDefinitions reads tool definitions from YAML:
//
//	tools:
//	  - name: get_weather
//	    description: Current weather for a location
//	    properties:
//	      - name: location
//	        type: string
//	        description: City name
//	        required: true
//
// A missing property type defaults to string. Every definition is validated
// before being returned.
func LoadDefinitions(r io.Reader) ([]Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tool: read definitions: %w", err)
	}

	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("tool: parse definitions: %w", err)
	}

	defs := make([]Definition, 0, len(file.Tools))
	for _, yd := range file.Tools {
		def := Definition{Name: yd.Name, Description: yd.Description}
		for _, yp := range yd.Properties {
			def.Properties = append(def.Properties, yp.toProperty())
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadDefinitionsFile reads tool definitions from a YAML file on disk.
func LoadDefinitionsFile(path string) ([]Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tool: open definitions: %w", err)
	}
	defer f.Close()
	return LoadDefinitions(f)
}
