package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketllm/agentkit/arena"
	"github.com/pocketllm/agentkit/jsonval"
)

func weatherTool() Definition {
	return Definition{
		Name:        "get_weather",
		Description: "Current weather for a location",
		Properties: []Property{
			StringProperty("location", "City name", true),
			EnumProperty("unit", "Temperature unit", false, "celsius", "fahrenheit"),
		},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(weatherTool()))
	require.NoError(t, r.Register(Definition{Name: "noop", Description: "Does nothing"}))

	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Has("get_weather"))
	assert.False(t, r.Has("missing"))

	def, ok := r.Get("get_weather")
	require.True(t, ok)
	assert.Equal(t, "Current weather for a location", def.Description)

	assert.Equal(t, []string{"get_weather", "noop"}, r.Names(), "registration order preserved")
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(weatherTool()))
	err := r.Register(weatherTool())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDefinition_Validate(t *testing.T) {
	assert.Error(t, Definition{}.Validate(), "name required")
	assert.Error(t, Definition{
		Name:       "x",
		Properties: []Property{{Name: "p", Type: "banana"}},
	}.Validate())
	assert.Error(t, Definition{
		Name:       "x",
		Properties: []Property{{Type: TypeString}},
	}.Validate(), "property name required")
	assert.NoError(t, weatherTool().Validate())
}

func TestSchemaJSON(t *testing.T) {
	a := arena.New(0)
	schema := weatherTool().SchemaJSON(a)

	want := `{"type":"object","properties":{` +
		`"location":{"type":"string","description":"City name"},` +
		`"unit":{"type":"string","description":"Temperature unit","enum":["celsius","fahrenheit"]}},` +
		`"required":["location"]}`
	assert.Equal(t, want, jsonval.Serialize(schema, false))
}

func TestSchemaJSON_Nested(t *testing.T) {
	a := arena.New(0)
	def := Definition{
		Name: "send_batch",
		Properties: []Property{
			ArrayProperty("ids", "Message ids", true, IntegerProperty("", "", false)),
			ObjectProperty("options", "Delivery options", false,
				BooleanProperty("urgent", "Skip the queue", true),
				StringProperty("note", "", false),
			),
		},
	}
	require.NoError(t, def.Validate())
	schema := def.SchemaJSON(a)

	ids := schema.Get("properties").Get("ids")
	require.NotNil(t, ids)
	assert.Equal(t, "integer", ids.Get("items").Get("type").StringOr(""))

	opts := schema.Get("properties").Get("options")
	require.NotNil(t, opts)
	assert.Equal(t, "boolean", opts.Get("properties").Get("urgent").Get("type").StringOr(""))
	require.NotNil(t, opts.Get("required"))
	assert.Equal(t, 1, opts.Get("required").Len())
}

func TestLoadDefinitions_Nested(t *testing.T) {
	src := `
tools:
  - name: send_batch
    description: Deliver several messages
    properties:
      - name: ids
        type: array
        required: true
        items:
          type: integer
      - name: options
        type: object
        properties:
          - name: urgent
            type: boolean
`
	defs, err := LoadDefinitions(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	props := defs[0].Properties
	require.Len(t, props, 2)
	require.NotNil(t, props[0].Items)
	assert.Equal(t, TypeInteger, props[0].Items.Type)
	require.Len(t, props[1].Properties, 1)
	assert.Equal(t, TypeBoolean, props[1].Properties[0].Type)
}

func TestSchemaJSON_NoRequired(t *testing.T) {
	a := arena.New(0)
	def := Definition{Name: "x", Properties: []Property{BooleanProperty("flag", "", false)}}
	schema := def.SchemaJSON(a)
	assert.Nil(t, schema.Get("required"), "required array omitted when empty")
}

func TestFunctionJSON_Envelope(t *testing.T) {
	a := arena.New(0)
	env := weatherTool().FunctionJSON(a)

	assert.Equal(t, "function", env.Get("type").StringOr(""))
	fn := env.Get("function")
	require.NotNil(t, fn)
	assert.Equal(t, "get_weather", fn.Get("name").StringOr(""))
	assert.NotNil(t, fn.Get("parameters").Get("properties"))
}

func TestFunctionsJSON_Order(t *testing.T) {
	a := arena.New(0)
	r := NewRegistry()
	require.NoError(t, r.RegisterAll(
		Definition{Name: "b", Description: "second alphabetically, first registered"},
		Definition{Name: "a", Description: "first alphabetically"},
	))

	arr := r.FunctionsJSON(a)
	require.Equal(t, 2, arr.Len())
	assert.Equal(t, "b", arr.At(0).Get("function").Get("name").StringOr(""))
	assert.Equal(t, "a", arr.At(1).Get("function").Get("name").StringOr(""))
}

func TestDescribe_English(t *testing.T) {
	md := weatherTool().Describe(LocaleEN)

	assert.Contains(t, md, "### get_weather")
	assert.Contains(t, md, "**Parameters:**")
	assert.Contains(t, md, "- `location` (string, *required*): City name")
	assert.Contains(t, md, "- `unit` (string): Temperature unit [celsius, fahrenheit]")
}

func TestDescribe_Japanese(t *testing.T) {
	md := weatherTool().Describe(LocaleJA)

	assert.Contains(t, md, "**パラメータ:**")
	assert.Contains(t, md, "*必須*")
	assert.NotContains(t, md, "*required*")
}

func TestDescribe_NoParameters(t *testing.T) {
	md := Definition{Name: "ping", Description: "Liveness check"}.Describe(LocaleEN)
	assert.Contains(t, md, "No parameters")
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(weatherTool()))
	require.NoError(t, r.Register(Definition{Name: "ping", Description: "Liveness check"}))

	md := r.Describe(LocaleEN)
	wIdx := strings.Index(md, "### get_weather")
	pIdx := strings.Index(md, "### ping")
	require.GreaterOrEqual(t, wIdx, 0)
	require.Greater(t, pIdx, wIdx, "registration order preserved in prompt text")
}

func TestLoadDefinitions(t *testing.T) {
	src := `
tools:
  - name: get_weather
    description: Current weather for a location
    properties:
      - name: location
        type: string
        description: City name
        required: true
      - name: unit
        description: Temperature unit
        enum: [celsius, fahrenheit]
  - name: ping
    description: Liveness check
`
	defs, err := LoadDefinitions(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	w := defs[0]
	assert.Equal(t, "get_weather", w.Name)
	require.Len(t, w.Properties, 2)
	assert.True(t, w.Properties[0].Required)
	assert.Equal(t, TypeString, w.Properties[1].Type, "missing type defaults to string")
	assert.Equal(t, []string{"celsius", "fahrenheit"}, w.Properties[1].Enum)

	assert.Empty(t, defs[1].Properties)
}

func TestLoadDefinitions_Errors(t *testing.T) {
	_, err := LoadDefinitions(strings.NewReader("tools: ["))
	assert.Error(t, err, "malformed YAML")

	_, err = LoadDefinitions(strings.NewReader("tools:\n  - description: nameless\n"))
	assert.Error(t, err, "validation failure propagates")

	_, err = LoadDefinitions(strings.NewReader(`
tools:
  - name: bad
    properties:
      - name: p
        type: banana
`))
	assert.Error(t, err)
}
