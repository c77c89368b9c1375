package openapi

import (
	"fmt"
	"strings"

	"github.com/swaggest/jsonschema-go"
)

const componentsPrefix = "#/components/schemas/"

// Record is one operation of the generated document.
type Record struct {
	Input         *Model
	Output        *Model
	ID            string
	Method        string
	Path          string
	Description   string
	Summary       string
	SuccessStatus int
	Tags          []string
	Extensions    map[string]interface{}
}

func (r *Record) AddInputModel(name string, sch jsonschema.Schema) {
	m := NewModel(name, sch)
	r.Input = &m
}

func (r *Record) AddOutputModel(name string, sch jsonschema.Schema) {
	m := NewModel(name, sch)
	r.Output = &m
}

var _ jsonschema.Exposer = (*Model)(nil)

// Model exposes a schema of the integration under a component name.
type Model struct {
	jsonschema.Struct
	schema jsonschema.Schema
}

func NewModel(name string, sch jsonschema.Schema) Model {
	return Model{
		Struct: jsonschema.Struct{
			DefName: name,
		},
		schema: sch,
	}
}

func (m Model) Name() string {
	return m.DefName
}

// JSONSchema returns a copy of the model's schema with local references pointing at components.
func (m Model) JSONSchema() (jsonschema.Schema, error) {
	b, err := m.schema.MarshalJSON()
	if err != nil {
		return jsonschema.Schema{}, fmt.Errorf("error marshalling schema for %s: %w", m.Name(), err)
	}

	var sch jsonschema.Schema
	if err := sch.UnmarshalJSON(b); err != nil {
		return jsonschema.Schema{}, fmt.Errorf("error unmarshalling schema for %s: %w", m.Name(), err)
	}

	walkRefs(&sch, func(ref *string) {
		for _, local := range []string{"#/definitions/", "#/$defs/"} {
			if strings.HasPrefix(*ref, local) {
				*ref = componentsPrefix + strings.TrimPrefix(*ref, local)
				return
			}
		}
	})

	return sch, nil
}

// =============================================================================

func walkRefs(schema *jsonschema.Schema, f func(*string)) {
	if schema == nil {
		return
	}

	apply := func(sch *jsonschema.Schema) {
		if sch.Ref != nil {
			f(sch.Ref)
		}
	}

	walkSchema(&jsonschema.SchemaOrBool{TypeObject: schema}, apply)
	for _, def := range schema.Definitions {
		walkSchema(&def, apply)
	}
}

func walkSchema(schemaOrBool *jsonschema.SchemaOrBool, f func(*jsonschema.Schema)) {
	if schemaOrBool == nil || schemaOrBool.TypeObject == nil {
		return
	}

	schema := schemaOrBool.TypeObject

	f(schema)

	walkSchema(schema.AdditionalItems, f)

	if schema.Items != nil {
		walkSchema(schema.Items.SchemaOrBool, f)
		for _, item := range schema.Items.SchemaArray {
			walkSchema(&item, f)
		}
	}

	walkSchema(schema.Contains, f)
	walkSchema(schema.AdditionalProperties, f)

	for _, prop := range schema.Properties {
		walkSchema(&prop, f)
	}
	for _, prop := range schema.PatternProperties {
		walkSchema(&prop, f)
	}

	for _, s := range schema.AllOf {
		walkSchema(&s, f)
	}
	for _, s := range schema.AnyOf {
		walkSchema(&s, f)
	}
	for _, s := range schema.OneOf {
		walkSchema(&s, f)
	}

	walkSchema(schema.Not, f)
	walkSchema(schema.If, f)
	walkSchema(schema.Then, f)
	walkSchema(schema.Else, f)
}
