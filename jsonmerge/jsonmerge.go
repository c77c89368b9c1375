// Package jsonmerge combines object-shaped JSON schemas.
//
// Object schemas come in two kinds: fixed-field objects, which enumerate their
// properties, and records, which constrain the values of arbitrary keys through
// additionalProperties. Merging two objects yields the union of their fields;
// merging two records yields a record whose values must satisfy both value
// schemas. Objects and records never merge with each other.
package jsonmerge

import (
	"sort"

	"github.com/swaggest/jsonschema-go"
)

// Kind tells fixed-field objects apart from records.
type Kind int

const (
	KindObject Kind = iota
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// ObjectSchema is either a FixedSchema or a RecordSchema.
type ObjectSchema interface {
	Kind() Kind
	Schema() jsonschema.Schema
	objectSchema()
}

var (
	_ ObjectSchema = FixedSchema{}
	_ ObjectSchema = RecordSchema{}
)

// FixedSchema is an object schema with named properties.
type FixedSchema struct {
	Properties           map[string]jsonschema.SchemaOrBool
	Required             []string
	AdditionalProperties *jsonschema.SchemaOrBool
	Title                *string
	Description          *string
	// Keywords holds the rest of the schema, such as definitions, allOf or minProperties.
	Keywords jsonschema.Schema
}

func (FixedSchema) Kind() Kind    { return KindObject }
func (FixedSchema) objectSchema() {}

func (f FixedSchema) Schema() jsonschema.Schema {
	sch := newObject(f.Keywords, f.Title, f.Description)

	sch.Properties = make(map[string]jsonschema.SchemaOrBool, len(f.Properties))
	for k, v := range f.Properties {
		sch.Properties[k] = v
	}
	if len(f.Required) > 0 {
		sch.Required = append([]string(nil), f.Required...)
	}
	sch.AdditionalProperties = f.AdditionalProperties

	return sch
}

// RecordSchema is an object schema whose keys are arbitrary and whose values all satisfy Values.
type RecordSchema struct {
	Values      jsonschema.SchemaOrBool
	Title       *string
	Description *string
	Keywords    jsonschema.Schema
}

func (RecordSchema) Kind() Kind    { return KindRecord }
func (RecordSchema) objectSchema() {}

func (r RecordSchema) Schema() jsonschema.Schema {
	sch := newObject(r.Keywords, r.Title, r.Description)
	values := r.Values
	sch.AdditionalProperties = &values

	return sch
}

// Classify reads a schema as an ObjectSchema. A schema without properties whose
// additionalProperties is itself a schema is a record; any other object is a
// fixed-field object. A schema typed as anything but "object" is a *NotObjectError.
func Classify(s jsonschema.Schema) (ObjectSchema, error) {
	if !isObject(s.Type) {
		return nil, &NotObjectError{Type: typeName(s.Type)}
	}

	if len(s.Properties) == 0 && s.AdditionalProperties != nil && s.AdditionalProperties.TypeObject != nil {
		return RecordSchema{
			Values:      *s.AdditionalProperties,
			Title:       s.Title,
			Description: s.Description,
			Keywords:    keywordsOf(s),
		}, nil
	}

	return FixedSchema{
		Properties:           s.Properties,
		Required:             s.Required,
		AdditionalProperties: s.AdditionalProperties,
		Title:                s.Title,
		Description:          s.Description,
		Keywords:             keywordsOf(s),
	}, nil
}

type Merger interface {
	Merge(a, b ObjectSchema) (ObjectSchema, error)
	MergeObjectSchemas(a, b jsonschema.Schema) (jsonschema.Schema, error)
}

type Options struct {
	SchemasMergeStrategy SchemaMergeStrategy
}

// SchemaMergeStrategy decides what happens when both objects define the same property.
type SchemaMergeStrategy int

const (
	OverwriteDuplicates SchemaMergeStrategy = iota
	ErrorOnDuplicates
	KeepExisting
)

func New() Merger {
	return NewWithOptions(Options{
		SchemasMergeStrategy: OverwriteDuplicates,
	})
}

func NewWithOptions(opts Options) Merger {
	return &merger{opts: opts}
}

// MergeObjectSchemas merges b into a with the default strategy, where b's properties win.
func MergeObjectSchemas(a, b jsonschema.Schema) (jsonschema.Schema, error) {
	return New().MergeObjectSchemas(a, b)
}

type merger struct {
	opts Options
}

func (m *merger) MergeObjectSchemas(a, b jsonschema.Schema) (jsonschema.Schema, error) {
	objA, err := Classify(a)
	if err != nil {
		return jsonschema.Schema{}, err
	}

	objB, err := Classify(b)
	if err != nil {
		return jsonschema.Schema{}, err
	}

	merged, err := m.Merge(objA, objB)
	if err != nil {
		return jsonschema.Schema{}, err
	}

	return merged.Schema(), nil
}

func (m *merger) Merge(a, b ObjectSchema) (ObjectSchema, error) {
	switch a := a.(type) {
	case FixedSchema:
		if b, ok := b.(FixedSchema); ok {
			return m.mergeFixed(a, b)
		}
	case RecordSchema:
		if b, ok := b.(RecordSchema); ok {
			merged, err := mergeRecords(a, b)
			if err != nil {
				return nil, err
			}
			return merged, nil
		}
	}

	return nil, &KindMismatchError{Left: a.Kind(), Right: b.Kind()}
}

func (m *merger) mergeFixed(a, b FixedSchema) (ObjectSchema, error) {
	properties := make(map[string]jsonschema.SchemaOrBool, len(a.Properties)+len(b.Properties))
	for k, v := range a.Properties {
		properties[k] = v
	}

	// names b defined but a kept, and names b took over from a
	kept := make(map[string]bool)
	overridden := make(map[string]bool)

	for _, k := range sortedKeys(b.Properties) {
		if _, exists := properties[k]; exists {
			switch m.opts.SchemasMergeStrategy {
			case ErrorOnDuplicates:
				return nil, &DuplicatePropertyError{Property: k}
			case KeepExisting:
				kept[k] = true
				continue
			}
		}
		overridden[k] = true
		properties[k] = b.Properties[k]
	}

	required := make(map[string]bool)
	for _, r := range a.Required {
		if !overridden[r] {
			required[r] = true
		}
	}
	for _, r := range b.Required {
		if !kept[r] {
			required[r] = true
		}
	}

	keywords, err := mergeKeywords(a.Keywords, b.Keywords)
	if err != nil {
		return nil, err
	}

	return FixedSchema{
		Properties:           properties,
		Required:             sortedKeys(required),
		AdditionalProperties: pick(b.AdditionalProperties, a.AdditionalProperties),
		Title:                pick(b.Title, a.Title),
		Description:          pick(b.Description, a.Description),
		Keywords:             keywords,
	}, nil
}

func mergeRecords(a, b RecordSchema) (RecordSchema, error) {
	values := jsonschema.Schema{
		AllOf: []jsonschema.SchemaOrBool{a.Values, b.Values},
	}

	keywords, err := mergeKeywords(a.Keywords, b.Keywords)
	if err != nil {
		return RecordSchema{}, err
	}

	return RecordSchema{
		Values:      values.ToSchemaOrBool(),
		Title:       pick(b.Title, a.Title),
		Description: pick(b.Description, a.Description),
		Keywords:    keywords,
	}, nil
}

// =============================================================================

func newObject(keywords jsonschema.Schema, title, description *string) jsonschema.Schema {
	var t jsonschema.Type
	t.WithSimpleTypes(jsonschema.Object)

	sch := keywords
	sch.WithType(t)
	sch.Title = title
	sch.Description = description

	return sch
}

func pick[T any](preferred, fallback *T) *T {
	if preferred != nil {
		return preferred
	}
	return fallback
}

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
