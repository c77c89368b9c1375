package conform

import (
	"encoding/json"
	"maps"
	"strings"

	"github.com/swaggest/jsonschema-go"
)

const (
	definitionsPrefix = "#/definitions/"
	defsPrefix        = "#/$defs/"
	defsKeyword       = "$defs"
)

var refPrefixes = []string{definitionsPrefix, defsPrefix, "#/components/schemas/"}

// Dereference returns a copy of sch in which every sub-schema referencing a bound
// entity is replaced by a copy of that entity's schema. A reference may name the
// entity as "#/definitions/<key>", "#/$defs/<key>", "#/components/schemas/<key>" or
// just "<key>". References to unbound names are left as they are. sch is not modified.
//
// Keywords next to a replaced reference, such as a description, are kept on the
// copy. Definitions local to an entity schema are moved to the definitions of the
// returned schema so that the entity's own references still resolve. A local
// definition whose name is already taken by a different schema is renamed to
// "<key>.<name>".
func Dereference(sch jsonschema.Schema, entities map[string]jsonschema.Schema) jsonschema.Schema {
	inlined := inlineEntities(sch, entities)
	used := make(map[string]bool)

	out := rewriteSchema(sch, func(s jsonschema.Schema) (jsonschema.Schema, bool) {
		if s.Ref == nil {
			return s, false
		}

		key, ok := entityKey(*s.Ref)
		if !ok {
			return s, false
		}

		ent, ok := inlined[key]
		if !ok {
			return s, false
		}
		used[key] = true

		return withSiblings(s, cloneSchema(ent.schema)), true
	})

	for _, key := range sortedKeys(inlined) {
		if !used[key] {
			continue
		}
		for name, def := range inlined[key].definitions {
			out.WithDefinitionsItem(name, rewriteSchemaOrBool(def, keep))
		}
	}

	return out
}

// inlinedEntity is an entity schema stripped of its local definitions, with
// references to them pointing at the names they take in the root schema.
type inlinedEntity struct {
	schema      jsonschema.Schema
	definitions map[string]jsonschema.SchemaOrBool
}

func inlineEntities(root jsonschema.Schema, entities map[string]jsonschema.Schema) map[string]inlinedEntity {
	taken := make(map[string]jsonschema.SchemaOrBool, len(root.Definitions))
	for name, def := range root.Definitions {
		taken[name] = def
	}

	inlined := make(map[string]inlinedEntity, len(entities))
	for _, key := range sortedKeys(entities) {
		ent := entities[key]

		local := localDefinitions(ent)
		ent.Definitions = nil
		if _, ok := ent.ExtraProperties[defsKeyword]; ok {
			ent.ExtraProperties = maps.Clone(ent.ExtraProperties)
			delete(ent.ExtraProperties, defsKeyword)
		}

		renames := make(map[string]string, len(local))
		for _, name := range sortedKeys(local) {
			target := name
			if existing, ok := taken[target]; ok && !sameSchema(existing, local[name]) {
				target = key + "." + name
			}
			taken[target] = local[name]
			renames[name] = target
		}

		relink := func(s jsonschema.Schema) (jsonschema.Schema, bool) {
			if s.Ref == nil {
				return s, false
			}

			for _, prefix := range []string{definitionsPrefix, defsPrefix} {
				if name, ok := strings.CutPrefix(*s.Ref, prefix); ok {
					if target, ok := renames[name]; ok {
						ref := definitionsPrefix + target
						s.Ref = &ref
					}
				}
			}

			return s, false
		}

		definitions := make(map[string]jsonschema.SchemaOrBool, len(local))
		for name, def := range local {
			definitions[renames[name]] = rewriteSchemaOrBool(def, relink)
		}

		inlined[key] = inlinedEntity{
			schema:      rewriteSchema(ent, relink),
			definitions: definitions,
		}
	}

	return inlined
}

// localDefinitions collects both the definitions and the $defs of sch.
func localDefinitions(sch jsonschema.Schema) map[string]jsonschema.SchemaOrBool {
	local := make(map[string]jsonschema.SchemaOrBool, len(sch.Definitions))
	if defs, ok := defsOf(sch.ExtraProperties); ok {
		for name, def := range defs {
			local[name] = def
		}
	}
	for name, def := range sch.Definitions {
		local[name] = def
	}

	return local
}

func defsOf(extra map[string]interface{}) (map[string]jsonschema.SchemaOrBool, bool) {
	raw, ok := extra[defsKeyword]
	if !ok {
		return nil, false
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}

	var defs map[string]jsonschema.SchemaOrBool
	if err := json.Unmarshal(b, &defs); err != nil {
		return nil, false
	}

	return defs, true
}

// withSiblings lays the keywords set next to a $ref over the schema replacing it.
func withSiblings(ref, replacement jsonschema.Schema) jsonschema.Schema {
	ref.Ref = nil

	siblings, err := ref.MarshalJSON()
	if err != nil || string(siblings) == "{}" {
		return replacement
	}

	base, err := replacement.MarshalJSON()
	if err != nil {
		return replacement
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &merged); err != nil {
		return replacement
	}
	if err := json.Unmarshal(siblings, &merged); err != nil {
		return replacement
	}

	b, err := json.Marshal(merged)
	if err != nil {
		return replacement
	}

	var out jsonschema.Schema
	if err := out.UnmarshalJSON(b); err != nil {
		return replacement
	}

	return out
}

func sameSchema(a, b jsonschema.SchemaOrBool) bool {
	aa, errA := a.MarshalJSON()
	bb, errB := b.MarshalJSON()

	return errA == nil && errB == nil && string(aa) == string(bb)
}

func entityKey(ref string) (string, bool) {
	for _, prefix := range refPrefixes {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix), true
		}
	}

	if ref == "" || strings.ContainsAny(ref, "#/") {
		return "", false
	}

	return ref, true
}

func cloneSchema(sch jsonschema.Schema) jsonschema.Schema {
	return rewriteSchema(sch, keep)
}

func keep(s jsonschema.Schema) (jsonschema.Schema, bool) {
	return s, false
}

// =============================================================================

// rewriteFunc returns the sub-schema to use in place of the one given, and
// whether the walk stops there. Stopped sub-schemas are not descended into.
type rewriteFunc func(jsonschema.Schema) (jsonschema.Schema, bool)

// rewriteSchema walks every sub-schema of sch, copying each container it passes
// through so that the result shares no maps or slices with sch.
func rewriteSchema(sch jsonschema.Schema, f rewriteFunc) jsonschema.Schema {
	sch, stop := f(sch)
	if stop {
		return sch
	}

	sch.AdditionalItems = rewritePtr(sch.AdditionalItems, f)

	if sch.Items != nil {
		items := *sch.Items
		items.SchemaOrBool = rewritePtr(items.SchemaOrBool, f)
		items.SchemaArray = rewriteSlice(items.SchemaArray, f)
		sch.Items = &items
	}

	sch.Contains = rewritePtr(sch.Contains, f)
	sch.AdditionalProperties = rewritePtr(sch.AdditionalProperties, f)
	sch.PropertyNames = rewritePtr(sch.PropertyNames, f)

	sch.Properties = rewriteMap(sch.Properties, f)
	sch.PatternProperties = rewriteMap(sch.PatternProperties, f)
	sch.Definitions = rewriteMap(sch.Definitions, f)

	if defs, ok := defsOf(sch.ExtraProperties); ok {
		sch.ExtraProperties = maps.Clone(sch.ExtraProperties)
		sch.ExtraProperties[defsKeyword] = rewriteMap(defs, f)
	}

	sch.AllOf = rewriteSlice(sch.AllOf, f)
	sch.AnyOf = rewriteSlice(sch.AnyOf, f)
	sch.OneOf = rewriteSlice(sch.OneOf, f)

	sch.Not = rewritePtr(sch.Not, f)
	sch.If = rewritePtr(sch.If, f)
	sch.Then = rewritePtr(sch.Then, f)
	sch.Else = rewritePtr(sch.Else, f)

	if sch.Required != nil {
		sch.Required = append([]string(nil), sch.Required...)
	}

	return sch
}

func rewriteSchemaOrBool(sob jsonschema.SchemaOrBool, f rewriteFunc) jsonschema.SchemaOrBool {
	if sob.TypeObject != nil {
		rewritten := rewriteSchema(*sob.TypeObject, f)
		sob.TypeObject = &rewritten
	}

	return sob
}

func rewritePtr(sob *jsonschema.SchemaOrBool, f rewriteFunc) *jsonschema.SchemaOrBool {
	if sob == nil {
		return nil
	}

	rewritten := rewriteSchemaOrBool(*sob, f)

	return &rewritten
}

func rewriteSlice(sobs []jsonschema.SchemaOrBool, f rewriteFunc) []jsonschema.SchemaOrBool {
	if sobs == nil {
		return nil
	}

	out := make([]jsonschema.SchemaOrBool, len(sobs))
	for i, sob := range sobs {
		out[i] = rewriteSchemaOrBool(sob, f)
	}

	return out
}

func rewriteMap(sobs map[string]jsonschema.SchemaOrBool, f rewriteFunc) map[string]jsonschema.SchemaOrBool {
	if sobs == nil {
		return nil
	}

	out := make(map[string]jsonschema.SchemaOrBool, len(sobs))
	for k, sob := range sobs {
		out[k] = rewriteSchemaOrBool(sob, f)
	}

	return out
}
