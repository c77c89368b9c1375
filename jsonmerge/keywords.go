package jsonmerge

import (
	"encoding/json"
	"fmt"

	"github.com/swaggest/jsonschema-go"
)

// keywordsOf strips the keywords an ObjectSchema models explicitly.
func keywordsOf(s jsonschema.Schema) jsonschema.Schema {
	s.Type = nil
	s.Properties = nil
	s.Required = nil
	s.AdditionalProperties = nil
	s.Title = nil
	s.Description = nil

	return s
}

// mergeKeywords overlays the keywords of b onto those of a. Definitions are
// merged by name and allOf lists are concatenated; any other keyword set in b
// replaces the one in a.
func mergeKeywords(a, b jsonschema.Schema) (jsonschema.Schema, error) {
	merged, err := keywordMap(a)
	if err != nil {
		return jsonschema.Schema{}, err
	}

	overlay, err := keywordMap(b)
	if err != nil {
		return jsonschema.Schema{}, err
	}

	for key, val := range overlay {
		switch key {
		case "definitions", "$defs":
			merged[key], err = mergeMembers(merged[key], val)
		case "allOf":
			merged[key], err = concatItems(merged[key], val)
		default:
			merged[key] = val
		}
		if err != nil {
			return jsonschema.Schema{}, fmt.Errorf("merge %s: %w", key, err)
		}
	}

	if len(merged) == 0 {
		return jsonschema.Schema{}, nil
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return jsonschema.Schema{}, err
	}

	var sch jsonschema.Schema
	if err := sch.UnmarshalJSON(raw); err != nil {
		return jsonschema.Schema{}, err
	}

	return sch, nil
}

func keywordMap(s jsonschema.Schema) (map[string]json.RawMessage, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}

	m := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	return m, nil
}

func mergeMembers(a, b json.RawMessage) (json.RawMessage, error) {
	if a == nil {
		return b, nil
	}

	members := make(map[string]json.RawMessage)
	if err := json.Unmarshal(a, &members); err != nil {
		return nil, err
	}
	// members of b replace those of a with the same name
	if err := json.Unmarshal(b, &members); err != nil {
		return nil, err
	}

	return json.Marshal(members)
}

func concatItems(a, b json.RawMessage) (json.RawMessage, error) {
	if a == nil {
		return b, nil
	}

	var items, more []json.RawMessage
	if err := json.Unmarshal(a, &items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &more); err != nil {
		return nil, err
	}

	return json.Marshal(append(items, more...))
}

func isObject(t *jsonschema.Type) bool {
	switch {
	case t == nil:
		return true
	case t.SimpleTypes != nil:
		return *t.SimpleTypes == jsonschema.Object
	case len(t.SliceOfSimpleTypeValues) == 1:
		return t.SliceOfSimpleTypeValues[0] == jsonschema.Object
	default:
		return len(t.SliceOfSimpleTypeValues) == 0
	}
}

func typeName(t *jsonschema.Type) string {
	raw, err := t.MarshalJSON()
	if err != nil {
		return "unknown"
	}

	return string(raw)
}
