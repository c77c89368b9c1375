package conform_test

import (
	"encoding/json"
	"testing"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/conform"
	"gotest.tools/v3/assert"
)

func mustSchema(t *testing.T, doc string) jsonschema.Schema {
	t.Helper()

	var sch jsonschema.Schema
	assert.NilError(t, json.Unmarshal([]byte(doc), &sch), "invalid schema %s", doc)

	return sch
}

// asMap normalizes a schema so that two schemas can be compared regardless of key order.
func asMap(t *testing.T, sch jsonschema.Schema) map[string]interface{} {
	t.Helper()

	b, err := sch.MarshalJSON()
	assert.NilError(t, err)

	var m map[string]interface{}
	assert.NilError(t, json.Unmarshal(b, &m))

	return m
}

func assertSchema(t *testing.T, got jsonschema.Schema, want string) {
	t.Helper()
	assert.DeepEqual(t, asMap(t, got), asMap(t, mustSchema(t, want)))
}

const issueSchema = `{"type":"object","properties":{"id":{"type":"string"},"title":{"type":"string"}},"required":["id"]}`

// syncable is an interface over an "item" entity with two actions, one event and
// one channel carrying two messages.
func syncable(t *testing.T) conform.InterfaceExtension {
	t.Helper()

	return conform.InterfaceExtension{
		ID:      "intver_syncable",
		Name:    "syncable",
		Version: "1.0.0",
		Entities: map[string]conform.EntityBinding{
			"item": {Name: "issue", Schema: mustSchema(t, issueSchema)},
		},
		Definition: conform.InterfaceDefinition{
			TemplateName: "{{item}}.{{name}}",
			Actions: map[string]conform.ActionDefinition{
				"sync": {
					Title:  "Sync",
					Input:  conform.ActionIO{Schema: mustSchema(t, `{"type":"object","properties":{"item":{"$ref":"#/definitions/item"}}}`)},
					Output: conform.ActionIO{Schema: mustSchema(t, `{"type":"object","properties":{"ok":{"type":"boolean"}}}`)},
				},
				"list": {
					Input:  conform.ActionIO{Schema: mustSchema(t, `{"type":"object","properties":{}}`)},
					Output: conform.ActionIO{Schema: mustSchema(t, `{"type":"object","properties":{"items":{"type":"array","items":{"$ref":"#/definitions/item"}}}}`)},
				},
			},
			Events: map[string]conform.EventDefinition{
				"synced": {
					Schema: mustSchema(t, `{"type":"object","properties":{"item":{"$ref":"#/definitions/item"}}}`),
				},
			},
			Channels: map[string]conform.ChannelDefinition{
				"channel": {
					Messages: map[string]conform.MessageDefinition{
						"created": {Schema: mustSchema(t, `{"type":"object","properties":{"item":{"$ref":"#/definitions/item"}}}`)},
						"deleted": {Schema: mustSchema(t, `{"type":"object","properties":{"id":{"type":"string"}}}`)},
					},
				},
			},
		},
	}
}
