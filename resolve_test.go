package conform_test

import (
	"testing"

	"github.com/tailbits/conform"
	"gotest.tools/v3/assert"
)

func TestResolveInterface_Rename(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "template", template: "{{item}}.sync", want: "issue.sync"},
		{name: "no template", template: "", want: "trigger"},
		{name: "abstract name", template: "{{item}}.{{name}}", want: "issue.trigger"},
		{name: "spaced placeholders", template: "{{ item }}{{ name }}", want: "issuetrigger"},
		{name: "unbound placeholder", template: "{{owner}}.{{name}}", want: "{{owner}}.trigger"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ext := conform.InterfaceExtension{
				Name: "triggerable",
				Entities: map[string]conform.EntityBinding{
					"item": {Name: "issue", Schema: mustSchema(t, issueSchema)},
				},
				Definition: conform.InterfaceDefinition{
					TemplateName: tc.template,
					Actions: map[string]conform.ActionDefinition{
						"trigger": {},
					},
				},
			}

			resolved, statement := conform.ResolveInterface(ext)

			_, ok := resolved.Actions[tc.want]
			assert.Assert(t, ok, "expected action %q, got %v", tc.want, resolved.Actions)
			assert.Equal(t, len(resolved.Actions), 1)
			assert.Equal(t, statement.Actions["trigger"].Name, tc.want)
		})
	}
}

func TestResolveInterface_MessagesKeepTheirNames(t *testing.T) {
	ext := syncable(t)
	ext.Definition.TemplateName = "{{item}}Channel"
	ext.Definition.Actions = nil
	ext.Definition.Events = nil

	resolved, statement := conform.ResolveInterface(ext)

	channel, ok := resolved.Channels["issueChannel"]
	assert.Assert(t, ok, "channel was not renamed: %v", resolved.Channels)
	assert.Equal(t, statement.Channels["channel"].Name, "issueChannel")

	_, created := channel.Messages["created"]
	_, deleted := channel.Messages["deleted"]
	assert.Assert(t, created)
	assert.Assert(t, deleted)
	assert.Equal(t, len(channel.Messages), 2)
}

func TestResolveInterface_SubstitutesEntities(t *testing.T) {
	resolved, _ := conform.ResolveInterface(syncable(t))

	sync := resolved.Actions["issue.sync"]
	item := sync.Input.Schema.Properties["item"]
	assert.Assert(t, item.TypeObject != nil)
	assertSchema(t, *item.TypeObject, issueSchema)

	list := resolved.Actions["issue.list"]
	items := list.Output.Schema.Properties["items"].TypeObject.Items.SchemaOrBool
	assertSchema(t, *items.TypeObject, issueSchema)

	event := resolved.Events["issue.synced"]
	assertSchema(t, *event.Schema.Properties["item"].TypeObject, issueSchema)

	created := resolved.Channels["issue.channel"].Messages["created"]
	assertSchema(t, *created.Schema.Properties["item"].TypeObject, issueSchema)
}

func TestResolveInterface_DoesNotModifyExtension(t *testing.T) {
	ext := syncable(t)

	_, _ = conform.ResolveInterface(ext)

	ref := ext.Definition.Actions["sync"].Input.Schema.Properties["item"].TypeObject.Ref
	assert.Assert(t, ref != nil)
	assert.Equal(t, *ref, "#/definitions/item")

	_, ok := ext.Definition.Actions["sync"]
	assert.Assert(t, ok, "abstract action was renamed in place")
}

func TestResolveInterface_Statement(t *testing.T) {
	_, statement := conform.ResolveInterface(syncable(t))

	assert.Equal(t, statement.ID, "intver_syncable")
	assert.Equal(t, statement.Name, "syncable")
	assert.Equal(t, statement.Version, "1.0.0")
	assert.DeepEqual(t, statement.Entities, map[string]conform.NameMapping{"item": {Name: "issue"}})
	assert.DeepEqual(t, statement.Actions, map[string]conform.NameMapping{
		"sync": {Name: "issue.sync"},
		"list": {Name: "issue.list"},
	})
	assert.DeepEqual(t, statement.Events, map[string]conform.NameMapping{"synced": {Name: "issue.synced"}})
	assert.DeepEqual(t, statement.Channels, map[string]conform.NameMapping{"channel": {Name: "issue.channel"}})
}

func TestResolveInterface_EmptyDefinition(t *testing.T) {
	resolved, statement := conform.ResolveInterface(conform.InterfaceExtension{
		Name: "empty",
		Entities: map[string]conform.EntityBinding{
			"item": {Name: "issue", Schema: mustSchema(t, issueSchema)},
		},
	})

	assert.Assert(t, resolved.Actions != nil)
	assert.Assert(t, resolved.Events != nil)
	assert.Assert(t, resolved.Channels != nil)
	assert.Equal(t, len(resolved.Actions)+len(resolved.Events)+len(resolved.Channels), 0)
	assert.Equal(t, len(statement.Entities), 1)
}
