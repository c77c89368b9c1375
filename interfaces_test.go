package conform_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tailbits/conform"
	"github.com/tailbits/conform/jsonmerge"
	"gotest.tools/v3/assert"
)

func TestResolveInterfaces_NoInterfaces(t *testing.T) {
	const input = `{"type":"object","properties":{"id":{"type":"string"}}}`

	def := &conform.IntegrationDefinition{
		Name: "github",
		Actions: map[string]conform.ActionDefinition{
			"getIssue": {Input: conform.ActionIO{Schema: mustSchema(t, input)}},
		},
	}

	got, err := conform.ResolveInterfaces(def)
	assert.NilError(t, err)

	assert.Equal(t, got, def)
	assert.Equal(t, len(got.Actions), 1)
	assert.Assert(t, got.Events == nil)
	assert.Assert(t, got.Channels == nil)
	assertSchema(t, got.Actions["getIssue"].Input.Schema, input)

	got, err = conform.ResolveInterfaces(nil)
	assert.NilError(t, err)
	assert.Assert(t, got == nil)
}

func TestResolveInterfaces(t *testing.T) {
	def := &conform.IntegrationDefinition{
		Name: "github",
		Actions: map[string]conform.ActionDefinition{
			"ping": {Title: "Ping"},
		},
		Interfaces: []conform.InterfaceExtension{syncable(t)},
	}

	got, err := conform.ResolveInterfaces(def)
	assert.NilError(t, err)

	assert.Equal(t, got, def)
	for _, name := range []string{"ping", "issue.sync", "issue.list"} {
		_, ok := got.Actions[name]
		assert.Assert(t, ok, "missing action %q", name)
	}
	assert.Equal(t, len(got.Actions), 3)

	_, ok := got.Events["issue.synced"]
	assert.Assert(t, ok)
	_, ok = got.Channels["issue.channel"]
	assert.Assert(t, ok)
}

func TestResolveInterfaces_MergesWithExistingDefinitions(t *testing.T) {
	def := &conform.IntegrationDefinition{
		Name: "github",
		Actions: map[string]conform.ActionDefinition{
			"issue.sync": {
				Title:       "Sync issue",
				Description: "Syncs an issue with GitHub",
				Input: conform.ActionIO{
					Schema: mustSchema(t, `{"type":"object","properties":{"force":{"type":"boolean"},"item":{"type":"string"}}}`),
				},
			},
		},
		Interfaces: []conform.InterfaceExtension{syncable(t)},
	}

	got, err := conform.ResolveInterfaces(def)
	assert.NilError(t, err)

	sync := got.Actions["issue.sync"]
	assert.Equal(t, sync.Title, "Sync")
	assert.Equal(t, sync.Description, "Syncs an issue with GitHub")
	assertSchema(t, sync.Input.Schema, `{"type":"object","properties":{"force":{"type":"boolean"},"item":`+issueSchema+`}}`)
}

func TestResolveInterfaces_LaterInterfacesOverrideEarlierOnes(t *testing.T) {
	first := conform.InterfaceExtension{
		Name: "creatable",
		Definition: conform.InterfaceDefinition{
			Actions: map[string]conform.ActionDefinition{
				"create": {Title: "Create", Description: "first"},
				"remove": {Title: "Remove"},
			},
		},
	}
	second := conform.InterfaceExtension{
		Name: "creatableV2",
		Definition: conform.InterfaceDefinition{
			Actions: map[string]conform.ActionDefinition{
				"create": {Title: "Create item"},
			},
		},
	}

	def := &conform.IntegrationDefinition{
		Name:       "linear",
		Interfaces: []conform.InterfaceExtension{first, second},
	}

	got, err := conform.ResolveInterfaces(def)
	assert.NilError(t, err)

	assert.Equal(t, got.Actions["create"].Title, "Create item")
	assert.Equal(t, got.Actions["create"].Description, "first")
	assert.Equal(t, got.Actions["remove"].Title, "Remove")
}

func TestResolveInterfaces_KindMismatch(t *testing.T) {
	ok := conform.InterfaceExtension{
		Name: "pingable",
		Definition: conform.InterfaceDefinition{
			Actions: map[string]conform.ActionDefinition{"ping": {}},
		},
	}

	def := &conform.IntegrationDefinition{
		Name: "github",
		Events: map[string]conform.EventDefinition{
			"issue.synced": {Schema: mustSchema(t, `{"type":"object","additionalProperties":{"type":"string"}}`)},
		},
		Interfaces: []conform.InterfaceExtension{ok, syncable(t)},
	}

	_, err := conform.ResolveInterfaces(def)

	assert.ErrorContains(t, err, `resolving interface syncable<issue>: merging event "issue.synced"`)
	assert.Assert(t, errors.Is(err, jsonmerge.ErrKindMismatch))

	var mergeErr *conform.MergeError
	assert.Assert(t, errors.As(err, &mergeErr))
	assert.Equal(t, mergeErr.Kind, "event")

	// interfaces before the failing one stay applied, the failing one is not applied at all
	_, applied := def.Actions["ping"]
	assert.Assert(t, applied)
	_, applied = def.Actions["issue.sync"]
	assert.Assert(t, !applied)
}

func TestResolveInterfaces_WithSchemaMerger(t *testing.T) {
	def := &conform.IntegrationDefinition{
		Name: "github",
		Actions: map[string]conform.ActionDefinition{
			"issue.sync": {Input: conform.ActionIO{Schema: mustSchema(t, `{"type":"object","properties":{"item":{"type":"string"}}}`)}},
		},
		Interfaces: []conform.InterfaceExtension{syncable(t)},
	}

	merger := jsonmerge.NewWithOptions(jsonmerge.Options{SchemasMergeStrategy: jsonmerge.ErrorOnDuplicates})
	_, err := conform.ResolveInterfaces(def, conform.WithSchemaMerger(merger))

	var dupErr *jsonmerge.DuplicatePropertyError
	assert.Assert(t, errors.As(err, &dupErr))
	assert.Equal(t, dupErr.Property, "item")
}

func TestResolveInterfaces_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	def := &conform.IntegrationDefinition{
		Name: "github",
		Events: map[string]conform.EventDefinition{
			"issue.synced": {Title: "Synced"},
		},
		Interfaces: []conform.InterfaceExtension{syncable(t)},
	}

	_, err := conform.ResolveInterfaces(def, conform.WithLogger(logger))
	assert.NilError(t, err)

	out := buf.String()
	assert.Assert(t, bytes.Contains(buf.Bytes(), []byte(`"interface":"syncable<issue>"`)), out)
	assert.Assert(t, bytes.Contains(buf.Bytes(), []byte(`"message":"interface resolved"`)), out)
	assert.Assert(t, bytes.Contains(buf.Bytes(), []byte(`"name":"issue.synced"`)), out)
	assert.Assert(t, bytes.Contains(buf.Bytes(), []byte(`"message":"merged with existing definition"`)), out)
}

func TestImplementationStatements(t *testing.T) {
	def := &conform.IntegrationDefinition{
		Name:       "github",
		Interfaces: []conform.InterfaceExtension{syncable(t)},
	}

	statements := conform.ImplementationStatements(def)

	assert.Equal(t, len(statements), 1)
	statement, ok := statements["syncable<issue>"]
	assert.Assert(t, ok, "statements: %v", statements)

	assert.Equal(t, len(statement.Actions), 2)
	assert.Equal(t, len(statement.Events), 1)
	assert.Equal(t, len(statement.Channels), 1)
	assert.Equal(t, len(statement.Entities), 1)

	assert.Assert(t, def.Actions == nil, "statements must not resolve into the integration")
}

func TestImplementationStatements_NoInterfaces(t *testing.T) {
	statements := conform.ImplementationStatements(&conform.IntegrationDefinition{Name: "github"})

	assert.Assert(t, statements != nil)
	assert.Equal(t, len(statements), 0)
}

func TestInterfaceKey(t *testing.T) {
	tests := []struct {
		name     string
		entities map[string]conform.EntityBinding
		want     string
	}{
		{name: "no entities", want: "listable"},
		{name: "one entity", entities: map[string]conform.EntityBinding{"item": {Name: "issue"}}, want: "listable<issue>"},
		{
			name: "ordered by entity key",
			entities: map[string]conform.EntityBinding{
				"owner": {Name: "user"},
				"item":  {Name: "issue"},
			},
			want: "listable<issue,user>",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, conform.InterfaceKey("listable", tc.entities), tc.want)
		})
	}
}

func TestExtend(t *testing.T) {
	def := &conform.IntegrationDefinition{Name: "github"}

	issues := syncable(t)
	pulls := syncable(t)
	pulls.Entities = map[string]conform.EntityBinding{"item": {Name: "pullRequest"}}

	def.Extend(issues).Extend(pulls)
	assert.Equal(t, len(def.Interfaces), 2)
	assert.Equal(t, def.Interfaces[0].Key, "syncable<issue>")
	assert.Equal(t, def.Interfaces[1].Key, "syncable<pullRequest>")

	replacement := syncable(t)
	replacement.Version = "2.0.0"
	def.Extend(replacement)

	assert.Equal(t, len(def.Interfaces), 2)
	assert.Equal(t, def.Interfaces[0].Version, "2.0.0")

	aliased := syncable(t)
	aliased.Key = "issues"
	def.Extend(aliased)

	assert.Equal(t, len(def.Interfaces), 3)
	assert.Equal(t, def.Interfaces[2].Key, "issues")
}
