package conform_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailbits/conform"
	"gotest.tools/v3/assert"
)

func TestParseIntegrationFile(t *testing.T) {
	def, err := conform.ParseIntegrationFile("testdata/github.yaml")
	assert.NilError(t, err)

	assert.Equal(t, def.Name, "github")
	assert.Equal(t, def.Version, "0.4.0")
	assert.Equal(t, def.Title, "GitHub")
	assert.Equal(t, len(def.Actions), 2)
	assert.Equal(t, def.Actions["issue.list"].Cacheable, true)

	assertSchema(t, def.Actions["getRepository"].Input.Schema,
		`{"type":"object","properties":{"owner":{"type":"string"},"repo":{"type":"string"}},"required":["owner","repo"]}`)

	// schemas left out default to an empty object
	assertSchema(t, def.Actions["issue.list"].Output.Schema, `{"type":"object","properties":{}}`)
	assertSchema(t, def.Events["ping"].Schema, `{"type":"object","properties":{}}`)
	assert.DeepEqual(t, def.Events["ping"].Extensions, map[string]any{"hidden": true})

	assert.Equal(t, len(def.Interfaces), 2)
	listable := def.Interfaces[0]
	assert.Equal(t, listable.Key, "listable<issue>")
	assert.Equal(t, listable.ID, "intver_listable")
	assert.Equal(t, listable.Definition.TemplateName, "{{item}}.{{name}}")
	assert.Equal(t, listable.Entities["item"].Name, "issue")
	assert.Equal(t, def.Interfaces[1].Key, "creatable<issue>")

	ref := listable.Definition.Actions["list"].Output.Schema.Properties["items"].TypeObject.Items.SchemaOrBool.TypeObject.Ref
	assert.Assert(t, ref != nil)
	assert.Equal(t, *ref, "#/definitions/item")
}

func TestParseIntegrationFile_Resolve(t *testing.T) {
	def, err := conform.ParseIntegrationFile("testdata/github.yaml")
	assert.NilError(t, err)

	_, err = conform.ResolveInterfaces(def)
	assert.NilError(t, err)

	list := def.Actions["issue.list"]
	assert.Equal(t, list.Title, "List")
	assert.Equal(t, list.Cacheable, true)
	assertSchema(t, list.Input.Schema, `{"type":"object","properties":{"state":{"type":"string","enum":["open","closed"]},"nextToken":{"type":"string"}}}`)
	assert.DeepEqual(t, list.Output.Schema.Required, []string{"items"})

	_, ok := def.Events["issueCreated"]
	assert.Assert(t, ok, "events: %v", def.Events)

	channel, ok := def.Channels["issueChannel"]
	assert.Assert(t, ok, "channels: %v", def.Channels)
	_, ok = channel.Messages["comment"]
	assert.Assert(t, ok)
}

func TestParseIntegration(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "json document",
			doc:  `{"name":"linear","events":{"issueCreated":{"schema":{"type":"object"}}}}`,
		},
		{
			name:    "missing name",
			doc:     `version: 1.0.0`,
			wantErr: "integration name is required",
		},
		{
			name:    "invalid yaml",
			doc:     "name: [unclosed",
			wantErr: "parse yaml",
		},
		{
			name:    "interfaces as a list",
			doc:     "name: linear\ninterfaces:\n  - name: listable\n",
			wantErr: "interfaces must be a mapping",
		},
		{
			name:    "schema of the wrong type",
			doc:     "name: linear\nevents:\n  created:\n    schema: [1, 2]\n",
			wantErr: "invalid schema",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def, err := conform.ParseIntegration([]byte(tc.doc))
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}

			assert.NilError(t, err)
			assert.Assert(t, def != nil)
		})
	}
}

func TestParseIntegration_MissingName(t *testing.T) {
	_, err := conform.ParseIntegration([]byte(`title: Linear`))
	assert.Assert(t, errors.Is(err, conform.ErrMissingName))
}

func TestParseIntegrationFile_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := conform.ParseIntegrationFile(path)
	assert.ErrorContains(t, err, "read file")
	assert.Assert(t, errors.Is(err, os.ErrNotExist))
}
