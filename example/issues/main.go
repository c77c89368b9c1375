package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/conform"
	"github.com/tailbits/conform/model"
	"github.com/tailbits/conform/openapi"
)

var _ model.WithSchema = (*Issue)(nil)

type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
}

func (i *Issue) Name() string {
	return "issue"
}

func (i *Issue) Schema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {
			"number": { "type": "integer" },
			"title": { "type": "string" },
			"state": { "type": "string", "enum": ["open", "closed"] }
		},
		"required": ["number", "title"]
	}`)
}

func (i *Issue) Example() []byte {
	return []byte(`{
		"number": 42,
		"title": "Resolve interfaces before packaging",
		"state": "open"
	}`)
}

// listable is an interface any integration exposing a paginated collection can implement.
func listable(item conform.EntityBinding) conform.InterfaceExtension {
	return conform.InterfaceExtension{
		Name:     "listable",
		Version:  "0.0.1",
		Entities: map[string]conform.EntityBinding{"item": item},
		Definition: conform.InterfaceDefinition{
			TemplateName: "{{item}}{{name}}",
			Actions: map[string]conform.ActionDefinition{
				"List": {
					Title: "List",
					Input: conform.ActionIO{Schema: mustSchema(`{
						"type": "object",
						"properties": { "nextToken": { "type": "string" } }
					}`)},
					Output: conform.ActionIO{Schema: mustSchema(`{
						"type": "object",
						"properties": {
							"items": { "type": "array", "items": { "$ref": "#/definitions/item" } },
							"nextToken": { "type": "string" }
						},
						"required": ["items"]
					}`)},
				},
			},
		},
	}
}

func mustSchema(doc string) jsonschema.Schema {
	var sch jsonschema.Schema
	if err := sch.UnmarshalJSON([]byte(doc)); err != nil {
		logger.Fatal().Err(err).Msg("invalid schema")
	}

	return sch
}

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel).With().Timestamp().Logger()

func main() {
	issue, err := conform.BindEntity(&Issue{})
	if err != nil {
		logger.Fatal().Err(err).Msg("binding issue entity")
	}

	def := &conform.IntegrationDefinition{
		Name:    "github",
		Version: "0.1.0",
		Title:   "GitHub",
		Actions: map[string]conform.ActionDefinition{
			"issueList": {
				Description: "Lists the issues of a repository",
				Input: conform.ActionIO{Schema: mustSchema(`{
					"type": "object",
					"properties": { "repo": { "type": "string" } },
					"required": ["repo"]
				}`)},
			},
		},
	}
	def.Extend(listable(issue))

	if _, err := conform.ResolveInterfaces(def, conform.WithLogger(logger)); err != nil {
		logger.Fatal().Err(err).Msg("resolving interfaces")
	}

	statements, err := json.MarshalIndent(conform.ImplementationStatements(def), "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("marshaling statements")
	}
	fmt.Println(string(statements))

	if err := def.ValidateActionOutput("issueList", (&Issue{}).Example()); err != nil {
		// a single issue is not a page of issues
		fmt.Println(err)
	}

	doc, err := openapi.New(def, openapi.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("generating openapi document")
	}

	if err := os.WriteFile("openapi.json", doc, 0o644); err != nil {
		logger.Fatal().Err(err).Msg("writing openapi.json")
	}
}
