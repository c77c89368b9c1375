package openapi

import (
	"fmt"
	"sort"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi31"
)

// ToSchema generates the document. It fails when two components share a name but not a schema.
func (g *Generator) ToSchema() ([]byte, error) {
	for _, entity := range g.entities {
		if err := g.addModel(entity); err != nil {
			return nil, fmt.Errorf("failed to add entity %s: %w", entity.Name(), err)
		}
	}

	if err := g.ingest(g.records); err != nil {
		return nil, fmt.Errorf("failed to ingest records: %w", err)
	}

	collectedTags := []string{}
	for tag := range g.allTags {
		collectedTags = append(collectedTags, tag)
	}

	sort.Strings(collectedTags)
	g.collectTags(collectedTags)
	if err := g.collectDefinitions(); err != nil {
		return nil, fmt.Errorf("failed to collect definitions: %w", err)
	}

	if !g.config.lint {
		return g.marshalJSON()
	}

	if err := g.lint(); err != nil {
		return nil, fmt.Errorf("failed to validate the generated spec: %w", err)
	}

	return g.marshalJSON()
}

func newReflector(config openapiConfig) *Reflector {
	reflector := openapi31.NewReflector()
	reflector.Spec = &openapi31.Spec{Openapi: "3.1.0"}
	reflector.Spec.Info.
		WithTitle(config.title).
		WithVersion(config.version)
	if config.description != "" {
		reflector.Spec.Info.WithDescription(config.description)
	}

	if len(config.servers) > 0 {
		servers := make([]openapi31.Server, len(config.servers))
		for i, url := range config.servers {
			servers[i] = openapi31.Server{URL: url}
		}
		reflector.Spec.WithServers(servers...)
	}

	reflector.Reflector.DefaultOptions = append(reflector.Reflector.DefaultOptions, jsonschema.DefinitionsPrefix(componentsPrefix))

	return &Reflector{
		Reflector: reflector,
		allDefs:   make(definitionsMap),
		allTags:   make(map[string]bool),
		log:       config.logger,
	}
}
