package conform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/conform/model"
	"gopkg.in/yaml.v3"
)

// ErrMissingName occurs when a definition file does not name its integration.
var ErrMissingName = errors.New("integration name is required")

// ParseIntegrationFile parses an integration definition from a YAML or JSON file.
func ParseIntegrationFile(path string) (*IntegrationDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	return ParseIntegration(data)
}

// ParseIntegration parses an integration definition from YAML bytes. JSON is accepted as well.
// Schemas are written as JSON schema documents. Interfaces keep the order they are declared in.
func ParseIntegration(data []byte) (*IntegrationDefinition, error) {
	var doc integrationDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if doc.Name == "" {
		return nil, ErrMissingName
	}

	def := &IntegrationDefinition{
		Name:        doc.Name,
		Version:     doc.Version,
		Title:       doc.Title,
		Description: doc.Description,
		Actions:     toActions(doc.Actions),
		Events:      toEvents(doc.Events),
		Channels:    toChannels(doc.Channels),
		Interfaces:  doc.Interfaces,
	}

	return def, nil
}

// =============================================================================

type integrationDocument struct {
	Name        string                     `yaml:"name"`
	Version     string                     `yaml:"version"`
	Title       string                     `yaml:"title"`
	Description string                     `yaml:"description"`
	Actions     map[string]actionDocument  `yaml:"actions"`
	Events      map[string]eventDocument   `yaml:"events"`
	Channels    map[string]channelDocument `yaml:"channels"`
	Interfaces  interfaceList              `yaml:"interfaces"`
}

type actionDocument struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Billable    bool           `yaml:"billable"`
	Cacheable   bool           `yaml:"cacheable"`
	Input       schemaHolder   `yaml:"input"`
	Output      schemaHolder   `yaml:"output"`
	Extensions  map[string]any `yaml:"extensions"`
}

type eventDocument struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Schema      *yamlSchema    `yaml:"schema"`
	Extensions  map[string]any `yaml:"extensions"`
}

type channelDocument struct {
	Title       string                  `yaml:"title"`
	Description string                  `yaml:"description"`
	Messages    map[string]schemaHolder `yaml:"messages"`
	Extensions  map[string]any          `yaml:"extensions"`
}

type schemaHolder struct {
	Schema *yamlSchema `yaml:"schema"`
}

type interfaceDocument struct {
	ID         string                    `yaml:"id"`
	Name       string                    `yaml:"name"`
	Version    string                    `yaml:"version"`
	Entities   map[string]entityDocument `yaml:"entities"`
	Definition struct {
		TemplateName string                     `yaml:"templateName"`
		Actions      map[string]actionDocument  `yaml:"actions"`
		Events       map[string]eventDocument   `yaml:"events"`
		Channels     map[string]channelDocument `yaml:"channels"`
	} `yaml:"definition"`
}

type entityDocument struct {
	Name   string      `yaml:"name"`
	Schema *yamlSchema `yaml:"schema"`
}

// yamlSchema decodes a JSON schema written in YAML.
type yamlSchema struct {
	jsonschema.Schema
}

func (s *yamlSchema) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("line %d: schema is not a JSON document: %w", node.Line, err)
	}

	if err := s.Schema.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("line %d: invalid schema: %w", node.Line, err)
	}

	return nil
}

// interfaceList decodes the interfaces mapping in declaration order.
type interfaceList []InterfaceExtension

func (l *interfaceList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: interfaces must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value

		var doc interfaceDocument
		if err := node.Content[i+1].Decode(&doc); err != nil {
			return fmt.Errorf("interface %q: %w", key, err)
		}

		entities := make(map[string]EntityBinding, len(doc.Entities))
		for entityKey, entity := range doc.Entities {
			entities[entityKey] = EntityBinding{
				Name:   entity.Name,
				Schema: orEmpty(entity.Schema),
			}
		}

		*l = append(*l, InterfaceExtension{
			Key:      key,
			ID:       doc.ID,
			Name:     doc.Name,
			Version:  doc.Version,
			Entities: entities,
			Definition: InterfaceDefinition{
				TemplateName: doc.Definition.TemplateName,
				Actions:      toActions(doc.Definition.Actions),
				Events:       toEvents(doc.Definition.Events),
				Channels:     toChannels(doc.Definition.Channels),
			},
		})
	}

	return nil
}

func toActions(docs map[string]actionDocument) map[string]ActionDefinition {
	if docs == nil {
		return nil
	}

	actions := make(map[string]ActionDefinition, len(docs))
	for name, doc := range docs {
		actions[name] = ActionDefinition{
			Title:       doc.Title,
			Description: doc.Description,
			Billable:    doc.Billable,
			Cacheable:   doc.Cacheable,
			Input:       ActionIO{Schema: orEmpty(doc.Input.Schema)},
			Output:      ActionIO{Schema: orEmpty(doc.Output.Schema)},
			Extensions:  doc.Extensions,
		}
	}

	return actions
}

func toEvents(docs map[string]eventDocument) map[string]EventDefinition {
	if docs == nil {
		return nil
	}

	events := make(map[string]EventDefinition, len(docs))
	for name, doc := range docs {
		events[name] = EventDefinition{
			Title:       doc.Title,
			Description: doc.Description,
			Schema:      orEmpty(doc.Schema),
			Extensions:  doc.Extensions,
		}
	}

	return events
}

func toChannels(docs map[string]channelDocument) map[string]ChannelDefinition {
	if docs == nil {
		return nil
	}

	channels := make(map[string]ChannelDefinition, len(docs))
	for name, doc := range docs {
		messages := make(map[string]MessageDefinition, len(doc.Messages))
		for msgName, msg := range doc.Messages {
			messages[msgName] = MessageDefinition{Schema: orEmpty(msg.Schema)}
		}

		channels[name] = ChannelDefinition{
			Title:       doc.Title,
			Description: doc.Description,
			Messages:    messages,
			Extensions:  doc.Extensions,
		}
	}

	return channels
}

// orEmpty falls back to the empty object schema for definitions that leave their schema out.
func orEmpty(s *yamlSchema) jsonschema.Schema {
	if s != nil {
		return s.Schema
	}

	var empty jsonschema.Schema
	if err := empty.UnmarshalJSON(model.Empty{}.Schema()); err != nil {
		panic(fmt.Errorf("empty object schema: %w", err))
	}

	return empty
}
