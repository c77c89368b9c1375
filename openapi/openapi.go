// Package openapi renders a resolved integration as an OpenAPI 3.1 document.
//
// Actions are exposed as POST /actions/{action}, events as POST /events/{event}
// and channel messages as POST /channels/{channel}/messages/{message}. The schemas
// of every operation, and the entities bound by the integration's interfaces, are
// published as components.
package openapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tailbits/conform"
	"github.com/tailbits/conform/internal/naming"
)

const (
	TagActions  = "Actions"
	TagEvents   = "Events"
	TagChannels = "Channels"
)

var ErrNoIntegration = errors.New("integration definition is required")

type openapiConfig struct {
	title       string
	version     string
	description string
	servers     []string
	lint        bool
	filterFn    func(Record) bool
	transformFn func(*Record)
	logger      zerolog.Logger
}

type Option func(*openapiConfig)

// Info overrides the title and version of the document, which default to the integration's.
func Info(title, version string) Option {
	return func(c *openapiConfig) {
		if title != "" {
			c.title = title
		}
		if version != "" {
			c.version = version
		}
	}
}

func Server(url string) Option {
	return func(c *openapiConfig) {
		c.servers = append(c.servers, url)
	}
}

// Lint runs vacuum's recommended ruleset over the generated document.
func Lint(enabled bool) Option {
	return func(c *openapiConfig) {
		c.lint = enabled
	}
}

func Filter(fn func(Record) bool) Option {
	return func(c *openapiConfig) {
		c.filterFn = fn
	}
}

func Transform(fn func(*Record)) Option {
	return func(c *openapiConfig) {
		c.transformFn = fn
	}
}

// WithLogger reports conflicting component definitions, with a diff of the two schemas.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *openapiConfig) {
		c.logger = logger
	}
}

// New renders def as an OpenAPI document.
func New(def *conform.IntegrationDefinition, opts ...Option) ([]byte, error) {
	gen, err := NewGenerator(def, opts...)
	if err != nil {
		return nil, err
	}

	return gen.ToSchema()
}

type Generator struct {
	*Reflector
	records  []Record
	entities []Model
	config   openapiConfig
}

func NewGenerator(def *conform.IntegrationDefinition, opts ...Option) (*Generator, error) {
	if def == nil {
		return nil, ErrNoIntegration
	}

	config := openapiConfig{
		title:       def.Title,
		version:     def.Version,
		description: def.Description,
		filterFn:    func(r Record) bool { return true },
		transformFn: func(r *Record) {},
		logger:      zerolog.Nop(),
	}
	if config.title == "" {
		config.title = naming.KebabToTitleCase(naming.ToKebabCase(def.Name))
	}
	if config.version == "" {
		config.version = "0.0.0"
	}

	for _, opt := range opts {
		opt(&config)
	}

	gen := &Generator{
		Reflector: newReflector(config),
		config:    config,
	}

	for _, ext := range def.Interfaces {
		for _, key := range sortedNames(ext.Entities) {
			entity := ext.Entities[key]
			gen.entities = append(gen.entities, NewModel(entity.Name, entity.Schema))
		}
	}

	for _, record := range toRecords(def) {
		config.transformFn(&record)

		if config.filterFn(record) {
			gen.records = append(gen.records, record)
		}
	}

	return gen, nil
}

// Records returns the operations the document is generated from.
func (g *Generator) Records() []Record {
	return g.records
}

// =============================================================================

func toRecords(def *conform.IntegrationDefinition) []Record {
	records := make([]Record, 0, len(def.Actions)+len(def.Events)+len(def.Channels))

	for _, name := range sortedNames(def.Actions) {
		action := def.Actions[name]
		slug := naming.ToKebabCase(name)

		record := Record{
			ID:            "action_" + snake(slug),
			Method:        http.MethodPost,
			Path:          "/actions/" + slug,
			Summary:       action.Title,
			Description:   action.Description,
			SuccessStatus: http.StatusOK,
			Tags:          []string{TagActions},
			Extensions:    actionExtensions(action),
		}
		record.AddInputModel(defName(slug, "Input"), action.Input.Schema)
		record.AddOutputModel(defName(slug, "Output"), action.Output.Schema)

		records = append(records, record)
	}

	for _, name := range sortedNames(def.Events) {
		event := def.Events[name]
		slug := naming.ToKebabCase(name)

		record := Record{
			ID:            "event_" + snake(slug),
			Method:        http.MethodPost,
			Path:          "/events/" + slug,
			Summary:       event.Title,
			Description:   event.Description,
			SuccessStatus: http.StatusAccepted,
			Tags:          []string{TagEvents},
			Extensions:    event.Extensions,
		}
		record.AddInputModel(defName(slug, "Event"), event.Schema)

		records = append(records, record)
	}

	for _, channelName := range sortedNames(def.Channels) {
		channel := def.Channels[channelName]
		channelSlug := naming.ToKebabCase(channelName)

		for _, messageName := range sortedNames(channel.Messages) {
			message := channel.Messages[messageName]
			messageSlug := naming.ToKebabCase(messageName)

			record := Record{
				ID:            "message_" + snake(channelSlug) + "_" + snake(messageSlug),
				Method:        http.MethodPost,
				Path:          "/channels/" + channelSlug + "/messages/" + messageSlug,
				Summary:       channel.Title,
				Description:   channel.Description,
				SuccessStatus: http.StatusAccepted,
				Tags:          []string{TagChannels},
				Extensions:    channel.Extensions,
			}
			record.AddInputModel(defName(channelSlug, messageSlug, "Message"), message.Schema)

			records = append(records, record)
		}
	}

	return records
}

func actionExtensions(action conform.ActionDefinition) map[string]interface{} {
	ext := make(map[string]interface{}, len(action.Extensions)+2)
	for k, v := range action.Extensions {
		ext[k] = v
	}
	if action.Billable {
		ext["x-billable"] = true
	}
	if action.Cacheable {
		ext["x-cacheable"] = true
	}

	return ext
}

// defName joins kebab-case parts into a PascalCase component name.
func defName(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ReplaceAll(naming.KebabToTitleCase(part), " ", ""))
	}

	return b.String()
}

func snake(slug string) string {
	return strings.ReplaceAll(slug, "-", "_")
}
