// Package conform resolves the interfaces an integration declares conformance to.
//
// An interface is an abstract contract of actions, events and channels whose
// schemas reference named entities. Attaching an interface to an integration
// binds each entity to a concrete schema and name; resolution substitutes those
// bindings into the contract, renames its definitions with the interface's
// naming template and merges the result into the integration's own tables.
package conform

import (
	"github.com/swaggest/jsonschema-go"
)

// IntegrationDefinition is the aggregate resolution operates on.
//
// ResolveInterfaces mutates Actions, Events and Channels in place. The caller must
// not modify the definition concurrently while it is being resolved.
type IntegrationDefinition struct {
	Name        string                       `json:"name"`
	Version     string                       `json:"version,omitempty"`
	Title       string                       `json:"title,omitempty"`
	Description string                       `json:"description,omitempty"`
	Actions     map[string]ActionDefinition  `json:"actions,omitempty"`
	Events      map[string]EventDefinition   `json:"events,omitempty"`
	Channels    map[string]ChannelDefinition `json:"channels,omitempty"`
	// Interfaces are resolved in slice order; later entries override earlier ones.
	Interfaces []InterfaceExtension `json:"interfaces,omitempty"`
}

type ActionDefinition struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Billable    bool           `json:"billable,omitempty"`
	Cacheable   bool           `json:"cacheable,omitempty"`
	Input       ActionIO       `json:"input"`
	Output      ActionIO       `json:"output"`
	Extensions  map[string]any `json:"extensions,omitempty"`
}

type ActionIO struct {
	Schema jsonschema.Schema `json:"schema"`
}

type EventDefinition struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Schema      jsonschema.Schema `json:"schema"`
	Extensions  map[string]any    `json:"extensions,omitempty"`
}

// ChannelDefinition groups messages under a namespace. Message names are never renamed.
type ChannelDefinition struct {
	Title       string                       `json:"title,omitempty"`
	Description string                       `json:"description,omitempty"`
	Messages    map[string]MessageDefinition `json:"messages"`
	Extensions  map[string]any               `json:"extensions,omitempty"`
}

type MessageDefinition struct {
	Schema jsonschema.Schema `json:"schema"`
}

// InterfaceExtension attaches an abstract interface to an integration.
type InterfaceExtension struct {
	// Key identifies the attachment. When empty it is derived with InterfaceKey.
	Key        string                   `json:"key"`
	ID         string                   `json:"id,omitempty"`
	Name       string                   `json:"name"`
	Version    string                   `json:"version"`
	Entities   map[string]EntityBinding `json:"entities,omitempty"`
	Definition InterfaceDefinition      `json:"definition"`
}

// EntityBinding is the concrete schema and name an entity placeholder resolves to.
type EntityBinding struct {
	Name   string            `json:"name"`
	Schema jsonschema.Schema `json:"schema"`
}

// InterfaceDefinition is the abstract contract of an interface.
type InterfaceDefinition struct {
	// TemplateName renames resolved definitions, e.g. "{{item}}{{name}}".
	// The entity keys and the reserved key "name" are available to the template.
	TemplateName string                       `json:"templateName,omitempty"`
	Actions      map[string]ActionDefinition  `json:"actions,omitempty"`
	Events       map[string]EventDefinition   `json:"events,omitempty"`
	Channels     map[string]ChannelDefinition `json:"channels,omitempty"`
}

// ResolvedInterface holds the concrete definitions produced by resolving one interface.
type ResolvedInterface struct {
	Actions  map[string]ActionDefinition  `json:"actions"`
	Events   map[string]EventDefinition   `json:"events"`
	Channels map[string]ChannelDefinition `json:"channels"`
}

// InterfaceImplStatement records the concrete name every abstract name of an interface resolved to.
type InterfaceImplStatement struct {
	ID       string                 `json:"id,omitempty"`
	Name     string                 `json:"name"`
	Version  string                 `json:"version"`
	Entities map[string]NameMapping `json:"entities"`
	Actions  map[string]NameMapping `json:"actions"`
	Events   map[string]NameMapping `json:"events"`
	Channels map[string]NameMapping `json:"channels"`
}

type NameMapping struct {
	Name string `json:"name"`
}
