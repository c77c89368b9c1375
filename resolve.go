package conform

import (
	"maps"
	"sort"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/conform/internal/naming"
)

// templateNameKey is the binding under which a naming template receives the abstract name.
const templateNameKey = "name"

// ResolveInterface substitutes the entity bindings of ext into its abstract
// definitions and renames actions, events and channels with the interface's
// naming template. The statement maps every abstract name to its concrete name.
// ext is not modified.
func ResolveInterface(ext InterfaceExtension) (ResolvedInterface, InterfaceImplStatement) {
	entitySchemas := make(map[string]jsonschema.Schema, len(ext.Entities))
	entityNames := make(map[string]string, len(ext.Entities))
	for key, entity := range ext.Entities {
		entitySchemas[key] = entity.Schema
		entityNames[key] = entity.Name
	}

	def := ext.Definition
	rename := func(name string) string {
		return renameDefinition(name, def.TemplateName, entityNames)
	}

	resolved := ResolvedInterface{
		Actions:  make(map[string]ActionDefinition, len(def.Actions)),
		Events:   make(map[string]EventDefinition, len(def.Events)),
		Channels: make(map[string]ChannelDefinition, len(def.Channels)),
	}
	statement := InterfaceImplStatement{
		ID:       ext.ID,
		Name:     ext.Name,
		Version:  ext.Version,
		Entities: make(map[string]NameMapping, len(ext.Entities)),
		Actions:  make(map[string]NameMapping, len(def.Actions)),
		Events:   make(map[string]NameMapping, len(def.Events)),
		Channels: make(map[string]NameMapping, len(def.Channels)),
	}

	// sorted so that two abstract names rendering to the same name always resolve the same way
	for _, name := range sortedKeys(def.Actions) {
		action := def.Actions[name]
		action.Input.Schema = Dereference(action.Input.Schema, entitySchemas)
		action.Output.Schema = Dereference(action.Output.Schema, entitySchemas)
		action.Extensions = maps.Clone(action.Extensions)

		newName := rename(name)
		resolved.Actions[newName] = action
		statement.Actions[name] = NameMapping{Name: newName}
	}

	for _, name := range sortedKeys(def.Events) {
		event := def.Events[name]
		event.Schema = Dereference(event.Schema, entitySchemas)
		event.Extensions = maps.Clone(event.Extensions)

		newName := rename(name)
		resolved.Events[newName] = event
		statement.Events[name] = NameMapping{Name: newName}
	}

	for _, name := range sortedKeys(def.Channels) {
		channel := def.Channels[name]

		messages := make(map[string]MessageDefinition, len(channel.Messages))
		for msgName, msg := range channel.Messages {
			msg.Schema = Dereference(msg.Schema, entitySchemas)
			messages[msgName] = msg
		}
		channel.Messages = messages
		channel.Extensions = maps.Clone(channel.Extensions)

		newName := rename(name)
		resolved.Channels[newName] = channel
		statement.Channels[name] = NameMapping{Name: newName}
	}

	for key, entity := range ext.Entities {
		statement.Entities[key] = NameMapping{Name: entity.Name}
	}

	return resolved, statement
}

// renameDefinition derives the concrete name of an action, event or channel.
// Without a template the abstract name is kept.
func renameDefinition(name string, templateName string, entityNames map[string]string) string {
	if templateName == "" {
		return name
	}

	bindings := make(map[string]string, len(entityNames)+1)
	for key, entityName := range entityNames {
		bindings[key] = entityName
	}
	bindings[templateNameKey] = name

	return naming.Render(templateName, bindings)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
