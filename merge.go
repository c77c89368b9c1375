package conform

import (
	"fmt"

	"github.com/tailbits/conform/jsonmerge"
)

// MergeError reports which definition could not be merged.
type MergeError struct {
	Kind string
	Name string
	Err  error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merging %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// MergeActions merges the override b into the base a.
//
// The output schema is merged from a's input schema and b's output schema. This
// pairing matches the behavior existing integrations were built against.
func MergeActions(a, b ActionDefinition) (ActionDefinition, error) {
	return newDefinitionMerger(jsonmerge.New()).actions(a, b)
}

func MergeEvents(a, b EventDefinition) (EventDefinition, error) {
	return newDefinitionMerger(jsonmerge.New()).events(a, b)
}

// MergeChannels merges the messages of both channels, merging messages of the same name.
func MergeChannels(a, b ChannelDefinition) (ChannelDefinition, error) {
	return newDefinitionMerger(jsonmerge.New()).channels(a, b)
}

func MergeMessages(a, b MessageDefinition) (MessageDefinition, error) {
	return newDefinitionMerger(jsonmerge.New()).messages(a, b)
}

// definitionMerger applies a schema merger to every schema-bearing field of a
// definition. Other fields of b shadow those of a when they are set.
type definitionMerger struct {
	schemas jsonmerge.Merger
}

func newDefinitionMerger(schemas jsonmerge.Merger) definitionMerger {
	return definitionMerger{schemas: schemas}
}

func (m definitionMerger) actions(a, b ActionDefinition) (ActionDefinition, error) {
	input, err := m.schemas.MergeObjectSchemas(a.Input.Schema, b.Input.Schema)
	if err != nil {
		return ActionDefinition{}, fmt.Errorf("input: %w", err)
	}

	output, err := m.schemas.MergeObjectSchemas(a.Input.Schema, b.Output.Schema)
	if err != nil {
		return ActionDefinition{}, fmt.Errorf("output: %w", err)
	}

	return ActionDefinition{
		Title:       shadow(a.Title, b.Title),
		Description: shadow(a.Description, b.Description),
		Billable:    shadow(a.Billable, b.Billable),
		Cacheable:   shadow(a.Cacheable, b.Cacheable),
		Input:       ActionIO{Schema: input},
		Output:      ActionIO{Schema: output},
		Extensions:  mergeExtensions(a.Extensions, b.Extensions),
	}, nil
}

func (m definitionMerger) events(a, b EventDefinition) (EventDefinition, error) {
	schema, err := m.schemas.MergeObjectSchemas(a.Schema, b.Schema)
	if err != nil {
		return EventDefinition{}, err
	}

	return EventDefinition{
		Title:       shadow(a.Title, b.Title),
		Description: shadow(a.Description, b.Description),
		Schema:      schema,
		Extensions:  mergeExtensions(a.Extensions, b.Extensions),
	}, nil
}

func (m definitionMerger) channels(a, b ChannelDefinition) (ChannelDefinition, error) {
	messages, err := mergeRecords("message", a.Messages, b.Messages, m.messages)
	if err != nil {
		return ChannelDefinition{}, err
	}

	return ChannelDefinition{
		Title:       shadow(a.Title, b.Title),
		Description: shadow(a.Description, b.Description),
		Messages:    messages,
		Extensions:  mergeExtensions(a.Extensions, b.Extensions),
	}, nil
}

func (m definitionMerger) messages(a, b MessageDefinition) (MessageDefinition, error) {
	schema, err := m.schemas.MergeObjectSchemas(a.Schema, b.Schema)
	if err != nil {
		return MessageDefinition{}, err
	}

	return MessageDefinition{Schema: schema}, nil
}

// mergeRecords returns the union of a and b. Values present under the same key in
// both are combined with merge rather than replaced.
func mergeRecords[T any](kind string, a, b map[string]T, merge func(a, b T) (T, error)) (map[string]T, error) {
	out := make(map[string]T, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}

	for _, k := range sortedKeys(b) {
		existing, ok := out[k]
		if !ok {
			out[k] = b[k]
			continue
		}

		merged, err := merge(existing, b[k])
		if err != nil {
			return nil, &MergeError{Kind: kind, Name: k, Err: err}
		}
		out[k] = merged
	}

	return out, nil
}

func mergeExtensions(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}

	return out
}

// shadow returns override unless it is the zero value.
func shadow[T comparable](base, override T) T {
	var zero T
	if override != zero {
		return override
	}
	return base
}
