package conform

import (
	"errors"
	"fmt"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/conform/model"
)

// ErrUnknownDefinition occurs when a payload is validated against a definition the integration does not declare.
var ErrUnknownDefinition = errors.New("unknown definition")

func (d *IntegrationDefinition) ValidateActionInput(action string, payload []byte) error {
	def, ok := d.Actions[action]
	if !ok {
		return fmt.Errorf("action %q: %w", action, ErrUnknownDefinition)
	}

	return validatePayload(def.Input.Schema, payload)
}

func (d *IntegrationDefinition) ValidateActionOutput(action string, payload []byte) error {
	def, ok := d.Actions[action]
	if !ok {
		return fmt.Errorf("action %q: %w", action, ErrUnknownDefinition)
	}

	return validatePayload(def.Output.Schema, payload)
}

func (d *IntegrationDefinition) ValidateEventPayload(event string, payload []byte) error {
	def, ok := d.Events[event]
	if !ok {
		return fmt.Errorf("event %q: %w", event, ErrUnknownDefinition)
	}

	return validatePayload(def.Schema, payload)
}

func (d *IntegrationDefinition) ValidateMessage(channel string, message string, payload []byte) error {
	ch, ok := d.Channels[channel]
	if !ok {
		return fmt.Errorf("channel %q: %w", channel, ErrUnknownDefinition)
	}

	msg, ok := ch.Messages[message]
	if !ok {
		return fmt.Errorf("message %q of channel %q: %w", message, channel, ErrUnknownDefinition)
	}

	return validatePayload(msg.Schema, payload)
}

func validatePayload(sch jsonschema.Schema, payload []byte) error {
	doc, err := sch.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshalling schema: %w", err)
	}

	if err := model.Validate(doc, payload); err != nil {
		return fmt.Errorf("model.Validate: %w", err)
	}

	return nil
}
