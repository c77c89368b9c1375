package openapi

import (
	"fmt"
	"strings"

	"github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi31"
)

type ContextWrapper struct {
	openapi.OperationContext
	*openapi31.Operation
	reflector *Reflector
}

func (c ContextWrapper) addToReflector() error {
	return c.reflector.AddOperation(c.OperationContext)
}

// from populates the operation from a Record.
func (c *ContextWrapper) from(record Record) error {
	if record.Output != nil {
		if err := c.addRespStructure(*record.Output, openapi.WithHTTPStatus(record.SuccessStatus)); err != nil {
			return err
		}
	} else {
		c.OperationContext.AddRespStructure(nil, openapi.WithHTTPStatus(record.SuccessStatus))
	}

	if record.Input != nil {
		if err := c.addReqStructure(*record.Input); err != nil {
			return err
		}
	}

	if c.Operation == nil {
		return nil
	}

	c.WithID(record.ID)
	c.WithTags(record.Tags...)
	for _, tag := range record.Tags {
		c.reflector.allTags[tag] = true
	}
	c.SetDescription(record.Description)

	if record.Summary != "" {
		c.SetSummary(record.Summary)
	}

	if len(record.Extensions) > 0 {
		c.Operation.WithMapOfAnything(extensions(record.Extensions))
	}

	return nil
}

// addReqStructure provides duplicate-detection to the openapi-go AddReqStructure method.
func (c ContextWrapper) addReqStructure(m Model, options ...openapi.ContentOption) error {
	if err := c.reflector.addModel(m); err != nil {
		return fmt.Errorf("failed to add definition for %s: %w", m.Name(), err)
	}

	c.OperationContext.AddReqStructure(m, options...)

	return nil
}

// addRespStructure provides duplicate-detection to the openapi-go AddRespStructure method.
func (c ContextWrapper) addRespStructure(m Model, options ...openapi.ContentOption) error {
	if err := c.reflector.addModel(m); err != nil {
		return fmt.Errorf("failed to add definition for %s: %w", m.Name(), err)
	}

	c.OperationContext.AddRespStructure(m, options...)

	return nil
}

func NewContextWrapper(ctx openapi.OperationContext, r *Reflector) *ContextWrapper {
	ctxWrapper := ContextWrapper{
		OperationContext: ctx,
		reflector:        r,
	}
	if opExp, ok := ctx.(openapi31.OperationExposer); ok {
		ctxWrapper.Operation = opExp.Operation()
	}

	return &ctxWrapper
}

/* -------------------------------------------------------------------------- */

// extensions prefixes every key with "x-", as OpenAPI requires of specification extensions.
func extensions(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if !strings.HasPrefix(k, "x-") {
			k = "x-" + k
		}
		out[k] = v
	}

	return out
}
