package conform

import (
	"fmt"

	"github.com/swaggest/jsonschema-go"
	"github.com/tailbits/conform/model"
)

// BindEntity binds an interface entity to a Go model that exposes its JSON schema.
func BindEntity(m model.WithSchema) (EntityBinding, error) {
	var sch jsonschema.Schema
	if err := sch.UnmarshalJSON(m.Schema()); err != nil {
		return EntityBinding{}, fmt.Errorf("error unmarshalling schema for %s: %w", m.Name(), err)
	}

	return EntityBinding{
		Name:   m.Name(),
		Schema: sch,
	}, nil
}
