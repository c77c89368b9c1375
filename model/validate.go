package model

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrBodyEmpty occurs when the payload to validate was empty.
var ErrBodyEmpty = errors.New("body empty")

// Validate validates the payload against the provided JSON schema document.
func Validate(schemaDoc []byte, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("validate: %w", ErrBodyEmpty)
	}

	doc := gojsonschema.NewBytesLoader(schemaDoc)
	sch, err := gojsonschema.NewSchema(doc)
	if err != nil {
		return fmt.Errorf("gojsonschema.NewSchema: %w", err)
	}

	res, err := sch.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("json schema validate: %w", err)
	}

	if !res.Valid() {
		return ToValidationError(res)
	}

	return nil
}
