package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/daveshanley/vacuum/model"
	"github.com/daveshanley/vacuum/motor"
	"github.com/daveshanley/vacuum/rulesets"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi31"
)

type definitionsMap map[string]jsonschema.Schema

type Reflector struct {
	*openapi31.Reflector
	allDefs definitionsMap
	allTags map[string]bool
	log     zerolog.Logger
}

func (r *Reflector) ingest(records []Record) error {
	for _, record := range records {
		ctx, err := r.newOperationContext(record.Method, record.Path)
		if err != nil {
			return fmt.Errorf("failed to create operation context: %w", err)
		}

		if err := ctx.from(record); err != nil {
			return fmt.Errorf("failed to populate operation %s: %w", record.ID, err)
		}

		if err := ctx.addToReflector(); err != nil {
			return fmt.Errorf("failed to add operation %s: %w", record.ID, err)
		}
	}

	return nil
}

// lint applies vacuum's recommended ruleset and fails on violations of the schemas category.
func (r *Reflector) lint() error {
	specBytes, err := r.marshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	defaultRS := rulesets.BuildDefaultRuleSets()
	recommendedRS := defaultRS.GenerateOpenAPIRecommendedRuleSet()

	lintingResults := motor.ApplyRulesToRuleSet(
		&motor.RuleSetExecution{
			RuleSet: recommendedRS,
			Spec:    specBytes,
		})

	resultSet := model.NewRuleResultSet(lintingResults.Results)
	resultSet.SortResultsByLineNumber()

	schemasResults := resultSet.GetRuleResultsForCategory("schemas")

	errors := make([]error, 0)
	for _, ruleResult := range schemasResults.RuleResults {
		for _, violation := range ruleResult.Results {
			errors = append(errors, fmt.Errorf(" - [%d:%d] %s", violation.StartNode.Line, violation.StartNode.Column, violation.Message))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

func (r *Reflector) marshalJSON() ([]byte, error) {
	return r.Reflector.Spec.MarshalJSON()
}

// collectDefinitions commits every definition seen while adding operations to the components of the document.
func (r *Reflector) collectDefinitions() error {
	seen := make(map[string]string) // normalized name -> original name
	for _, defName := range sortedNames(r.allDefs) {
		normalized := strings.ToLower(defName)
		if orig, exists := seen[normalized]; exists {
			return fmt.Errorf("conflicting definitions: %q and %q", orig, defName)
		}
		seen[normalized] = defName
	}

	if r.Reflector.Spec.Components == nil {
		r.Reflector.Spec.Components = &openapi31.Components{}
	}

	for defName, def := range r.allDefs {
		def.Definitions = nil
		sm, err := def.ToSchemaOrBool().ToSimpleMap()
		if err != nil {
			return fmt.Errorf("definition %s: %w", defName, err)
		}
		r.Reflector.Spec.Components.WithSchemasItem(defName, sm)
	}

	return nil
}

// collectTags saves the tags as the top-level tags of the document.
func (r *Reflector) collectTags(tags []string) {
	r.Spec.Tags = make([]openapi31.Tag, len(tags))
	for i, tag := range tags {
		r.Spec.Tags[i] = openapi31.Tag{Name: tag}
	}
}

func (r *Reflector) addModel(model Model) error {
	schema, err := model.JSONSchema()
	if err != nil {
		return fmt.Errorf("failed to get JSON schema: %w", err)
	}

	if err := r.addDefinition(model.Name(), schema); err != nil {
		return fmt.Errorf("failed to add definition: %w", err)
	}

	return nil
}

// addDefinition registers a named schema for the components of the document.
// A name that is already registered must come with an identical schema.
func (r *Reflector) addDefinition(name string, schema jsonschema.Schema) error {
	if name == "" {
		return fmt.Errorf("definition name cannot be empty")
	}

	if existingDef, ok := r.allDefs[name]; ok {
		if !r.isSchemaIdentical(name, existingDef, schema) {
			return fmt.Errorf("definition with name [%s] already exists but with a different definition", name)
		}
	}
	r.allDefs[name] = schema

	for nestedName, def := range schema.Definitions {
		if def.TypeObject != nil {
			if err := r.addDefinition(nestedName, *def.TypeObject); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Reflector) newOperationContext(method, path string) (*ContextWrapper, error) {
	oc, err := r.Reflector.NewOperationContext(method, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation context: %w", err)
	}

	return NewContextWrapper(oc, r), nil
}

func (r *Reflector) isSchemaIdentical(name string, a jsonschema.Schema, b jsonschema.Schema) bool {
	aa, _ := a.MarshalJSON()
	bb, _ := b.MarshalJSON()

	if string(aa) == string(bb) {
		return true
	}

	r.log.Warn().Str("definition", name).Msg("conflicting definition:\n" + diff(aa, bb))

	return false
}

/* -------------------------------------------------------------------------- */

func diff(existing []byte, new []byte) string {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(string(pretty(existing)), string(pretty(new)), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return dmp.DiffPrettyText(diffs)
}

func pretty(schema []byte) []byte {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, schema, "", "  "); err != nil {
		return schema
	}
	return prettyJSON.Bytes()
}

func sortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
