package conform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tailbits/conform/jsonmerge"
)

type resolveConfig struct {
	logger zerolog.Logger
	merger jsonmerge.Merger
}

type Option func(*resolveConfig)

// WithLogger logs each resolved interface and every definition merged into an existing one at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *resolveConfig) {
		c.logger = logger
	}
}

// WithSchemaMerger replaces the merger used to combine colliding schemas.
func WithSchemaMerger(merger jsonmerge.Merger) Option {
	return func(c *resolveConfig) {
		c.merger = merger
	}
}

// ResolveInterfaces resolves every interface attached to def, in declaration order,
// and folds the resolved definitions into def's actions, events and channels.
// A resolved definition whose name is already taken is merged with the existing
// one, the resolved definition taking precedence. def is modified in place and
// returned. An integration without interfaces is returned untouched.
//
// Each interface is folded in as a whole: when merging one fails, def keeps the
// definitions of the interfaces before it and the error is returned.
func ResolveInterfaces(def *IntegrationDefinition, opts ...Option) (*IntegrationDefinition, error) {
	if def == nil || len(def.Interfaces) == 0 {
		return def, nil
	}

	config := resolveConfig{
		logger: zerolog.Nop(),
		merger: jsonmerge.New(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	merger := newDefinitionMerger(config.merger)

	for _, ext := range def.Interfaces {
		key := ext.key()
		log := config.logger.With().Str("interface", key).Logger()

		resolved, _ := ResolveInterface(ext)

		actions, err := mergeRecords("action", def.Actions, resolved.Actions, merger.actions)
		if err != nil {
			return def, fmt.Errorf("resolving interface %s: %w", key, err)
		}

		events, err := mergeRecords("event", def.Events, resolved.Events, merger.events)
		if err != nil {
			return def, fmt.Errorf("resolving interface %s: %w", key, err)
		}

		channels, err := mergeRecords("channel", def.Channels, resolved.Channels, merger.channels)
		if err != nil {
			return def, fmt.Errorf("resolving interface %s: %w", key, err)
		}

		logCollisions(log, "action", def.Actions, resolved.Actions)
		logCollisions(log, "event", def.Events, resolved.Events)
		logCollisions(log, "channel", def.Channels, resolved.Channels)

		def.Actions = fold(def.Actions, actions)
		def.Events = fold(def.Events, events)
		def.Channels = fold(def.Channels, channels)

		log.Debug().
			Int("actions", len(resolved.Actions)).
			Int("events", len(resolved.Events)).
			Int("channels", len(resolved.Channels)).
			Msg("interface resolved")
	}

	return def, nil
}

// ImplementationStatements resolves every interface attached to def without
// modifying it, and returns the statement of each keyed by interface key.
func ImplementationStatements(def *IntegrationDefinition) map[string]InterfaceImplStatement {
	statements := make(map[string]InterfaceImplStatement)
	if def == nil {
		return statements
	}

	for _, ext := range def.Interfaces {
		_, statement := ResolveInterface(ext)
		statements[ext.key()] = statement
	}

	return statements
}

// Extend attaches an interface to the integration. An extension with a key that is
// already attached replaces the previous one in its original position.
func (d *IntegrationDefinition) Extend(ext InterfaceExtension) *IntegrationDefinition {
	ext.Key = ext.key()

	for i, existing := range d.Interfaces {
		if existing.key() == ext.Key {
			d.Interfaces[i] = ext
			return d
		}
	}

	d.Interfaces = append(d.Interfaces, ext)

	return d
}

// InterfaceKey derives the key of an interface attachment from the interface name
// and the names of its entities, ordered by entity key: "listable<issue>".
func InterfaceKey(name string, entities map[string]EntityBinding) string {
	if len(entities) == 0 {
		return name
	}

	names := make([]string, 0, len(entities))
	for _, key := range sortedKeys(entities) {
		names = append(names, entities[key].Name)
	}

	return name + "<" + strings.Join(names, ",") + ">"
}

func (e InterfaceExtension) key() string {
	if e.Key != "" {
		return e.Key
	}
	return InterfaceKey(e.Name, e.Entities)
}

// =============================================================================

// fold copies merged into dst, keeping dst's identity when it already exists.
func fold[T any](dst map[string]T, merged map[string]T) map[string]T {
	if dst == nil {
		dst = make(map[string]T, len(merged))
	}
	for k, v := range merged {
		dst[k] = v
	}

	return dst
}

func logCollisions[T any](log zerolog.Logger, kind string, existing, resolved map[string]T) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}

	names := make([]string, 0)
	for name := range resolved {
		if _, ok := existing[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		log.Debug().Str("kind", kind).Str("name", name).Msg("merged with existing definition")
	}
}
