package factory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"NetPulse/internal/config"
	"NetPulse/internal/log"
	"NetPulse/internal/model"
)

// TransportFactory creates the publisher for one transport type.
type TransportFactory func(ctx context.Context, cfg *config.Config) (model.Publisher, error)

// registry holds the mapping of transport types to their factory functions.
var registry = make(map[string]TransportFactory)

// RegisterTransport registers a new transport type with its factory function.
func RegisterTransport(name string, factory TransportFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("transport type '%s' already registered", name))
	}
	registry[name] = factory
}

// Transports lists the registered transport types.
func Transports() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreatePublisher creates the publisher selected by cfg.Transport.Type.
func CreatePublisher(ctx context.Context, cfg *config.Config) (model.Publisher, error) {
	name := cfg.Transport.Type
	log.GetLogger().Infof("Creating publisher for transport type: '%s'", name)

	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown transport type: '%s' (registered: %s)", name, strings.Join(Transports(), ", "))
	}

	pub, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating transport type '%s': %w", name, err)
	}
	return pub, nil
}
