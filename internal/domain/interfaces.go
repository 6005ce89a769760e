package domain

import "context"

// Invoker issues one request/response round trip to a completion endpoint.
// Implementations must not retry; retrying is the pipeline's job.
type Invoker interface {
	// Invoke sends the prompt pair and returns the raw completion.
	Invoke(ctx context.Context, req *InvocationRequest) (*RawCompletion, error)

	// Name returns the provider identifier.
	Name() string
}

// InvokerRegistry manages available invokers.
type InvokerRegistry interface {
	// Register adds an invoker to the registry.
	Register(ctx context.Context, invoker Invoker) error

	// Get retrieves an invoker by name.
	Get(ctx context.Context, name string) (Invoker, error)

	// List returns all registered invoker names.
	List(ctx context.Context) ([]string, error)
}

// PreferenceStore is the key-value cache of per-client prompt overrides.
type PreferenceStore interface {
	// Get returns the stored overrides, or a zero value when none exist.
	Get(ctx context.Context, clientID string) (PromptOverrides, error)

	// Put replaces the stored overrides for a client.
	Put(ctx context.Context, clientID string, overrides PromptOverrides) error

	// Delete removes the stored overrides for a client.
	Delete(ctx context.Context, clientID string) error
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
