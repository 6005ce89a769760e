package registry_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/provider/registry"
)

// mockInvoker is a mock implementation of domain.Invoker for testing.
type mockInvoker struct {
	name string
}

func (m *mockInvoker) Invoke(_ context.Context, _ *domain.InvocationRequest) (*domain.RawCompletion, error) {
	return &domain.RawCompletion{Text: "{}"}, nil
}

func (m *mockInvoker) Name() string {
	return m.name
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register invoker successfully", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()

		err := reg.Register(ctx, &mockInvoker{name: "openai"})

		require.NoError(t, err)
		invoker, err := reg.Get(ctx, "openai")
		require.NoError(t, err)
		require.Equal(t, "openai", invoker.Name())
	})

	t.Run("should return error when invoker is nil", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := reg.Register(context.Background(), nil)

		require.Error(t, err)
		require.Contains(t, err.Error(), "invoker cannot be nil")
	})

	t.Run("should return error when invoker name is empty", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := reg.Register(context.Background(), &mockInvoker{name: ""})

		require.Error(t, err)
		require.Contains(t, err.Error(), "invoker name cannot be empty")
	})

	t.Run("should return error when invoker already registered", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()

		require.NoError(t, reg.Register(ctx, &mockInvoker{name: "scripted"}))
		err := reg.Register(ctx, &mockInvoker{name: "scripted"})

		require.Error(t, err)
		require.Contains(t, err.Error(), "already registered")
	})
}

func TestRegistry_Get(t *testing.T) {
	t.Run("should return error when name is empty", func(t *testing.T) {
		reg := registry.NewRegistry()

		invoker, err := reg.Get(context.Background(), "")

		require.Error(t, err)
		require.Nil(t, invoker)
	})

	t.Run("should list available invokers when not found", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()
		require.NoError(t, reg.Register(ctx, &mockInvoker{name: "scripted"}))

		invoker, err := reg.Get(ctx, "openai")

		require.Error(t, err)
		require.Nil(t, invoker)
		require.Contains(t, err.Error(), "invoker openai not found")
		require.Contains(t, err.Error(), "scripted")
	})
}

func TestRegistry_List(t *testing.T) {
	t.Run("should return empty list when no invokers registered", func(t *testing.T) {
		reg := registry.NewRegistry()

		names, err := reg.List(context.Background())

		require.NoError(t, err)
		require.Empty(t, names)
	})

	t.Run("should return sorted names", func(t *testing.T) {
		reg := registry.NewRegistry()
		ctx := context.Background()
		for _, name := range []string{"scripted", "openai", "local"} {
			require.NoError(t, reg.Register(ctx, &mockInvoker{name: name}))
		}

		names, err := reg.List(ctx)

		require.NoError(t, err)
		require.Equal(t, []string{"local", "openai", "scripted"}, names)
	})
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := registry.NewRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("invoker-%d", i)
			require.NoError(t, reg.Register(ctx, &mockInvoker{name: name}))
			_, err := reg.Get(ctx, name)
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	names, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, names, 20)
}
