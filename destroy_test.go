package di

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTeardown struct {
	name   string
	events *[]string
	err    error
}

func (d *testTeardown) Destroy(ctx context.Context) error {
	*d.events = append(*d.events, d.name)
	return d.err
}

type testCloser struct {
	events *[]string
}

func (c *testCloser) Close() error {
	*c.events = append(*c.events, "closer")
	return nil
}

func TestDestroy_ReverseCreationOrder(t *testing.T) {
	var events []string
	c := New()
	c.Register(&FactoryProvider{
		Provide: "first",
		Factory: func() *testTeardown { return &testTeardown{name: "first", events: &events} },
	})
	c.Register(&FactoryProvider{
		Provide: "second",
		Factory: func(first *testTeardown) *testTeardown {
			return &testTeardown{name: "second", events: &events}
		},
		Deps: []Token{"first"},
	})

	_, err := c.Resolve(context.Background(), "second")
	require.NoError(t, err)

	c.Destroy(context.Background())

	assert.Equal(t, []string{"second", "first"}, events)
}

func TestDestroy_ProviderHookBeforeInstanceHook(t *testing.T) {
	var events []string
	c := New()
	c.Register(&FactoryProvider{
		Provide: "svc",
		Factory: func() *testTeardown { return &testTeardown{name: "instance", events: &events} },
		OnDestroy: func(ctx context.Context, instance any) error {
			events = append(events, "provider hook")
			return nil
		},
	})

	_, err := c.Resolve(context.Background(), "svc")
	require.NoError(t, err)

	c.Destroy(context.Background())

	assert.Equal(t, []string{"provider hook", "instance"}, events)
}

func TestDestroy_BestEffort(t *testing.T) {
	var events []string
	c := New()
	c.Register(&FactoryProvider{
		Provide: "healthy",
		Factory: func() *testTeardown { return &testTeardown{name: "healthy", events: &events} },
	})
	c.Register(&FactoryProvider{
		Provide: "failing",
		Factory: func(h *testTeardown) *testTeardown {
			return &testTeardown{name: "failing", events: &events, err: errors.New("teardown boom")}
		},
		Deps: []Token{"healthy"},
	})
	c.Register(&ClassProvider{
		Provide: "panicking",
		Class:   func(f *testTeardown) *testBasic { return &testBasic{} },
		Params:  []Dep{ByToken("failing")},
		OnDestroy: func(ctx context.Context, instance any) error {
			panic("teardown panic")
		},
	})

	_, err := c.Resolve(context.Background(), "panicking")
	require.NoError(t, err)

	// Neither the error nor the panic stops the earlier instances from
	// being torn down.
	assert.NotPanics(t, func() {
		c.Destroy(context.Background())
	})
	assert.Equal(t, []string{"failing", "healthy"}, events)
}

func TestDestroy_CloserFallback(t *testing.T) {
	var events []string
	c := New()
	c.Register(&FactoryProvider{
		Provide: "conn",
		Factory: func() *testCloser { return &testCloser{events: &events} },
	})

	_, err := c.Resolve(context.Background(), "conn")
	require.NoError(t, err)

	c.Destroy(context.Background())

	assert.Equal(t, []string{"closer"}, events)
}

func TestDestroy_ClearsContainer(t *testing.T) {
	c := New()
	c.Register(&ValueProvider{Provide: "v", Value: 1})
	c.Register(newTestBasic)
	_, err := c.Resolve(context.Background(), TypeOf[*testBasic]())
	require.NoError(t, err)

	c.Destroy(context.Background())

	assert.Empty(t, c.Providers())
	assert.Empty(t, c.Instances())
}

func TestDestroy_SkipsUnresolvedProviders(t *testing.T) {
	var events []string
	c := New()
	c.Register(&FactoryProvider{
		Provide: "never-built",
		Factory: func() *testTeardown { return &testTeardown{name: "never", events: &events} },
	})

	c.Destroy(context.Background())

	assert.Empty(t, events)
}
