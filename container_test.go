package di

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBasic struct {
	val int
}

func newTestBasic() *testBasic {
	return &testBasic{val: 42}
}

type testDependent struct {
	basic *testBasic
}

func newTestDependent(b *testBasic) *testDependent {
	return &testDependent{basic: b}
}

type testShared struct {
	left  *testBasic
	right *testDependent
}

func newTestShared(l *testBasic, r *testDependent) *testShared {
	return &testShared{left: l, right: r}
}

func TestContainer_ResolveBasicAndDependent(t *testing.T) {
	c := New()
	c.Register(newTestBasic)
	c.Register(newTestDependent)

	dep, err := c.Resolve(context.Background(), TypeOf[*testDependent]())
	require.NoError(t, err)

	dependent := dep.(*testDependent)
	assert.Equal(t, 42, dependent.basic.val)

	cached, ok := c.GetInstance(TypeOf[*testBasic]())
	require.True(t, ok)
	assert.Same(t, dependent.basic, cached)

	assert.Equal(t, 0, c.CalculateWeight(TypeOf[*testBasic]()))
	assert.Equal(t, 1, c.CalculateWeight(TypeOf[*testDependent]()))
}

func TestContainer_SingletonCaching(t *testing.T) {
	calls := 0
	c := New()
	c.Register(&ClassProvider{
		Provide: "basic",
		Class: func() *testBasic {
			calls++
			return &testBasic{val: calls}
		},
	})

	first, err := c.Resolve(context.Background(), "basic")
	require.NoError(t, err)
	second, err := c.Resolve(context.Background(), "basic")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

type testCycleA struct {
	b any
}

type testCycleB struct {
	a any
}

func TestContainer_CircularDependency(t *testing.T) {
	c := New()
	c.Register(&ClassProvider{
		Provide: "A",
		Class:   func(b any) *testCycleA { return &testCycleA{b: b} },
		Params:  []Dep{ByToken("B")},
	})
	c.Register(&ClassProvider{
		Provide: "B",
		Class:   func(a any) *testCycleB { return &testCycleB{a: a} },
		Params:  []Dep{ByToken("A")},
	})

	_, err := c.Resolve(context.Background(), "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependency)
	assert.Contains(t, err.Error(), "A -> B -> A")

	// Nothing from the failed chain is cached.
	_, ok := c.GetInstance("A")
	assert.False(t, ok)
	_, ok = c.GetInstance("B")
	assert.False(t, ok)
}

func TestContainer_SharedDependencyNoFalseCycle(t *testing.T) {
	c := New()
	c.Register(newTestBasic)
	c.Register(newTestDependent)
	c.Register(newTestShared)

	v, err := c.Resolve(context.Background(), TypeOf[*testShared]())
	require.NoError(t, err)

	shared := v.(*testShared)
	// Both parameters transitively require *testBasic; sequential resolution
	// means the second request hits the cache instead of tripping the cycle
	// check.
	assert.Same(t, shared.left, shared.right.basic)
}

func TestContainer_NoProviderFound(t *testing.T) {
	c := New()

	_, err := c.Resolve(context.Background(), "nothing-registered")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Contains(t, err.Error(), "nothing-registered")
}

func TestContainer_MissingDependencyToken(t *testing.T) {
	c := New()
	c.Register(&ClassProvider{
		Provide: "needs-name",
		Class:   func(name string) *testBasic { return &testBasic{val: len(name)} },
	})

	_, err := c.Resolve(context.Background(), "needs-name")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDependencyToken)

	// An explicit descriptor fixes the same constructor.
	c.Register(&ValueProvider{Provide: "name", Value: "forty-two"})
	c.Register(&ClassProvider{
		Provide: "needs-name",
		Class:   func(name string) *testBasic { return &testBasic{val: len(name)} },
		Params:  []Dep{ByToken("name")},
	})

	v, err := c.Resolve(context.Background(), "needs-name")
	require.NoError(t, err)
	assert.Equal(t, len("forty-two"), v.(*testBasic).val)
}

func TestContainer_ImplicitConstructorToken(t *testing.T) {
	c := New()
	c.Register(newTestBasic)

	// newTestDependent was never registered; a constructible class with
	// resolvable dependencies may be resolved anyway.
	v, err := c.Resolve(context.Background(), newTestDependent)
	require.NoError(t, err)
	assert.Equal(t, 42, v.(*testDependent).basic.val)

	// The instance is cached under the constructor's result type.
	cached, ok := c.GetInstance(TypeOf[*testDependent]())
	require.True(t, ok)
	assert.Same(t, v, cached)
}

func TestContainer_ValueProviderImmediacy(t *testing.T) {
	c := New()
	c.Register(&ValueProvider{Provide: "answer", Value: 42})

	v, ok := c.GetInstance("answer")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	resolved, err := c.Resolve(context.Background(), "answer")
	require.NoError(t, err)
	assert.Equal(t, 42, resolved)
}

func TestContainer_FalsyValues(t *testing.T) {
	c := New()
	c.Register(&ValueProvider{Provide: "zero", Value: 0})
	c.Register(&ValueProvider{Provide: "no", Value: false})
	c.Register(&ValueProvider{Provide: "empty", Value: ""})

	for token, expected := range map[string]any{"zero": 0, "no": false, "empty": ""} {
		v, ok := c.GetInstance(token)
		require.True(t, ok, token)
		assert.Equal(t, expected, v, token)
	}
}

func TestContainer_FactoryProvider(t *testing.T) {
	c := New()
	c.Register(&ValueProvider{Provide: "host", Value: "localhost"})
	c.Register(&ValueProvider{Provide: "port", Value: 8080})
	c.Register(&FactoryProvider{
		Provide: "addr",
		Factory: func(ctx context.Context, host string, port int) (string, error) {
			return fmt.Sprintf("%s:%d", host, port), nil
		},
		Deps: []Token{"host", "port"},
	})

	v, err := c.Resolve(context.Background(), "addr")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", v)
}

func TestContainer_FactoryErrorPropagatesVerbatim(t *testing.T) {
	expected := errors.New("expected error")
	c := New()
	c.Register(&FactoryProvider{
		Provide: "broken",
		Factory: func() (*testBasic, error) { return nil, expected },
	})

	_, err := c.Resolve(context.Background(), "broken")
	assert.Equal(t, expected, err)

	// No partial instance is cached for the failed token.
	_, ok := c.GetInstance("broken")
	assert.False(t, ok)
}

type testInitOrder struct {
	events *[]string
}

func (i *testInitOrder) Init(ctx context.Context) error {
	*i.events = append(*i.events, "instance init")
	return nil
}

func TestContainer_InitHookOrder(t *testing.T) {
	var events []string
	c := New()
	c.Register(&ClassProvider{
		Provide: "ordered",
		Class:   func() *testInitOrder { return &testInitOrder{events: &events} },
		OnInit: func(ctx context.Context, instance any) error {
			events = append(events, "provider hook")
			return nil
		},
	})

	_, err := c.Resolve(context.Background(), "ordered")
	require.NoError(t, err)
	assert.Equal(t, []string{"provider hook", "instance init"}, events)
}

func TestContainer_InitHookFailureNotCached(t *testing.T) {
	expected := errors.New("init failed")
	c := New()
	c.Register(&ClassProvider{
		Provide: "fragile",
		Class:   newTestBasic,
		OnInit: func(ctx context.Context, instance any) error {
			return expected
		},
	})

	_, err := c.Resolve(context.Background(), "fragile")
	assert.Equal(t, expected, err)

	_, ok := c.GetInstance("fragile")
	assert.False(t, ok)
}

func TestContainer_ReRegistrationOverwrites(t *testing.T) {
	c := New()
	c.Register(&ValueProvider{Provide: "v", Value: 1})
	c.Register(&ValueProvider{Provide: "v", Value: 2})

	v, ok := c.GetInstance("v")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestContainer_Clear(t *testing.T) {
	c := New()
	c.Register(&ValueProvider{Provide: "v", Value: 1})
	c.Register(newTestBasic)
	_, err := c.Resolve(context.Background(), TypeOf[*testBasic]())
	require.NoError(t, err)

	c.Clear()

	assert.Empty(t, c.Providers())
	assert.Empty(t, c.Instances())
	_, ok := c.GetInstance("v")
	assert.False(t, ok)
}

func TestContainer_MustGetInstance(t *testing.T) {
	c := New()
	c.Register(&ValueProvider{Provide: "v", Value: 7})

	assert.Equal(t, 7, c.MustGetInstance("v"))
	assert.Panics(t, func() {
		c.MustGetInstance("missing")
	})
}

func TestContainer_RegisterParams(t *testing.T) {
	type named struct {
		label string
	}
	ctor := func(label string) *named { return &named{label: label} }
	RegisterParams(ctor, ByToken("label"))

	c := New()
	c.Register(&ValueProvider{Provide: "label", Value: "tagged"})
	c.Register(ctor)

	v, err := c.Resolve(context.Background(), TypeOf[*named]())
	require.NoError(t, err)
	assert.Equal(t, "tagged", v.(*named).label)
}

func TestContainer_RegisterInvalidProviderPanics(t *testing.T) {
	c := New()
	assert.Panics(t, func() {
		c.Register(&ValueProvider{Value: 1}) // no provide token
	})
	assert.Panics(t, func() {
		c.Register(42) // not a provider shape
	})
	assert.Panics(t, func() {
		c.Register(&FactoryProvider{Provide: "f"}) // no factory function
	})
}
