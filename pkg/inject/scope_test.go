package inject_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/inject"
	"github.com/go-drift/statekit/pkg/state"
)

type counter struct {
	*state.Container[state.Map]
}

func newCounter(start int) *counter {
	return &counter{state.New(state.Map{"count": start})}
}

type theme struct {
	*state.Container[state.Map]
}

func newTheme(name string) *theme {
	return &theme{state.New(state.Map{"name": name}, state.WithName[state.Map](name))}
}

func TestResolveLocalInstance(t *testing.T) {
	c := newCounter(0)
	scope := inject.NewScope(nil, c)

	got, ok := scope.Resolve(inject.KeyFor[*counter]())
	require.True(t, ok)
	assert.Same(t, c, got)

	_, ok = scope.Resolve(inject.KeyFor[*theme]())
	assert.False(t, ok)
}

func TestResolveFallsBackToParent(t *testing.T) {
	c := newCounter(0)
	th := newTheme("dark")
	root := inject.NewScope(nil, c)
	child := inject.NewScope(root, th)

	got, ok := inject.Lookup[*counter](child)
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, child.Depth())
	assert.Same(t, root, child.Parent())
}

func TestChildShadowsAncestor(t *testing.T) {
	outer := newCounter(1)
	inner := newCounter(2)
	scope := inject.NewScope(inject.NewScope(nil, outer), inner)

	got, ok := inject.Lookup[*counter](scope)
	require.True(t, ok)
	assert.Same(t, inner, got)
}

func TestDuplicateTypeFirstMatchWins(t *testing.T) {
	first := newCounter(1)
	second := newCounter(2)
	scope := inject.NewScope(nil, first, second)

	got, ok := inject.Lookup[*counter](scope)
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestNamedKeys(t *testing.T) {
	light := newTheme("light")
	dark := newTheme("dark")
	scope := inject.NewScope(nil, light, dark)

	got, ok := scope.Resolve(inject.Key{Type: reflect.TypeOf(dark), Name: "dark"})
	require.True(t, ok)
	assert.Same(t, dark, got)

	_, ok = scope.Resolve(inject.Key{Type: reflect.TypeOf(dark), Name: "sepia"})
	assert.False(t, ok)

	assert.Equal(t, inject.Key{Type: reflect.TypeOf(dark), Name: "dark"}, inject.KeyOf(dark))
	assert.Equal(t, `*inject_test.theme("dark")`, inject.KeyOf(dark).String())
}

func TestNilScope(t *testing.T) {
	var scope *inject.Scope
	_, ok := scope.Resolve(inject.KeyFor[*counter]())
	assert.False(t, ok)
	assert.Zero(t, scope.Len())
	assert.Nil(t, scope.Instances())
	assert.Nil(t, scope.Parent())
}

func TestInstancesIsACopy(t *testing.T) {
	c := newCounter(0)
	scope := inject.NewScope(nil, c, nil)
	require.Equal(t, 1, scope.Len())

	list := scope.Instances()
	list[0] = newCounter(5)

	got, _ := inject.Lookup[*counter](scope)
	assert.Same(t, c, got)
}

func TestDescriptorResolve(t *testing.T) {
	c := newCounter(0)
	scope := inject.NewScope(nil, c)

	got, err := inject.Ref[*counter]().Resolve(scope)
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = inject.Ref[*theme]().Resolve(scope)
	var cfg *errors.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "You must wrap your <Subscribe> components with a <Provider>", err.Error())
	assert.Equal(t, "Ref(*inject_test.theme)", cfg.Descriptor)
}

func TestReferenceWithoutScopeFails(t *testing.T) {
	_, err := inject.ResolveAll(nil, []inject.Descriptor{inject.Ref[*counter]()})
	assert.ErrorIs(t, err, errors.ErrNoProvider)
}

func TestConstructNeedsNoScope(t *testing.T) {
	d := inject.Construct(newCounter, 7)
	assert.Equal(t, inject.KindConstruct, d.Kind())

	a, err := d.Resolve(nil)
	require.NoError(t, err)
	b, err := d.Resolve(nil)
	require.NoError(t, err)

	assert.NotSame(t, a, b, "each resolution builds a fresh instance")
	assert.Equal(t, 7, a.(*counter).State()["count"])
}

func TestConstructIgnoresScope(t *testing.T) {
	provided := newCounter(1)
	scope := inject.NewScope(nil, provided)

	got, err := inject.Construct(newCounter, 9).Resolve(scope)
	require.NoError(t, err)
	assert.NotSame(t, provided, got)
}

func TestResolveAllKeepsDescriptorOrder(t *testing.T) {
	c := newCounter(0)
	th := newTheme("dark")
	scope := inject.NewScope(nil, c, th)

	got, err := inject.ResolveAll(scope, []inject.Descriptor{
		inject.Ref[*theme](),
		inject.Construct(newCounter, 3),
		inject.Ref[*counter](),
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Same(t, th, got[0])
	assert.Same(t, c, got[2])
}

func TestDescriptorString(t *testing.T) {
	assert.Equal(t, "Ref(*inject_test.counter)", inject.Ref[*counter]().String())
	assert.Equal(t, `Ref(*inject_test.theme("dark"))`, inject.RefNamed[*theme]("dark").String())
	assert.Equal(t, "Construct(*inject_test.counter)", inject.Construct(newCounter, 0).String())
	assert.Equal(t, "reference", inject.KindReference.String())
	assert.Equal(t, inject.KeyFor[*counter](), inject.RefType(reflect.TypeOf((**counter)(nil)).Elem()).Key())
}
