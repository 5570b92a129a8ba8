package widgets_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/statekit/pkg/core"
	staterr "github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/inject"
	"github.com/go-drift/statekit/pkg/state"
	statetest "github.com/go-drift/statekit/pkg/testing"
	"github.com/go-drift/statekit/pkg/widgets"
)

type counter struct {
	*state.Container[state.Map]
}

func newCounter(start int) *counter {
	return &counter{state.New(state.Map{"count": start})}
}

func (c *counter) count() int {
	return c.State()["count"].(int)
}

func (c *counter) increment() *state.Completion {
	return c.Mutate(state.PatchFunc(func(s state.Map) state.Map {
		return state.Map{"count": s["count"].(int) + 1}
	}), nil)
}

func (c *counter) decrement() *state.Completion {
	return c.Mutate(state.PatchFunc(func(s state.Map) state.Map {
		return state.Map{"count": s["count"].(int) - 1}
	}), nil)
}

type label struct {
	*state.Container[string]
}

func counterText(prefix string) widgets.Subscribe {
	return widgets.Subscribe{
		To: []inject.Descriptor{inject.Ref[*counter]()},
		Builder: func(_ core.BuildContext, stores ...state.Store) core.Widget {
			return widgets.Text{Content: fmt.Sprintf("%s%d", prefix, stores[0].(*counter).count())}
		},
	}
}

func subscribeState(t *testing.T, tester *statetest.WidgetTester, index int) *widgets.SubscribeState {
	t.Helper()
	s, ok := statetest.StateOf[*widgets.SubscribeState](tester.Find(statetest.ByType[widgets.Subscribe]()).At(index))
	require.True(t, ok)
	return s
}

func TestCounterThroughTree(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	c := newCounter(0)
	require.NoError(t, tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{c},
		Child: widgets.Column{Children: []core.Widget{
			counterText("a="),
			counterText("b="),
		}},
	}))
	assert.Equal(t, []string{"a=0", "b=0"}, widgets.Texts(tester.RootElement()))
	assert.Equal(t, 2, c.ListenerCount())

	require.NoError(t, tester.Settle(c.increment()))
	assert.Equal(t, []string{"a=1", "b=1"}, widgets.Texts(tester.RootElement()))

	require.NoError(t, tester.Settle(c.decrement()))
	assert.Equal(t, []string{"a=0", "b=0"}, widgets.Texts(tester.RootElement()))
}

func TestOnSettledRunsAfterRebuild(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	c := newCounter(0)
	require.NoError(t, tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{c},
		Child:  counterText(""),
	}))

	var seen []string
	done := c.Mutate(state.Patch(state.Map{"count": 5}), func() {
		seen = widgets.Texts(tester.RootElement())
	})
	require.NoError(t, tester.Settle(done))
	assert.Equal(t, []string{"5"}, seen)
}

func TestUnmountReleasesSubscriptions(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	c := newCounter(0)
	require.NoError(t, tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{c},
		Child:  counterText(""),
	}))
	require.Equal(t, 1, c.ListenerCount())
	binding := subscribeState(t, tester, 0).Binding()

	tester.Unmount()

	assert.Equal(t, 0, c.ListenerCount())
	assert.True(t, binding.Unmounted())
	assert.True(t, c.increment().Settled(), "no listener is left to wait for")
	assert.Equal(t, 1, c.count())
}

func TestSubscribeWithoutProvider(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)

	err := tester.PumpWidget(counterText(""))

	require.Error(t, err)
	assert.Equal(t, "You must wrap your <Subscribe> components with a <Provider>", err.Error())
	assert.ErrorIs(t, err, staterr.ErrNoProvider)
	var cfg *staterr.ConfigurationError
	assert.ErrorAs(t, err, &cfg)
}

func TestProviderMissingTypeIsConfigurationError(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	l := &label{state.New("x")}

	err := tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{l},
		Child:  counterText(""),
	})

	assert.ErrorIs(t, err, staterr.ErrNoProvider)
	assert.Equal(t, 0, l.ListenerCount())
}

func TestNestedProviderShadowsOuter(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	outer := newCounter(1)
	inner := newCounter(2)
	l := &label{state.New("name")}

	require.NoError(t, tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{outer, l},
		Child: widgets.Column{Children: []core.Widget{
			counterText("outer="),
			widgets.Provider{
				Inject: []state.Store{inner},
				Child: widgets.Column{Children: []core.Widget{
					counterText("inner="),
					widgets.Subscribe{
						To: []inject.Descriptor{inject.Ref[*label]()},
						Builder: func(_ core.BuildContext, stores ...state.Store) core.Widget {
							return widgets.Text{Content: stores[0].(*label).State()}
						},
					},
				}},
			},
		}},
	}))

	assert.Equal(t, []string{"outer=1", "inner=2", "name"}, widgets.Texts(tester.RootElement()))
	assert.Equal(t, 1, outer.ListenerCount())
	assert.Equal(t, 1, inner.ListenerCount())
	assert.Equal(t, 1, l.ListenerCount(), "unshadowed types fall back to the outer scope")
}

func TestScopeOf(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	c := newCounter(0)
	var scope *inject.Scope
	require.NoError(t, tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{c},
		Child: widgets.Subscribe{
			Builder: func(ctx core.BuildContext, _ ...state.Store) core.Widget {
				scope = widgets.ScopeOf(ctx)
				return nil
			},
		},
	}))

	require.NotNil(t, scope)
	found, ok := inject.Lookup[*counter](scope)
	assert.True(t, ok)
	assert.Same(t, c, found)
}

func TestProviderSwapRebindsSubscribers(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	first := newCounter(10)
	second := newCounter(20)
	choice := state.New(0)

	require.NoError(t, tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{choice},
		Child: widgets.Subscribe{
			To: []inject.Descriptor{inject.Ref[*state.Container[int]]()},
			Builder: func(_ core.BuildContext, stores ...state.Store) core.Widget {
				chosen := first
				if stores[0].(*state.Container[int]).State() == 1 {
					chosen = second
				}
				return widgets.Provider{
					Inject: []state.Store{chosen},
					Child:  counterText(""),
				}
			},
		},
	}))
	assert.True(t, tester.Find(statetest.ByText("10")).Exists())
	binding := subscribeState(t, tester, 1).Binding()

	require.NoError(t, tester.Settle(choice.SetState(1)))

	assert.True(t, tester.Find(statetest.ByText("20")).Exists())
	assert.Equal(t, 0, first.ListenerCount())
	assert.Equal(t, 1, second.ListenerCount())
	assert.Same(t, binding, subscribeState(t, tester, 1).Binding(), "the binding moves instead of being recreated")

	require.NoError(t, tester.Settle(second.increment()))
	assert.True(t, tester.Find(statetest.ByText("21")).Exists())
}

func TestDescriptorChangeReplacesBinding(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	left := state.New(state.Map{"v": "L"}, state.WithName[state.Map]("left"))
	right := state.New(state.Map{"v": "R"}, state.WithName[state.Map]("right"))
	choice := state.New("left")

	require.NoError(t, tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{choice, left, right},
		Child: widgets.Subscribe{
			To: []inject.Descriptor{inject.Ref[*state.Container[string]]()},
			Builder: func(_ core.BuildContext, stores ...state.Store) core.Widget {
				name := stores[0].(*state.Container[string]).State()
				return widgets.Subscribe{
					To: []inject.Descriptor{inject.RefNamed[*state.Container[state.Map]](name)},
					Builder: func(_ core.BuildContext, stores ...state.Store) core.Widget {
						return widgets.Text{Content: stores[0].(*state.Container[state.Map]).State()["v"].(string)}
					},
				}
			},
		},
	}))
	assert.True(t, tester.Find(statetest.ByText("L")).Exists())
	old := subscribeState(t, tester, 1).Binding()

	require.NoError(t, tester.Settle(choice.SetState("right")))

	assert.True(t, tester.Find(statetest.ByText("R")).Exists())
	assert.True(t, old.Unmounted())
	assert.NotSame(t, old, subscribeState(t, tester, 1).Binding())
	assert.Equal(t, 0, left.ListenerCount())
	assert.Equal(t, 1, right.ListenerCount())
}

func TestConstructNeedsNoProvider(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)

	require.NoError(t, tester.PumpWidget(widgets.Subscribe{
		To: []inject.Descriptor{inject.Construct(newCounter, 5)},
		Builder: func(_ core.BuildContext, stores ...state.Store) core.Widget {
			return widgets.Text{Content: fmt.Sprint(stores[0].(*counter).count())}
		},
	}))
	assert.True(t, tester.Find(statetest.ByText("5")).Exists())

	c := subscribeState(t, tester, 0).Binding().Instances()[0].(*counter)
	require.NoError(t, tester.Settle(c.increment()))
	assert.True(t, tester.Find(statetest.ByText("6")).Exists())
}

func TestFailedMountReleasesEarlierSubscriptions(t *testing.T) {
	tester := statetest.NewWidgetTesterWithT(t)
	c := newCounter(0)

	err := tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{c},
		Child: widgets.Column{Children: []core.Widget{
			counterText(""),
			widgets.Subscribe{
				To: []inject.Descriptor{inject.Ref[*label]()},
				Builder: func(core.BuildContext, ...state.Store) core.Widget {
					return nil
				},
			},
		}},
	})

	assert.ErrorIs(t, err, staterr.ErrNoProvider)
	assert.Nil(t, tester.RootElement())
	assert.Equal(t, 0, c.ListenerCount())
	assert.True(t, c.increment().Settled())
}
