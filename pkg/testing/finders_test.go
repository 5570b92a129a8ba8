package testing

import (
	"testing"

	"github.com/go-drift/statekit/pkg/core"
	"github.com/go-drift/statekit/pkg/state"
	"github.com/go-drift/statekit/pkg/testing/internal/testbed"
	"github.com/go-drift/statekit/pkg/widgets"
)

func counterTree(counter *testbed.Counter, prefix string) core.Widget {
	return widgets.Provider{
		Inject: []state.Store{counter},
		Child:  testbed.CounterView{Prefix: prefix},
	}
}

func TestByType(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(counterTree(testbed.NewCounter(0), ""))

	result := tester.Find(ByType[widgets.Text]())
	if !result.Exists() {
		t.Fatal("expected to find Text widget")
	}
	text := result.Widget().(widgets.Text)
	if text.Content != "0" {
		t.Errorf("expected text '0', got %q", text.Content)
	}
}

func TestByText(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(counterTree(testbed.NewCounter(42), ""))

	if !tester.Find(ByText("42")).Exists() {
		t.Error("expected to find text '42'")
	}
	if tester.Find(ByText("99")).Exists() {
		t.Error("should not find text '99'")
	}
}

func TestByTextContaining(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(counterTree(testbed.NewCounter(123), "count: "))

	if !tester.Find(ByTextContaining("12")).Exists() {
		t.Error("expected to find text containing '12'")
	}
	if tester.Find(ByTextContaining("99")).Exists() {
		t.Error("should not find text containing '99'")
	}
}

func TestByKey(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{testbed.NewCounter(7)},
		Child: widgets.Column{Children: []core.Widget{
			testbed.CounterView{ID: "first", Prefix: "a="},
			testbed.CounterView{ID: "second", Prefix: "b="},
		}},
	})

	result := tester.Find(ByKey("second"))
	if result.Count() != 1 {
		t.Fatalf("expected 1 keyed view, got %d", result.Count())
	}
	if view := result.Widget().(testbed.CounterView); view.Prefix != "b=" {
		t.Errorf("expected prefix 'b=', got %q", view.Prefix)
	}
	texts := tester.Find(Descendant(ByKey("second"), ByType[widgets.Text]())).Texts()
	if len(texts) != 1 || texts[0] != "b=7" {
		t.Errorf("expected [b=7] under the keyed view, got %v", texts)
	}
	if tester.Find(ByKey("third")).Exists() {
		t.Error("should not find key 'third'")
	}
}

func TestByType_Subscribe(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(counterTree(testbed.NewCounter(5), ""))

	if !tester.Find(ByType[widgets.Subscribe]()).Exists() {
		t.Fatal("expected to find Subscribe widget inside CounterView")
	}
}

func TestFinderResult_Count(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	counter := testbed.NewCounter(0)
	tester.PumpWidget(widgets.Provider{
		Inject: []state.Store{counter},
		Child: widgets.Column{Children: []core.Widget{
			testbed.CounterView{Prefix: "a"},
			testbed.CounterView{Prefix: "b"},
		}},
	})

	result := tester.Find(ByType[widgets.Text]())
	if result.Count() != 2 {
		t.Errorf("expected 2 Text widgets, got %d", result.Count())
	}
	texts := result.Texts()
	if len(texts) != 2 || texts[0] != "a0" || texts[1] != "b0" {
		t.Errorf("unexpected texts %v", texts)
	}
}

func TestFinderResult_FirstOrNil(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(widgets.Text{Content: "hello"})

	if tester.Find(ByText("hello")).FirstOrNil() == nil {
		t.Error("FirstOrNil should return element for existing text")
	}
	if tester.Find(ByText("missing")).FirstOrNil() != nil {
		t.Error("FirstOrNil should return nil for missing text")
	}
}

func TestFinderResult_First_PanicsOnEmpty(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(widgets.Text{Content: "hello"})

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected First() to panic on empty result")
		}
	}()
	tester.Find(ByText("missing")).First()
}

func TestByPredicate(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(counterTree(testbed.NewCounter(7), ""))

	result := tester.Find(ByPredicate(func(e core.Element) bool {
		if tw, ok := e.Widget().(widgets.Text); ok {
			return tw.Content == "7"
		}
		return false
	}))
	if !result.Exists() {
		t.Error("expected predicate to find text '7'")
	}
}

func TestDescendant(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(counterTree(testbed.NewCounter(0), ""))

	result := tester.Find(Descendant(
		ByType[widgets.Subscribe](),
		ByType[widgets.Text](),
	))
	if !result.Exists() {
		t.Error("expected to find Text as descendant of Subscribe")
	}
}

func TestAncestor(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	tester.PumpWidget(counterTree(testbed.NewCounter(0), ""))

	result := tester.Find(Ancestor(ByText("0"), ByType[widgets.Provider]()))
	if result.Count() != 1 {
		t.Errorf("expected the provider as ancestor, got %d matches", result.Count())
	}
}

func TestBySubscription(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	counter := testbed.NewCounter(0)
	other := testbed.NewCounter(0)
	tester.PumpWidget(counterTree(counter, ""))

	if tester.Find(BySubscription(counter)).Count() != 1 {
		t.Error("expected one subscriber bound to counter")
	}
	if tester.Find(BySubscription(other)).Exists() {
		t.Error("no subscriber should be bound to an unprovided counter")
	}
}

func TestStateOf(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	counter := testbed.NewCounter(0)
	tester.PumpWidget(counterTree(counter, ""))

	s, ok := StateOf[*widgets.SubscribeState](tester.Find(ByType[widgets.Subscribe]()).First())
	if !ok {
		t.Fatal("expected SubscribeState")
	}
	instances := s.Binding().Instances()
	if len(instances) != 1 || instances[0] != counter {
		t.Errorf("unexpected instances %v", instances)
	}

	if _, ok := StateOf[*widgets.SubscribeState](tester.Find(ByType[widgets.Text]()).First()); ok {
		t.Error("a Text element has no state")
	}
}
