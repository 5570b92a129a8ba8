// Package testing provides a widget testing framework for statekit.
//
// # Quick Start
//
// Create a tester, pump a widget, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := statetest.NewWidgetTesterWithT(t)
//	    counter := NewCounter()
//	    tester.PumpWidget(widgets.Provider{
//	        Inject: []state.Store{counter},
//	        Child:  CounterView{},
//	    })
//
//	    tester.Settle(counter.Increment())
//
//	    if !tester.Find(statetest.ByText("1")).Exists() {
//	        t.Error("expected '1'")
//	    }
//	}
//
// # Completions
//
// A mutation's completion settles once every subscribed widget has rebuilt.
// Settle pumps frames until that happens, so a test can assert on the tree
// right after it.
//
// # Configuration errors
//
// PumpWidget recovers panics raised while mounting that carry an error,
// such as a Subscribe without an enclosing Provider, and returns them.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import statetest "github.com/go-drift/statekit/pkg/testing"
package testing
