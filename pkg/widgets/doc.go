// Package widgets provides the Provider and Subscribe widgets plus a few
// structural leaf widgets.
//
// Provider exposes a list of containers to its subtree. Subscribe resolves
// the containers it names against the nearest Provider, rebuilds whenever
// one of them changes, and stops listening when it leaves the tree:
//
//	counter := NewCounter()
//
//	tree := widgets.Provider{
//	    Inject: []state.Store{counter},
//	    Child: widgets.Subscribe{
//	        To: []inject.Descriptor{inject.Ref[*Counter]()},
//	        Builder: func(ctx core.BuildContext, stores ...state.Store) core.Widget {
//	            c := stores[0].(*Counter)
//	            return widgets.Text{Content: fmt.Sprint(c.Count())}
//	        },
//	    },
//	}
//
// Providers nest: an inner Provider's scope falls back to the outer one,
// and shadows containers of the same type.
package widgets
