package widgets

import "github.com/go-drift/statekit/pkg/core"

// Text is a leaf widget holding a string.
type Text struct {
	core.StatelessBase
	Content string
}

// Build returns nil; Text has no children.
func (Text) Build(core.BuildContext) core.Widget {
	return nil
}

// Column hosts its children in order.
type Column struct {
	core.MultiChildBase
	Children []core.Widget
}

// ChildWidgets returns the column's children.
func (c Column) ChildWidgets() []core.Widget {
	return c.Children
}

// Texts returns the content of every Text under root, depth-first.
func Texts(root core.Element) []string {
	var out []string
	var visit func(core.Element) bool
	visit = func(e core.Element) bool {
		if text, ok := e.Widget().(Text); ok {
			out = append(out, text.Content)
		}
		e.VisitChildren(visit)
		return true
	}
	if root != nil {
		visit(root)
	}
	return out
}
