package devtools

import (
	"fmt"
	"reflect"

	"github.com/go-drift/statekit/pkg/core"
	"github.com/go-drift/statekit/pkg/widgets"
)

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// WidgetTreeNode represents a node in the serialized widget/element tree.
type WidgetTreeNode struct {
	WidgetType  string           `json:"widgetType"`
	ElementType string           `json:"elementType"`
	Key         any              `json:"key,omitempty"`
	Depth       int              `json:"depth"`
	HasState    bool             `json:"hasState,omitempty"`
	Phase       string           `json:"phase,omitempty"`
	Subscribed  []string         `json:"subscribed,omitempty"`
	Children    []WidgetTreeNode `json:"children,omitempty"`
}

func serializeWidgetTree(elem core.Element, depth int) WidgetTreeNode {
	if elem == nil {
		return WidgetTreeNode{ElementType: "<nil>"}
	}

	widget := elem.Widget()
	node := WidgetTreeNode{
		ElementType: reflect.TypeOf(elem).String(),
		Depth:       elem.Depth(),
	}
	if widget != nil {
		node.WidgetType = reflect.TypeOf(widget).String()
		node.Key = safeKey(widget.Key())
	}

	if stateful, ok := elem.(*core.StatefulElement); ok {
		node.HasState = true
		if sub, ok := stateful.State().(*widgets.SubscribeState); ok && sub.Binding() != nil {
			node.Phase = sub.Binding().Phase().String()
			for _, s := range sub.Binding().Instances() {
				node.Subscribed = append(node.Subscribed, DisplayName(s))
			}
		}
	}

	if depth < maxTreeDepth {
		elem.VisitChildren(func(child core.Element) bool {
			node.Children = append(node.Children, serializeWidgetTree(child, depth+1))
			return true
		})
	}
	return node
}

// safeKey converts a widget key to a JSON-safe value.
func safeKey(key any) any {
	if key == nil {
		return nil
	}
	switch key.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool:
		return key
	default:
		return fmt.Sprintf("%v", key)
	}
}
