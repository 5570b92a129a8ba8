package inject

import (
	"fmt"
	"reflect"

	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/state"
)

// DescriptorKind distinguishes the two cases of [Descriptor].
type DescriptorKind int

const (
	// KindReference resolves an existing instance through the scope chain.
	KindReference DescriptorKind = iota
	// KindConstruct builds a fresh instance without consulting any scope.
	KindConstruct
)

func (k DescriptorKind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindConstruct:
		return "construct"
	default:
		return fmt.Sprintf("DescriptorKind(%d)", int(k))
	}
}

// Descriptor names a container a binding depends on. It is either a plain
// reference to a container type, resolved through the enclosing scopes, or
// a constructor paired with its arguments, producing a standalone instance.
type Descriptor struct {
	kind      DescriptorKind
	key       Key
	construct func() state.Store
}

// Ref describes the container of type T provided by an enclosing scope.
func Ref[T state.Store]() Descriptor {
	return Descriptor{kind: KindReference, key: KeyFor[T]()}
}

// RefNamed describes the container of type T named name.
func RefNamed[T state.Store](name string) Descriptor {
	return Descriptor{kind: KindReference, key: Key{Type: reflect.TypeOf((*T)(nil)).Elem(), Name: name}}
}

// RefType is Ref for a type known only at run time.
func RefType(t reflect.Type) Descriptor {
	return Descriptor{kind: KindReference, key: Key{Type: t}}
}

// Construct describes a fresh container built by ctor(args) at activation.
// The instance belongs to the binding alone and is never looked up in a scope.
func Construct[T state.Store, A any](ctor func(A) T, args A) Descriptor {
	return Descriptor{
		kind: KindConstruct,
		key:  KeyFor[T](),
		construct: func() state.Store {
			return ctor(args)
		},
	}
}

// Kind returns which case d holds.
func (d Descriptor) Kind() DescriptorKind {
	return d.kind
}

// Key returns the key d resolves, or the type it constructs.
func (d Descriptor) Key() Key {
	return d.key
}

func (d Descriptor) String() string {
	if d.kind == KindConstruct {
		return fmt.Sprintf("Construct(%s)", d.key)
	}
	return fmt.Sprintf("Ref(%s)", d.key)
}

// Resolve produces the instance d describes. Construct descriptors always
// build a new instance; references require a scope holding a match.
func (d Descriptor) Resolve(scope *Scope) (state.Store, error) {
	if d.kind == KindConstruct {
		return d.construct(), nil
	}
	if scope == nil {
		return nil, &errors.ConfigurationError{Descriptor: d.String()}
	}
	inst, ok := scope.Resolve(d.key)
	if !ok {
		return nil, &errors.ConfigurationError{Descriptor: d.String()}
	}
	return inst, nil
}

// ResolveAll resolves descriptors in order. The first failure is returned
// as an [*errors.ConfigurationError] and no instances are returned.
func ResolveAll(scope *Scope, descriptors []Descriptor) ([]state.Store, error) {
	instances := make([]state.Store, 0, len(descriptors))
	for _, d := range descriptors {
		inst, err := d.Resolve(scope)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, nil
}
