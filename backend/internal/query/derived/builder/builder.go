// Package builder lowers parsed method-name parts into filter predicates.
package builder

import (
	"graphderive/backend/internal/mapping"
	"graphderive/backend/internal/query/derived/part"
	"graphderive/backend/internal/query/filter"
)

// Builder turns one part plus its bound arguments into predicates
type Builder interface {
	// Arity is the number of stack entries Build consumes
	Arity() int
	// Build pops exactly Arity values. On error nothing is consumed and nothing is returned.
	Build(stack *Stack) ([]filter.Filter, error)
}

// Constructor creates the builder for a part linked to its predecessor by op
type Constructor func(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder

// Base is the configuration shared by every builder
type Base struct {
	Part            part.Part
	BooleanOperator filter.BooleanOperator
	Entity          *mapping.Entity
	Converter       func(any) any

	resolution mapping.Resolution
}

// NewBase resolves the part's property path against entity
func NewBase(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Base {
	return Base{
		Part:            p,
		BooleanOperator: op,
		Entity:          entity,
		Converter:       converter,
		resolution:      entity.Resolve(p.Path),
	}
}

// PropertyName is the terminal property the predicate compares
func (b Base) PropertyName() string {
	return b.resolution.Property
}

// IsNegated reports whether the part negates its comparison
func (b Base) IsNegated() bool {
	return b.Part.Negated()
}

// isCollection reports whether the terminal property is list-valued
func (b Base) isCollection() bool {
	return b.resolution.Owner.IsCollection(b.resolution.Property)
}

func (b Base) ownerName() string {
	if b.Entity == nil {
		return ""
	}
	return b.Entity.Name
}

// spec fills the attributes every predicate of this builder shares
func (b Base) spec(op filter.ComparisonOperator, value any, suffix string) filter.Spec {
	return filter.Spec{
		PropertyName:       b.PropertyName(),
		Operator:           op,
		BooleanOperator:    b.BooleanOperator,
		Negated:            b.IsNegated(),
		IgnoreCase:         b.Part.IgnoreCase,
		IgnoreCaseIfString: b.Part.IgnoreCaseWhenPossible,
		OwnerEntity:        b.ownerName(),
		NestedPath:         b.resolution.Nested,
		Value:              value,
		Index:              b.Part.Index,
		Suffix:             suffix,
		Converter:          b.Converter,
	}
}

// single builds exactly one predicate and restores the stack if construction fails
func (b Base) single(stack *Stack, args []any, spec filter.Spec, fn func(filter.Ref) filter.Function) ([]filter.Filter, error) {
	f, err := filter.New(spec)
	if err != nil {
		stack.restore(args)
		return nil, err
	}
	if fn != nil {
		f = f.WithFunction(fn)
	}
	return []filter.Filter{f}, nil
}
