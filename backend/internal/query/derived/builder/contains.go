package builder

import (
	"graphderive/backend/internal/mapping"
	"graphderive/backend/internal/query/derived/part"
	"graphderive/backend/internal/query/filter"
)

// ContainsComparisonBuilder filters entities whose collection-valued property does,
// or with NotContaining does not, contain the bound element.
//
// The predicate uses IN with the operands swapped: the property is the collection being
// searched and the bound value is the needle, so rendering goes through filter.InCollection.
type ContainsComparisonBuilder struct {
	Base
}

func NewContainsComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	return &ContainsComparisonBuilder{Base: NewBase(p, op, entity, converter)}
}

func (b *ContainsComparisonBuilder) Arity() int { return 1 }

func (b *ContainsComparisonBuilder) Build(stack *Stack) ([]filter.Filter, error) {
	args, err := stack.take(b.PropertyName(), b.Arity())
	if err != nil {
		return nil, err
	}
	return b.single(stack, args, b.spec(filter.In, args[0], ""), filter.NewInCollection)
}
