package builder

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"graphderive/backend/internal/mapping"
	"graphderive/backend/internal/query/derived/part"
	"graphderive/backend/internal/query/filter"
	apperrors "graphderive/backend/pkg/errors"
)

var comparisonOperators = map[part.Type]filter.ComparisonOperator{
	part.SimpleProperty:         filter.Equals,
	part.NegatingSimpleProperty: filter.Equals,
	part.LessThan:               filter.LessThan,
	part.Before:                 filter.LessThan,
	part.LessThanEqual:          filter.LessThanEqual,
	part.GreaterThan:            filter.GreaterThan,
	part.After:                  filter.GreaterThan,
	part.GreaterThanEqual:       filter.GreaterThanEqual,
	part.StartingWith:           filter.StartingWith,
	part.EndingWith:             filter.EndingWith,
	part.Containing:             filter.Containing,
	part.NotContaining:          filter.Containing,
	part.Regex:                  filter.Matches,
}

// PropertyComparisonBuilder compares a property against one bound value
type PropertyComparisonBuilder struct {
	Base
}

func NewPropertyComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	return &PropertyComparisonBuilder{Base: NewBase(p, op, entity, converter)}
}

func (b *PropertyComparisonBuilder) Arity() int { return 1 }

func (b *PropertyComparisonBuilder) Build(stack *Stack) ([]filter.Filter, error) {
	args, err := stack.take(b.PropertyName(), b.Arity())
	if err != nil {
		return nil, err
	}
	value := args[0]

	op, ok := comparisonOperators[b.Part.Type]
	if !ok {
		stack.restore(args)
		return nil, apperrors.NewUnsupportedQueryMethod(b.Part.Property(), string(b.Part.Type))
	}
	// equality against nil means "is null"
	if op == filter.Equals && value == nil {
		op = filter.IsNull
	}
	if op == filter.Matches && b.Part.IgnoreCase {
		if s, ok := value.(string); ok && !strings.HasPrefix(s, "(?i)") {
			value = "(?i)" + s
		}
	}

	return b.single(stack, args, b.spec(op, value, ""), nil)
}

// LikeComparisonBuilder matches a property against a '*' wildcard pattern
type LikeComparisonBuilder struct {
	Base
}

func NewLikeComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	return &LikeComparisonBuilder{Base: NewBase(p, op, entity, converter)}
}

func (b *LikeComparisonBuilder) Arity() int { return 1 }

func (b *LikeComparisonBuilder) Build(stack *Stack) ([]filter.Filter, error) {
	args, err := stack.take(b.PropertyName(), b.Arity())
	if err != nil {
		return nil, err
	}
	raw := args[0]
	if b.Converter != nil {
		raw = b.Converter(raw)
	}
	pattern, ok := raw.(string)
	if !ok {
		stack.restore(args)
		return nil, apperrors.NewInvalidFilter(b.PropertyName(), fmt.Sprintf("LIKE needs a string pattern, got %T", raw))
	}
	// the converter sees the raw pattern, never the regex
	spec := b.spec(filter.Like, likeToRegex(pattern, b.Part.IgnoreCase), "")
	spec.Converter = nil
	return b.single(stack, args, spec, nil)
}

// likeToRegex quotes pattern and turns each '*' into '.*'
func likeToRegex(pattern string, ignoreCase bool) string {
	pieces := strings.Split(pattern, "*")
	for i, p := range pieces {
		pieces[i] = regexp.QuoteMeta(p)
	}
	re := strings.Join(pieces, ".*")
	if ignoreCase {
		re = "(?i)" + re
	}
	return re
}

// InComparisonBuilder tests a scalar property against a list of candidates
type InComparisonBuilder struct {
	Base
}

func NewInComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	return &InComparisonBuilder{Base: NewBase(p, op, entity, converter)}
}

func (b *InComparisonBuilder) Arity() int { return 1 }

func (b *InComparisonBuilder) Build(stack *Stack) ([]filter.Filter, error) {
	args, err := stack.take(b.PropertyName(), b.Arity())
	if err != nil {
		return nil, err
	}
	return b.single(stack, args, b.spec(filter.In, asList(args[0]), ""), nil)
}

// asList wraps a scalar into a one-element list; lists pass through untouched
func asList(v any) any {
	if v == nil {
		return []any{}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			return v
		}
	case reflect.Array:
		return v
	}
	return []any{v}
}

// BetweenComparisonBuilder bounds a property by two values, inclusive on both ends
type BetweenComparisonBuilder struct {
	Base
}

func NewBetweenComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	return &BetweenComparisonBuilder{Base: NewBase(p, op, entity, converter)}
}

func (b *BetweenComparisonBuilder) Arity() int { return 2 }

func (b *BetweenComparisonBuilder) Build(stack *Stack) ([]filter.Filter, error) {
	args, err := stack.take(b.PropertyName(), b.Arity())
	if err != nil {
		return nil, err
	}

	lower, err := filter.New(b.spec(filter.GreaterThanEqual, args[0], "from"))
	if err != nil {
		stack.restore(args)
		return nil, err
	}
	upperSpec := b.spec(filter.LessThanEqual, args[1], "to")
	upperSpec.BooleanOperator = filter.And
	upper, err := filter.New(upperSpec)
	if err != nil {
		stack.restore(args)
		return nil, err
	}
	return []filter.Filter{lower, upper}, nil
}

// valuelessBuilder covers comparisons that consume no arguments
type valuelessBuilder struct {
	Base
	operator filter.ComparisonOperator
}

func (b *valuelessBuilder) Arity() int { return 0 }

func (b *valuelessBuilder) Build(stack *Stack) ([]filter.Filter, error) {
	return b.single(stack, nil, b.spec(b.operator, nil, ""), nil)
}

// NewIsNullComparisonBuilder handles IsNull and IsNotNull
func NewIsNullComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	return &valuelessBuilder{Base: NewBase(p, op, entity, converter), operator: filter.IsNull}
}

// NewExistsComparisonBuilder handles Exists
func NewExistsComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	return &valuelessBuilder{Base: NewBase(p, op, entity, converter), operator: filter.Exists}
}

// NewBooleanComparisonBuilder handles True and False
func NewBooleanComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	operator := filter.IsTrue
	if p.Type == part.False {
		operator = filter.IsFalse
	}
	return &valuelessBuilder{Base: NewBase(p, op, entity, converter), operator: operator}
}

// NewIsEmptyComparisonBuilder handles IsEmpty and IsNotEmpty
func NewIsEmptyComparisonBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	return &valuelessBuilder{Base: NewBase(p, op, entity, converter), operator: filter.IsEmpty}
}
