package builder

import (
	"sync"

	"go.uber.org/zap"
	"graphderive/backend/internal/mapping"
	"graphderive/backend/internal/query/derived/part"
	"graphderive/backend/internal/query/filter"
	apperrors "graphderive/backend/pkg/errors"
	"graphderive/backend/pkg/logger"
)

// Registry maps comparison kinds to builder constructors
type Registry struct {
	mu           sync.RWMutex
	constructors map[part.Type]Constructor
	converter    func(any) any
	logger       *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		constructors: map[part.Type]Constructor{},
		logger:       logger.Named("builder"),
	}
}

// Default registers a builder for every comparison kind the Cypher renderer supports.
// NEAR and WITHIN are left out.
func Default() *Registry {
	r := NewRegistry()
	for _, t := range []part.Type{
		part.SimpleProperty, part.NegatingSimpleProperty,
		part.LessThan, part.LessThanEqual, part.GreaterThan, part.GreaterThanEqual,
		part.Before, part.After, part.StartingWith, part.EndingWith, part.Regex,
	} {
		r.Register(t, NewPropertyComparisonBuilder)
	}
	r.Register(part.Like, NewLikeComparisonBuilder)
	r.Register(part.NotLike, NewLikeComparisonBuilder)
	r.Register(part.In, NewInComparisonBuilder)
	r.Register(part.NotIn, NewInComparisonBuilder)
	r.Register(part.Between, NewBetweenComparisonBuilder)
	r.Register(part.IsNull, NewIsNullComparisonBuilder)
	r.Register(part.IsNotNull, NewIsNullComparisonBuilder)
	r.Register(part.Exists, NewExistsComparisonBuilder)
	r.Register(part.True, NewBooleanComparisonBuilder)
	r.Register(part.False, NewBooleanComparisonBuilder)
	r.Register(part.IsEmpty, NewIsEmptyComparisonBuilder)
	r.Register(part.IsNotEmpty, NewIsEmptyComparisonBuilder)
	r.Register(part.Containing, newContainingBuilder)
	r.Register(part.NotContaining, newContainingBuilder)
	return r
}

// newContainingBuilder picks collection membership for list properties and
// substring matching for everything else.
func newContainingBuilder(p part.Part, op filter.BooleanOperator, entity *mapping.Entity, converter func(any) any) Builder {
	base := NewBase(p, op, entity, converter)
	if base.isCollection() {
		return &ContainsComparisonBuilder{Base: base}
	}
	return &PropertyComparisonBuilder{Base: base}
}

// Register binds t to c, replacing any previous constructor
func (r *Registry) Register(t part.Type, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[t] = c
}

// WithConverter sets the value transformation applied to every bound argument
func (r *Registry) WithConverter(fn func(any) any) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converter = fn
	return r
}

// Select returns the builder for p. Unregistered kinds are reported as unsupported query methods.
func (r *Registry) Select(p part.Part, op filter.BooleanOperator, entity *mapping.Entity) (Builder, error) {
	r.mu.RLock()
	c, ok := r.constructors[p.Type]
	converter := r.converter
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.NewUnsupportedQueryMethod(p.Property(), string(p.Type))
	}

	b := c(p, op, entity, converter)
	r.logger.Debug("Selected filter builder",
		zap.String("property", p.Property()),
		zap.String("type", string(p.Type)),
		zap.String("builder", builderName(b)),
	)
	return b, nil
}

func builderName(b Builder) string {
	switch b.(type) {
	case *ContainsComparisonBuilder:
		return "contains"
	case *PropertyComparisonBuilder:
		return "property"
	case *LikeComparisonBuilder:
		return "like"
	case *InComparisonBuilder:
		return "in"
	case *BetweenComparisonBuilder:
		return "between"
	case *valuelessBuilder:
		return "valueless"
	}
	return "custom"
}
