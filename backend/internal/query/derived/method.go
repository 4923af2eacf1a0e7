// Package derived turns repository method names and their arguments into Cypher statements.
package derived

import (
	"go.uber.org/zap"
	"graphderive/backend/internal/mapping"
	"graphderive/backend/internal/query/cypher"
	"graphderive/backend/internal/query/derived/builder"
	"graphderive/backend/internal/query/derived/part"
	"graphderive/backend/internal/query/filter"
	apperrors "graphderive/backend/pkg/errors"
	"graphderive/backend/pkg/logger"
)

// Method is a parsed derived query bound to an entity. It holds no per-call state and
// may be shared between goroutines.
type Method struct {
	name           string
	entity         *mapping.Entity
	tree           *part.Tree
	builders       []builder.Builder
	nodeIdentifier string
	logger         *zap.Logger
}

// Option configures a Method
type Option func(*Method)

// WithNodeIdentifier sets the variable bound to the root node
func WithNodeIdentifier(id string) Option {
	return func(m *Method) {
		if id != "" {
			m.nodeIdentifier = id
		}
	}
}

// NewMethod parses name and selects a builder for every part. Unsupported comparison
// kinds are reported here, before any argument is bound.
func NewMethod(name string, entity *mapping.Entity, registry *builder.Registry, opts ...Option) (*Method, error) {
	if entity == nil {
		return nil, apperrors.NewEntityNotMapped("")
	}

	tree, err := part.Parse(name)
	if err != nil {
		return nil, err
	}

	m := &Method{
		name:           name,
		entity:         entity,
		tree:           tree,
		nodeIdentifier: "n",
		logger:         logger.Named("derived"),
	}
	for _, opt := range opts {
		opt(m)
	}

	for i, group := range tree.Predicate {
		for j, p := range group.Parts {
			op := filter.And
			switch {
			case i == 0 && j == 0:
				op = filter.None
			case j == 0:
				op = filter.Or
			}
			b, err := registry.Select(p, op, entity)
			if err != nil {
				return nil, err
			}
			m.builders = append(m.builders, b)
		}
	}

	m.logger.Debug("Derived query method",
		zap.String("method", name),
		zap.String("entity", entity.Name),
		zap.Int("parts", len(m.builders)),
		zap.Int("arguments", m.NumberOfArguments()),
	)
	return m, nil
}

// Name is the method name the query was derived from
func (m *Method) Name() string { return m.name }

// Tree is the parsed method name
func (m *Method) Tree() *part.Tree { return m.tree }

// NumberOfArguments is the number of values a call must bind
func (m *Method) NumberOfArguments() int {
	total := 0
	for _, b := range m.builders {
		total += b.Arity()
	}
	return total
}

// Filters binds args left to right and returns the predicates in method-name order
func (m *Method) Filters(args ...any) ([]filter.Filter, error) {
	if want := m.NumberOfArguments(); len(args) != want {
		return nil, apperrors.NewArgumentCountMismatch(m.name, want, len(args))
	}

	stack := builder.NewStack(args...)
	var filters []filter.Filter
	for _, b := range m.builders {
		built, err := b.Build(stack)
		if err != nil {
			return nil, err
		}
		filters = append(filters, built...)
	}
	return filters, nil
}

// Statement binds args and renders the complete query
func (m *Method) Statement(args ...any) (cypher.Statement, error) {
	filters, err := m.Filters(args...)
	if err != nil {
		return cypher.Statement{}, err
	}

	opts := cypher.Options{
		NodeIdentifier: m.nodeIdentifier,
		Mode:           modes[m.tree.Subject.Mode],
		Distinct:       m.tree.Subject.Distinct,
		Limit:          m.tree.Subject.MaxResults,
	}
	for _, o := range m.tree.Orders {
		res := m.entity.Resolve(o.Path)
		opts.Orders = append(opts.Orders, cypher.Order{
			Nested:     res.Nested,
			Property:   res.Property,
			Descending: o.Descending,
		})
	}

	return cypher.Render(m.entity.Label, filters, opts)
}

var modes = map[part.Mode]cypher.Mode{
	part.ModeFind:   cypher.ModeFind,
	part.ModeCount:  cypher.ModeCount,
	part.ModeExists: cypher.ModeExists,
	part.ModeDelete: cypher.ModeDelete,
}
