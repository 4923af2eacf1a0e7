// Package cypher renders filter predicates into a parameterised Cypher statement.
package cypher

import (
	"fmt"
	"strconv"
	"strings"

	"graphderive/backend/internal/query/filter"
	apperrors "graphderive/backend/pkg/errors"
)

// Mode selects the RETURN clause
type Mode string

const (
	ModeFind   Mode = "FIND"
	ModeCount  Mode = "COUNT"
	ModeExists Mode = "EXISTS"
	ModeDelete Mode = "DELETE"
)

// Result columns for the scalar modes
const (
	ColumnCount   = "count"
	ColumnExists  = "exists"
	ColumnDeleted = "deleted"
)

// Order is one ORDER BY item; Nested holds the hops before Property
type Order struct {
	Nested     []filter.NestedSegment
	Property   string
	Descending bool
}

// Options shape the statement around the WHERE clause
type Options struct {
	NodeIdentifier string
	Mode           Mode
	Distinct       bool
	Limit          int
	Orders         []Order
}

// Statement is a rendered query. Bound values live only in Parameters.
type Statement struct {
	Cypher     string         `json:"cypher"`
	Parameters map[string]any `json:"parameters"`
	Mode       Mode           `json:"mode"`
	Column     string         `json:"column"`
}

// Render builds the statement matching label nodes that satisfy filters
func Render(label string, filters []filter.Filter, opts Options) (Statement, error) {
	id := opts.NodeIdentifier
	if id == "" {
		id = "n"
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeFind
	}

	r := &renderer{root: id, vars: map[string]string{}}
	optional := false
	for _, f := range filters[min(1, len(filters)):] {
		if f.BooleanOperator() == filter.Or {
			optional = true
		}
	}

	var b strings.Builder
	b.WriteString("MATCH (")
	b.WriteString(id)
	if label != "" {
		b.WriteString(":")
		b.WriteString(filter.QuoteIdentifier(label))
	}
	b.WriteString(")")

	for _, f := range filters {
		r.ensurePath(&b, f.NestedPath(), optional)
	}
	for _, o := range opts.Orders {
		r.ensurePath(&b, o.Nested, true)
	}

	params := map[string]any{}
	if len(filters) > 0 {
		if r.optional {
			// a WHERE directly after OPTIONAL MATCH would only constrain the optional pattern
			b.WriteString("\nWITH *")
		}
		b.WriteString("\nWHERE ")
		for i, f := range filters {
			if i > 0 {
				if f.BooleanOperator() == filter.Or {
					b.WriteString(" OR ")
				} else {
					b.WriteString(" AND ")
				}
			}
			expr := f.Expression(r.variable(f.NestedPath()))
			if f.Negated() {
				expr = "NOT(" + expr + ")"
			}
			b.WriteString(expr)

			for k, v := range f.Parameters() {
				if _, dup := params[k]; dup {
					return Statement{}, apperrors.NewInvalidFilter(f.PropertyName(), "duplicate parameter "+k)
				}
				params[k] = v
			}
		}
	}

	distinct := opts.Distinct || len(r.vars) > 0
	stmt := Statement{Parameters: params, Mode: mode}

	b.WriteString("\n")
	switch mode {
	case ModeFind:
		b.WriteString("RETURN ")
		if distinct {
			b.WriteString("DISTINCT ")
		}
		b.WriteString(id)
		stmt.Column = id
		sortKeys := make([]string, len(opts.Orders))
		for i, o := range opts.Orders {
			sortKeys[i] = r.variable(o.Nested) + "." + filter.QuoteIdentifier(o.Property)
			// DISTINCT hides everything not projected, so sort keys become columns
			if distinct {
				alias := "sort_" + strconv.Itoa(i)
				b.WriteString(", " + sortKeys[i] + " AS " + alias)
				sortKeys[i] = alias
			}
		}
		if len(opts.Orders) > 0 {
			b.WriteString("\nORDER BY ")
			for i, o := range opts.Orders {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(sortKeys[i])
				if o.Descending {
					b.WriteString(" DESC")
				}
			}
		}
		if opts.Limit > 0 {
			b.WriteString("\nLIMIT ")
			b.WriteString(strconv.Itoa(opts.Limit))
		}
	case ModeCount:
		if distinct {
			fmt.Fprintf(&b, "RETURN count(DISTINCT %s) AS %s", id, ColumnCount)
		} else {
			fmt.Fprintf(&b, "RETURN count(%s) AS %s", id, ColumnCount)
		}
		stmt.Column = ColumnCount
	case ModeExists:
		fmt.Fprintf(&b, "RETURN count(%s) > 0 AS %s", id, ColumnExists)
		stmt.Column = ColumnExists
	case ModeDelete:
		fmt.Fprintf(&b, "WITH DISTINCT %s\nDETACH DELETE %s\nRETURN count(*) AS %s", id, id, ColumnDeleted)
		stmt.Column = ColumnDeleted
	default:
		return Statement{}, apperrors.NewInvalidFilter(label, "unknown statement mode "+string(mode))
	}

	stmt.Cypher = b.String()
	return stmt, nil
}

type renderer struct {
	root     string
	// vars maps a nested path key to its match variable
	vars     map[string]string
	optional bool
}

func pathKey(path []filter.NestedSegment) string {
	names := make([]string, len(path))
	for i, seg := range path {
		names[i] = seg.PropertyName
	}
	return strings.Join(names, ".")
}

func (r *renderer) variable(path []filter.NestedSegment) string {
	if len(path) == 0 {
		return r.root
	}
	return r.vars[pathKey(path)]
}

// ensurePath writes one MATCH per hop of path not matched yet
func (r *renderer) ensurePath(b *strings.Builder, path []filter.NestedSegment, optional bool) {
	from := r.root
	for i, seg := range path {
		key := pathKey(path[:i+1])
		if v, ok := r.vars[key]; ok {
			from = v
			continue
		}
		// numbered so distinct paths never share a variable
		to := r.root + "_" + strconv.Itoa(len(r.vars)+1)
		r.vars[key] = to

		b.WriteString("\n")
		if optional {
			b.WriteString("OPTIONAL ")
			r.optional = true
		}
		b.WriteString("MATCH (")
		b.WriteString(from)
		b.WriteString(")")
		rel := "[:" + filter.QuoteIdentifier(seg.RelationshipType) + "]"
		switch seg.Direction {
		case filter.Incoming:
			b.WriteString("<-" + rel + "-")
		case filter.Undirected:
			b.WriteString("-" + rel + "-")
		default:
			b.WriteString("-" + rel + "->")
		}
		b.WriteString("(")
		b.WriteString(to)
		if seg.Label != "" {
			b.WriteString(":")
			b.WriteString(filter.QuoteIdentifier(seg.Label))
		}
		b.WriteString(")")
		from = to
	}
}
