// Package filter holds the predicate model produced by derived-query builders
// and consumed by the Cypher renderer.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "graphderive/backend/pkg/errors"
)

// NestedSegment is one relationship hop walked before the terminal property is compared
type NestedSegment struct {
	PropertyName     string
	RelationshipType string
	Direction        Direction
	Label            string
}

// Spec carries everything needed to construct a Filter
type Spec struct {
	PropertyName    string
	Operator        ComparisonOperator
	BooleanOperator BooleanOperator
	Negated         bool
	IgnoreCase      bool
	OwnerEntity     string
	NestedPath      []NestedSegment
	Value           any
	// Index is the position of the originating part; Suffix separates filters built from one part.
	Index  int
	Suffix string
	// Converter transforms the bound value before it enters the parameter map.
	Converter func(any) any
	// IgnoreCaseIfString keeps IgnoreCase only when the transformed value is a string.
	IgnoreCaseIfString bool
}

// Filter is one comparison against an entity property. It is immutable once built.
type Filter struct {
	propertyName    string
	operator        ComparisonOperator
	booleanOperator BooleanOperator
	negated         bool
	ignoreCase      bool
	ownerEntity     string
	nestedPath      []NestedSegment
	value           any
	transformed     any
	parameterName   string
	function        Function
}

// New builds a Filter from spec. The unique parameter name is derived from the nested
// path, the property, the part index and the suffix.
func New(spec Spec) (Filter, error) {
	if spec.PropertyName == "" {
		return Filter{}, apperrors.NewInvalidFilter(spec.OwnerEntity, "property name must not be empty")
	}
	for i, seg := range spec.NestedPath {
		if seg.PropertyName == "" {
			return Filter{}, apperrors.NewInvalidFilter(spec.PropertyName, fmt.Sprintf("nested segment %d has no property", i))
		}
	}

	op := spec.Operator
	if op == "" {
		op = Equals
	}
	boolOp := spec.BooleanOperator
	if boolOp == "" {
		boolOp = None
	}

	transformed := spec.Value
	if spec.Converter != nil && op.HasValue() {
		transformed = spec.Converter(spec.Value)
	}
	ignoreCase := spec.IgnoreCase
	if ignoreCase && spec.IgnoreCaseIfString {
		_, ignoreCase = transformed.(string)
	}

	path := make([]NestedSegment, len(spec.NestedPath))
	copy(path, spec.NestedPath)

	return Filter{
		propertyName:    spec.PropertyName,
		operator:        op,
		booleanOperator: boolOp,
		negated:         spec.Negated,
		ignoreCase:      ignoreCase,
		ownerEntity:     spec.OwnerEntity,
		nestedPath:      path,
		value:           spec.Value,
		transformed:     transformed,
		parameterName:   parameterName(path, spec.PropertyName, spec.Index, spec.Suffix),
	}, nil
}

func (f Filter) PropertyName() string { return f.propertyName }
func (f Filter) Operator() ComparisonOperator { return f.operator }
func (f Filter) BooleanOperator() BooleanOperator { return f.booleanOperator }
func (f Filter) Negated() bool { return f.negated }
func (f Filter) IgnoreCase() bool { return f.ignoreCase }
func (f Filter) OwnerEntity() string { return f.ownerEntity }
func (f Filter) Value() any { return f.value }
func (f Filter) TransformedValue() any { return f.transformed }
func (f Filter) UniqueParameterName() string { return f.parameterName }
func (f Filter) Function() Function { return f.function }
func (f Filter) HasFunction() bool { return f.function != nil }
func (f Filter) IsNested() bool { return len(f.nestedPath) > 0 }

// NestedPath returns a copy of the hops walked before the terminal property
func (f Filter) NestedPath() []NestedSegment {
	path := make([]NestedSegment, len(f.nestedPath))
	copy(path, f.nestedPath)
	return path
}

// NestedPathKey identifies the nested path; filters sharing a key share a match variable
func (f Filter) NestedPathKey() string {
	names := make([]string, len(f.nestedPath))
	for i, seg := range f.nestedPath {
		names[i] = seg.PropertyName
	}
	return strings.Join(names, ".")
}

// Ref is the read-only view of a finalized filter handed to custom functions
type Ref struct {
	ParameterName string
	PropertyName  string
	Value         any
	IgnoreCase    bool
}

// Ref snapshots the fields a function may read
func (f Filter) Ref() Ref {
	return Ref{
		ParameterName: f.parameterName,
		PropertyName:  f.propertyName,
		Value:         f.transformed,
		IgnoreCase:    f.ignoreCase,
	}
}

// WithFunction returns a copy of f carrying the function built from f's own Ref
func (f Filter) WithFunction(factory func(Ref) Function) Filter {
	out := f
	out.function = factory(f.Ref())
	return out
}

// WithBooleanOperator returns a copy of f linked to its predecessor by op
func (f Filter) WithBooleanOperator(op BooleanOperator) Filter {
	out := f
	out.booleanOperator = op
	return out
}

// Expression renders the comparison against nodeIdentifier. Negation is left to the caller.
func (f Filter) Expression(nodeIdentifier string) string {
	if f.function != nil {
		return f.function.Expression(nodeIdentifier)
	}
	return propertyComparison{filter: f}.Expression(nodeIdentifier)
}

// Parameters returns the parameter map entries this filter contributes
func (f Filter) Parameters() map[string]any {
	if f.function != nil {
		return f.function.Parameters()
	}
	return propertyComparison{filter: f}.Parameters()
}

func (f Filter) String() string {
	var b strings.Builder
	if f.negated {
		b.WriteString("NOT ")
	}
	if key := f.NestedPathKey(); key != "" {
		b.WriteString(key)
		b.WriteByte('.')
	}
	b.WriteString(f.propertyName)
	b.WriteByte(' ')
	b.WriteString(string(f.operator))
	if f.operator.HasValue() {
		b.WriteString(" $")
		b.WriteString(f.parameterName)
	}
	return b.String()
}

func parameterName(path []NestedSegment, property string, index int, suffix string) string {
	parts := make([]string, 0, len(path)+3)
	for _, seg := range path {
		parts = append(parts, seg.PropertyName)
	}
	parts = append(parts, property, strconv.Itoa(index))
	if suffix != "" {
		parts = append(parts, suffix)
	}
	return sanitizeIdentifier(strings.Join(parts, "_"))
}

func sanitizeIdentifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// QuoteIdentifier wraps name in backticks for use as a Cypher label, property or type
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
