package filter

import (
	"fmt"
	"reflect"
)

// Function renders a comparison that the plain operator form cannot express.
// Bound values only ever appear in Parameters, never inside the expression text.
type Function interface {
	Expression(nodeIdentifier string) string
	Parameters() map[string]any
}

// propertyComparison is the default case: "<node>.<property> <op> $param"
type propertyComparison struct {
	filter Filter
}

func (c propertyComparison) Expression(nodeIdentifier string) string {
	f := c.filter
	property := nodeIdentifier + "." + QuoteIdentifier(f.propertyName)
	param := "$" + f.parameterName

	switch f.operator {
	case IsNull:
		return property + " IS NULL"
	case Exists:
		return property + " IS NOT NULL"
	case IsTrue:
		return property + " = true"
	case IsFalse:
		return property + " = false"
	case IsEmpty:
		return fmt.Sprintf("(%s IS NULL OR size(%s) = 0)", property, property)
	}

	if f.ignoreCase && f.operator.caseFoldable() {
		property = "toLower(" + property + ")"
		param = "toLower(" + param + ")"
	}
	return property + " " + f.operator.cypher() + " " + param
}

func (c propertyComparison) Parameters() map[string]any {
	if !c.filter.operator.HasValue() {
		return map[string]any{}
	}
	return map[string]any{c.filter.parameterName: c.filter.transformed}
}

// InCollection tests whether a collection-valued property holds the bound element.
// A list-valued binding matches when any of its elements is present.
type InCollection struct {
	ref Ref
}

// NewInCollection builds the membership function for a finalized filter
func NewInCollection(ref Ref) Function {
	return InCollection{ref: ref}
}

// Variable is the iteration variable; it is unique per parameter so several
// membership tests can share one statement.
func (c InCollection) Variable() string {
	return "item_" + c.ref.ParameterName
}

func (c InCollection) Expression(nodeIdentifier string) string {
	source := "$" + c.ref.ParameterName
	if !isList(c.ref.Value) {
		source = "[" + source + "]"
	}
	v := c.Variable()
	return fmt.Sprintf("ANY(%s IN %s WHERE %s IN %s.%s)",
		v, source, v, nodeIdentifier, QuoteIdentifier(c.ref.PropertyName))
}

func (c InCollection) Parameters() map[string]any {
	return map[string]any{c.ref.ParameterName: c.ref.Value}
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}
