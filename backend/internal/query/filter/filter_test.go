package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresPropertyName(t *testing.T) {
	_, err := New(Spec{Operator: Equals, Value: "x"})
	require.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	f, err := New(Spec{PropertyName: "name", Value: "Ada", Index: 0})
	require.NoError(t, err)

	assert.Equal(t, Equals, f.Operator())
	assert.Equal(t, None, f.BooleanOperator())
	assert.Equal(t, "name_0", f.UniqueParameterName())
	assert.False(t, f.HasFunction())
}

func TestNew_NestedParameterName(t *testing.T) {
	f, err := New(Spec{
		PropertyName: "city",
		NestedPath: []NestedSegment{
			{PropertyName: "owner", RelationshipType: "OWNER", Direction: Outgoing},
			{PropertyName: "address", RelationshipType: "ADDRESS", Direction: Outgoing},
		},
		Value:  "Lund",
		Index:  2,
		Suffix: "x",
	})
	require.NoError(t, err)

	assert.Equal(t, "owner_address_city_2_x", f.UniqueParameterName())
	assert.Equal(t, "owner.address", f.NestedPathKey())
	assert.True(t, f.IsNested())
}

func TestNew_NestedPathIsCopied(t *testing.T) {
	path := []NestedSegment{{PropertyName: "owner"}}
	f, err := New(Spec{PropertyName: "name", NestedPath: path, Value: "a"})
	require.NoError(t, err)

	path[0].PropertyName = "mutated"
	got := f.NestedPath()
	got[0].PropertyName = "mutated-again"

	assert.Equal(t, "owner", f.NestedPath()[0].PropertyName)
}

func TestPropertyComparison_Expressions(t *testing.T) {
	tests := []struct {
		name       string
		op         ComparisonOperator
		ignoreCase bool
		want       string
		wantParams int
	}{
		{"equals", Equals, false, "n.`name` = $name_0", 1},
		{"equals ignore case", Equals, true, "toLower(n.`name`) = toLower($name_0)", 1},
		{"greater", GreaterThan, false, "n.`name` > $name_0", 1},
		{"less equal", LessThanEqual, false, "n.`name` <= $name_0", 1},
		{"starts", StartingWith, false, "n.`name` STARTS WITH $name_0", 1},
		{"contains ignore case", Containing, true, "toLower(n.`name`) CONTAINS toLower($name_0)", 1},
		{"like", Like, true, "n.`name` =~ $name_0", 1},
		{"in", In, false, "n.`name` IN $name_0", 1},
		{"is null", IsNull, false, "n.`name` IS NULL", 0},
		{"exists", Exists, false, "n.`name` IS NOT NULL", 0},
		{"true", IsTrue, false, "n.`name` = true", 0},
		{"empty", IsEmpty, false, "(n.`name` IS NULL OR size(n.`name`) = 0)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(Spec{PropertyName: "name", Operator: tt.op, IgnoreCase: tt.ignoreCase, Value: "v"})
			require.NoError(t, err)

			assert.Equal(t, tt.want, f.Expression("n"))
			assert.Len(t, f.Parameters(), tt.wantParams)
		})
	}
}

func TestConverter_AppliedOnce(t *testing.T) {
	calls := 0
	f, err := New(Spec{
		PropertyName: "code",
		Value:        "abc",
		Converter: func(v any) any {
			calls++
			return v.(string) + "!"
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", f.Value())
	assert.Equal(t, map[string]any{"code_0": "abc!"}, f.Parameters())
	assert.Equal(t, map[string]any{"code_0": "abc!"}, f.Parameters())
	assert.Equal(t, 1, calls)
}

func TestIgnoreCaseIfString(t *testing.T) {
	num, err := New(Spec{PropertyName: "age", Value: 30, Index: 1, IgnoreCase: true, IgnoreCaseIfString: true})
	require.NoError(t, err)
	assert.False(t, num.IgnoreCase())
	assert.Equal(t, "n.`age` = $age_1", num.Expression("n"))

	str, err := New(Spec{PropertyName: "name", Value: "bob", IgnoreCase: true, IgnoreCaseIfString: true})
	require.NoError(t, err)
	assert.True(t, str.IgnoreCase())

	// the check runs on the converted value
	conv, err := New(Spec{
		PropertyName:       "age",
		Value:              30,
		IgnoreCase:         true,
		IgnoreCaseIfString: true,
		Converter:          func(v any) any { return "thirty" },
	})
	require.NoError(t, err)
	assert.True(t, conv.IgnoreCase())

	// explicit ignore case is kept regardless of the value type
	explicit, err := New(Spec{PropertyName: "age", Value: 30, IgnoreCase: true})
	require.NoError(t, err)
	assert.True(t, explicit.IgnoreCase())
}

func TestWithFunction_ReadsFinalizedFilter(t *testing.T) {
	base, err := New(Spec{PropertyName: "tags", Operator: In, Value: "red", Index: 3})
	require.NoError(t, err)

	f := base.WithFunction(NewInCollection)

	assert.False(t, base.HasFunction())
	require.True(t, f.HasFunction())
	assert.Equal(t, "ANY(item_tags_3 IN [$tags_3] WHERE item_tags_3 IN n.`tags`)", f.Expression("n"))
	assert.Equal(t, map[string]any{"tags_3": "red"}, f.Parameters())
}

func TestInCollection_ListValue(t *testing.T) {
	f, err := New(Spec{PropertyName: "tags", Operator: In, Value: []string{"red", "blue"}})
	require.NoError(t, err)
	f = f.WithFunction(NewInCollection)

	assert.Equal(t, "ANY(item_tags_0 IN $tags_0 WHERE item_tags_0 IN m.`tags`)", f.Expression("m"))
}

func TestInCollection_Idempotent(t *testing.T) {
	f, err := New(Spec{PropertyName: "tags", Operator: In, Value: "red"})
	require.NoError(t, err)
	f = f.WithFunction(NewInCollection)

	assert.Equal(t, f.Expression("n"), f.Expression("n"))
	assert.Equal(t, f.Parameters(), f.Parameters())
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`na``me`", QuoteIdentifier("na`me"))
	assert.Equal(t, "x_y_0", sanitizeIdentifier("x.y-0"))
}

func TestString(t *testing.T) {
	f, err := New(Spec{PropertyName: "name", Operator: Equals, Negated: true, Value: "a",
		NestedPath: []NestedSegment{{PropertyName: "owner"}}})
	require.NoError(t, err)
	assert.Equal(t, "NOT owner.name EQUALS $owner_name_0", f.String())
}
