package cypher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"graphderive/backend/internal/query/filter"
)

func mustFilter(t *testing.T, spec filter.Spec) filter.Filter {
	t.Helper()
	f, err := filter.New(spec)
	require.NoError(t, err)
	return f
}

var ownedBy = filter.NestedSegment{PropertyName: "owner", RelationshipType: "OWNED_BY", Direction: filter.Outgoing, Label: "Person"}

func TestRender_ContainsScenario(t *testing.T) {
	f := mustFilter(t, filter.Spec{PropertyName: "tags", Operator: filter.In, BooleanOperator: filter.And, Value: "red"}).
		WithFunction(filter.NewInCollection)

	stmt, err := Render("Product", []filter.Filter{f}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "MATCH (n:`Product`)\n"+
		"WHERE ANY(item_tags_0 IN [$tags_0] WHERE item_tags_0 IN n.`tags`)\n"+
		"RETURN n", stmt.Cypher)
	assert.Equal(t, map[string]any{"tags_0": "red"}, stmt.Parameters)
	assert.Equal(t, "n", stmt.Column)
	assert.Equal(t, ModeFind, stmt.Mode)
}

func TestRender_FirstBooleanOperatorIgnored(t *testing.T) {
	f := mustFilter(t, filter.Spec{PropertyName: "name", BooleanOperator: filter.Or, Value: "Lamp"})

	stmt, err := Render("Product", []filter.Filter{f}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Product`)\nWHERE n.`name` = $name_0\nRETURN n", stmt.Cypher)
}

func TestRender_OrWithNegatedNestedPredicate(t *testing.T) {
	filters := []filter.Filter{
		mustFilter(t, filter.Spec{PropertyName: "name", Value: "Lamp", Index: 0}),
		mustFilter(t, filter.Spec{PropertyName: "name", Value: "Ada", Index: 1, BooleanOperator: filter.Or,
			Negated: true, NestedPath: []filter.NestedSegment{ownedBy}}),
	}

	stmt, err := Render("Product", filters, Options{})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Product`)\n"+
		"OPTIONAL MATCH (n)-[:`OWNED_BY`]->(n_1:`Person`)\n"+
		"WITH *\n"+
		"WHERE n.`name` = $name_0 OR NOT(n_1.`name` = $owner_name_1)\n"+
		"RETURN DISTINCT n", stmt.Cypher)
	assert.Equal(t, map[string]any{"name_0": "Lamp", "owner_name_1": "Ada"}, stmt.Parameters)
}

func TestRender_SharedAndMultiHopPaths(t *testing.T) {
	livesAt := filter.NestedSegment{PropertyName: "home", RelationshipType: "LIVES_AT", Direction: filter.Incoming}
	filters := []filter.Filter{
		mustFilter(t, filter.Spec{PropertyName: "name", Value: "Ada", Index: 0, NestedPath: []filter.NestedSegment{ownedBy}}),
		mustFilter(t, filter.Spec{PropertyName: "age", Operator: filter.GreaterThan, Value: 30, Index: 1,
			BooleanOperator: filter.And, NestedPath: []filter.NestedSegment{ownedBy}}),
		mustFilter(t, filter.Spec{PropertyName: "city", Value: "Lund", Index: 2,
			BooleanOperator: filter.And, NestedPath: []filter.NestedSegment{ownedBy, livesAt}}),
	}

	stmt, err := Render("Product", filters, Options{NodeIdentifier: "p", Mode: ModeCount})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (p:`Product`)\n"+
		"MATCH (p)-[:`OWNED_BY`]->(p_1:`Person`)\n"+
		"MATCH (p_1)<-[:`LIVES_AT`]-(p_2)\n"+
		"WHERE p_1.`name` = $owner_name_0 AND p_1.`age` > $owner_age_1 AND p_2.`city` = $owner_home_city_2\n"+
		"RETURN count(DISTINCT p) AS count", stmt.Cypher)
	assert.Equal(t, ColumnCount, stmt.Column)
	assert.Len(t, stmt.Parameters, 3)
}

func TestRender_PathVariablesDoNotCollide(t *testing.T) {
	ownerX := filter.NestedSegment{PropertyName: "owner_x", RelationshipType: "CO_OWNED_BY", Direction: filter.Outgoing}
	x := filter.NestedSegment{PropertyName: "x", RelationshipType: "KNOWS", Direction: filter.Outgoing}
	filters := []filter.Filter{
		mustFilter(t, filter.Spec{PropertyName: "name", Value: "Ada", Index: 0, NestedPath: []filter.NestedSegment{ownerX}}),
		mustFilter(t, filter.Spec{PropertyName: "name", Value: "Bob", Index: 1,
			BooleanOperator: filter.And, NestedPath: []filter.NestedSegment{ownedBy, x}}),
	}

	stmt, err := Render("Product", filters, Options{})
	require.NoError(t, err)
	assert.Contains(t, stmt.Cypher, "MATCH (n)-[:`CO_OWNED_BY`]->(n_1)\n")
	assert.Contains(t, stmt.Cypher, "MATCH (n)-[:`OWNED_BY`]->(n_2:`Person`)\n")
	assert.Contains(t, stmt.Cypher, "MATCH (n_2)-[:`KNOWS`]->(n_3)\n")
	assert.Contains(t, stmt.Cypher, "WHERE n_1.`name` = $owner_x_name_0 AND n_3.`name` = $owner_x_name_1")
}

func TestRender_TwoContainmentFiltersDoNotCollide(t *testing.T) {
	filters := []filter.Filter{
		mustFilter(t, filter.Spec{PropertyName: "tags", Operator: filter.In, Value: "red", Index: 0}).
			WithFunction(filter.NewInCollection),
		mustFilter(t, filter.Spec{PropertyName: "colors", Operator: filter.In, Value: []string{"blue"}, Index: 1,
			BooleanOperator: filter.And}).WithFunction(filter.NewInCollection),
	}

	stmt, err := Render("Product", filters, Options{})
	require.NoError(t, err)

	assert.Contains(t, stmt.Cypher, "ANY(item_tags_0 IN [$tags_0] WHERE item_tags_0 IN n.`tags`)")
	assert.Contains(t, stmt.Cypher, "ANY(item_colors_1 IN $colors_1 WHERE item_colors_1 IN n.`colors`)")
	assert.Equal(t, map[string]any{"tags_0": "red", "colors_1": []string{"blue"}}, stmt.Parameters)
}

func TestRender_NoRawValuesInCypher(t *testing.T) {
	filters := []filter.Filter{
		mustFilter(t, filter.Spec{PropertyName: "name", Value: "x' OR 1=1 //", Index: 0}),
		mustFilter(t, filter.Spec{PropertyName: "tags", Operator: filter.In, Value: "`) DETACH DELETE n //", Index: 1,
			BooleanOperator: filter.And}).WithFunction(filter.NewInCollection),
	}

	stmt, err := Render("Product", filters, Options{})
	require.NoError(t, err)
	assert.False(t, strings.Contains(stmt.Cypher, "1=1"))
	assert.False(t, strings.Contains(stmt.Cypher, "DETACH"))
}

func TestRender_DuplicateParameter(t *testing.T) {
	filters := []filter.Filter{
		mustFilter(t, filter.Spec{PropertyName: "name", Value: "a"}),
		mustFilter(t, filter.Spec{PropertyName: "name", Value: "b", BooleanOperator: filter.And}),
	}

	_, err := Render("Product", filters, Options{})
	assert.Error(t, err)
}

func TestRender_Modes(t *testing.T) {
	f := mustFilter(t, filter.Spec{PropertyName: "active", Operator: filter.IsTrue})

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"order and limit", Options{Limit: 3, Orders: []Order{{Property: "price", Descending: true}, {Property: "name"}}},
			"MATCH (n:`Product`)\nWHERE n.`active` = true\nRETURN n\nORDER BY n.`price` DESC, n.`name`\nLIMIT 3"},
		{"distinct order", Options{Distinct: true, Orders: []Order{{Property: "price", Descending: true}}},
			"MATCH (n:`Product`)\nWHERE n.`active` = true\nRETURN DISTINCT n, n.`price` AS sort_0\nORDER BY sort_0 DESC"},
		{"count", Options{Mode: ModeCount},
			"MATCH (n:`Product`)\nWHERE n.`active` = true\nRETURN count(n) AS count"},
		{"exists", Options{Mode: ModeExists},
			"MATCH (n:`Product`)\nWHERE n.`active` = true\nRETURN count(n) > 0 AS exists"},
		{"delete", Options{Mode: ModeDelete},
			"MATCH (n:`Product`)\nWHERE n.`active` = true\nWITH DISTINCT n\nDETACH DELETE n\nRETURN count(*) AS deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Render("Product", []filter.Filter{f}, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.Cypher)
			assert.Empty(t, stmt.Parameters)
		})
	}
}

func TestRender_NoFilters(t *testing.T) {
	stmt, err := Render("Product", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Product`)\nRETURN n", stmt.Cypher)

	_, err = Render("Product", nil, Options{Mode: "UPSERT"})
	assert.Error(t, err)
}

func TestRender_NestedOrderOnly(t *testing.T) {
	stmt, err := Render("Product", nil, Options{Orders: []Order{{Nested: []filter.NestedSegment{ownedBy}, Property: "name"}}})
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:`Product`)\n"+
		"OPTIONAL MATCH (n)-[:`OWNED_BY`]->(n_1:`Person`)\n"+
		"RETURN DISTINCT n, n_1.`name` AS sort_0\n"+
		"ORDER BY sort_0", stmt.Cypher)
}
