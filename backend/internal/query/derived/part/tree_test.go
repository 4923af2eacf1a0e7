package part

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "graphderive/backend/pkg/errors"
)

func TestParse_SinglePart(t *testing.T) {
	tree, err := Parse("findByTagsContaining")
	require.NoError(t, err)

	assert.Equal(t, ModeFind, tree.Subject.Mode)
	parts := tree.Parts()
	require.Len(t, parts, 1)
	assert.Equal(t, []string{"tags"}, parts[0].Path)
	assert.Equal(t, Containing, parts[0].Type)
	assert.False(t, parts[0].Negated())
	assert.Equal(t, 1, tree.NumberOfArguments())
}

func TestParse_Types(t *testing.T) {
	tests := []struct {
		method   string
		property string
		typ      Type
		args     int
	}{
		{"findByName", "name", SimpleProperty, 1},
		{"findByNameIs", "name", SimpleProperty, 1},
		{"findByNameEquals", "name", SimpleProperty, 1},
		{"findByNameNot", "name", NegatingSimpleProperty, 1},
		{"findByPriceBetween", "price", Between, 2},
		{"findByPriceLessThan", "price", LessThan, 1},
		{"findByPriceLessThanEqual", "price", LessThanEqual, 1},
		{"findByPriceIsGreaterThanEqual", "price", GreaterThanEqual, 1},
		{"findByCreatedBefore", "created", Before, 1},
		{"findByNameNotLike", "name", NotLike, 1},
		{"findByNameStartsWith", "name", StartingWith, 1},
		{"findByNameEndingWith", "name", EndingWith, 1},
		{"findByTagsNotContaining", "tags", NotContaining, 1},
		{"findByTagsIsEmpty", "tags", IsEmpty, 0},
		{"findByTagsIsNotEmpty", "tags", IsNotEmpty, 0},
		{"findByNameIsNull", "name", IsNull, 0},
		{"findByNameIsNotNull", "name", IsNotNull, 0},
		{"findByColorIn", "color", In, 1},
		{"findByColorNotIn", "color", NotIn, 1},
		{"findByLocationNear", "location", Near, 1},
		{"findByNameMatchesRegex", "name", Regex, 1},
		{"findByNameExists", "name", Exists, 0},
		{"findByActiveTrue", "active", True, 0},
		{"findByActiveIsFalse", "active", False, 0},
		{"findByURL", "URL", SimpleProperty, 1},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			tree, err := Parse(tt.method)
			require.NoError(t, err)
			parts := tree.Parts()
			require.Len(t, parts, 1)
			assert.Equal(t, tt.property, parts[0].Property())
			assert.Equal(t, tt.typ, parts[0].Type)
			assert.Equal(t, tt.args, tree.NumberOfArguments())
		})
	}
}

func TestParse_AndOr(t *testing.T) {
	tree, err := Parse("findByNameAndTagsContainingOrColorNotIn")
	require.NoError(t, err)

	require.Len(t, tree.Predicate, 2)
	require.Len(t, tree.Predicate[0].Parts, 2)
	require.Len(t, tree.Predicate[1].Parts, 1)

	parts := tree.Parts()
	assert.Equal(t, "name", parts[0].Property())
	assert.Equal(t, "tags", parts[1].Property())
	assert.Equal(t, "color", parts[2].Property())
	for i, p := range parts {
		assert.Equal(t, i, p.Index)
	}
	assert.True(t, parts[2].Negated())
}

func TestParse_KeywordsInsidePropertyNames(t *testing.T) {
	tree, err := Parse("findByOrganizationAndBrandName")
	require.NoError(t, err)

	parts := tree.Parts()
	require.Len(t, parts, 2)
	assert.Equal(t, "organization", parts[0].Property())
	assert.Equal(t, "brandName", parts[1].Property())
}

func TestParse_NestedPath(t *testing.T) {
	tree, err := Parse("findByOwner_Address_CityIgnoreCase")
	require.NoError(t, err)

	p := tree.Parts()[0]
	assert.Equal(t, []string{"owner", "address", "city"}, p.Path)
	assert.True(t, p.IgnoreCase)
}

func TestParse_SubjectAndOrder(t *testing.T) {
	tree, err := Parse("findDistinctTop3ByNameAllIgnoreCaseOrderByPriceDescNameAsc")
	require.NoError(t, err)

	assert.True(t, tree.Subject.Distinct)
	assert.Equal(t, 3, tree.Subject.MaxResults)
	assert.True(t, tree.AllIgnoreCase)
	assert.True(t, tree.Parts()[0].IgnoreCase)
	require.Len(t, tree.Orders, 2)
	assert.Equal(t, Order{Path: []string{"price"}, Descending: true}, tree.Orders[0])
	assert.Equal(t, Order{Path: []string{"name"}}, tree.Orders[1])
}

func TestParse_SubjectKeywordsOnlyAfterPrefix(t *testing.T) {
	cases := []struct {
		method     string
		distinct   bool
		maxResults int
	}{
		{"findTopicsByName", false, 0},
		{"findPeopleWithTopScoreByName", false, 0},
		{"findFirstnameByName", false, 0},
		{"findDistinctivePeopleByName", false, 0},
		{"findPeopleDistinctByName", false, 0},
		{"findFirstByName", false, 1},
		{"findTop10ByName", false, 10},
		{"findDistinctFirst2PeopleByName", true, 2},
		{"findDistinctPeopleByName", true, 0},
	}
	for _, tc := range cases {
		tree, err := Parse(tc.method)
		require.NoError(t, err, tc.method)
		assert.Equal(t, tc.distinct, tree.Subject.Distinct, tc.method)
		assert.Equal(t, tc.maxResults, tree.Subject.MaxResults, tc.method)
	}
}

func TestParse_AllIgnoreCaseIsWhenPossible(t *testing.T) {
	tree, err := Parse("findByNameAndAgeAllIgnoreCase")
	require.NoError(t, err)
	for _, p := range tree.Parts() {
		assert.True(t, p.IgnoreCase, p.Source)
		assert.True(t, p.IgnoreCaseWhenPossible, p.Source)
	}

	tree, err = Parse("findByNameIgnoreCaseAndAge")
	require.NoError(t, err)
	parts := tree.Parts()
	require.Len(t, parts, 2)
	assert.True(t, parts[0].IgnoreCase)
	assert.False(t, parts[0].IgnoreCaseWhenPossible)
	assert.False(t, parts[1].IgnoreCase)
}

func TestParse_Modes(t *testing.T) {
	cases := map[string]Mode{
		"countByName":     ModeCount,
		"existsByName":    ModeExists,
		"deleteByName":    ModeDelete,
		"removeByName":    ModeDelete,
		"readByName":      ModeFind,
		"findFirstByName": ModeFind,
	}
	for method, mode := range cases {
		tree, err := Parse(method)
		require.NoError(t, err, method)
		assert.Equal(t, mode, tree.Subject.Mode, method)
	}

	tree, err := Parse("findFirstByName")
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Subject.MaxResults)
}

func TestParse_NoCriteria(t *testing.T) {
	tree, err := Parse("findAll")
	require.NoError(t, err)
	assert.Empty(t, tree.Parts())
	assert.Zero(t, tree.NumberOfArguments())
}

func TestParse_Invalid(t *testing.T) {
	for _, method := range []string{"fetchByName", "findBy", "findByName_", "findByNameOrderBy", "findTop0ByName"} {
		_, err := Parse(method)
		require.Error(t, err, method)
		var invalid *apperrors.ErrInvalidMethodName
		assert.ErrorAs(t, err, &invalid, method)
	}
}
