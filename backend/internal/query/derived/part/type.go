package part

import "strings"

// Type is the comparison kind encoded by a keyword at the end of a part
type Type string

const (
	Between                Type = "BETWEEN"
	IsNotNull              Type = "IS_NOT_NULL"
	IsNull                 Type = "IS_NULL"
	LessThan               Type = "LESS_THAN"
	LessThanEqual          Type = "LESS_THAN_EQUAL"
	GreaterThan            Type = "GREATER_THAN"
	GreaterThanEqual       Type = "GREATER_THAN_EQUAL"
	Before                 Type = "BEFORE"
	After                  Type = "AFTER"
	NotLike                Type = "NOT_LIKE"
	Like                   Type = "LIKE"
	StartingWith           Type = "STARTING_WITH"
	EndingWith             Type = "ENDING_WITH"
	IsNotEmpty             Type = "IS_NOT_EMPTY"
	IsEmpty                Type = "IS_EMPTY"
	NotContaining          Type = "NOT_CONTAINING"
	Containing             Type = "CONTAINING"
	NotIn                  Type = "NOT_IN"
	In                     Type = "IN"
	Near                   Type = "NEAR"
	Within                 Type = "WITHIN"
	Regex                  Type = "REGEX"
	Exists                 Type = "EXISTS"
	True                   Type = "TRUE"
	False                  Type = "FALSE"
	NegatingSimpleProperty Type = "NEGATING_SIMPLE_PROPERTY"
	SimpleProperty         Type = "SIMPLE_PROPERTY"
)

type typeInfo struct {
	keywords []string
	args     int
	negated  bool
}

var types = map[Type]typeInfo{
	Between:                {keywords: []string{"IsBetween", "Between"}, args: 2},
	IsNotNull:              {keywords: []string{"IsNotNull", "NotNull"}, args: 0, negated: true},
	IsNull:                 {keywords: []string{"IsNull", "Null"}, args: 0},
	LessThan:               {keywords: []string{"IsLessThan", "LessThan"}, args: 1},
	LessThanEqual:          {keywords: []string{"IsLessThanEqual", "LessThanEqual"}, args: 1},
	GreaterThan:            {keywords: []string{"IsGreaterThan", "GreaterThan"}, args: 1},
	GreaterThanEqual:       {keywords: []string{"IsGreaterThanEqual", "GreaterThanEqual"}, args: 1},
	Before:                 {keywords: []string{"IsBefore", "Before"}, args: 1},
	After:                  {keywords: []string{"IsAfter", "After"}, args: 1},
	NotLike:                {keywords: []string{"IsNotLike", "NotLike"}, args: 1, negated: true},
	Like:                   {keywords: []string{"IsLike", "Like"}, args: 1},
	StartingWith:           {keywords: []string{"IsStartingWith", "StartingWith", "StartsWith"}, args: 1},
	EndingWith:             {keywords: []string{"IsEndingWith", "EndingWith", "EndsWith"}, args: 1},
	IsNotEmpty:             {keywords: []string{"IsNotEmpty", "NotEmpty"}, args: 0, negated: true},
	IsEmpty:                {keywords: []string{"IsEmpty", "Empty"}, args: 0},
	NotContaining:          {keywords: []string{"IsNotContaining", "NotContaining", "NotContains"}, args: 1, negated: true},
	Containing:             {keywords: []string{"IsContaining", "Containing", "Contains"}, args: 1},
	NotIn:                  {keywords: []string{"IsNotIn", "NotIn"}, args: 1, negated: true},
	In:                     {keywords: []string{"IsIn", "In"}, args: 1},
	Near:                   {keywords: []string{"IsNear", "Near"}, args: 1},
	Within:                 {keywords: []string{"IsWithin", "Within"}, args: 1},
	Regex:                  {keywords: []string{"MatchesRegex", "Matches", "Regex"}, args: 1},
	Exists:                 {keywords: []string{"Exists"}, args: 0},
	True:                   {keywords: []string{"IsTrue", "True"}, args: 0},
	False:                  {keywords: []string{"IsFalse", "False"}, args: 0},
	NegatingSimpleProperty: {keywords: []string{"IsNot", "Not"}, args: 1, negated: true},
	SimpleProperty:         {keywords: []string{"Is", "Equals"}, args: 1},
}

// matchOrder is the order keywords are tried in; longer, negated forms come first.
var matchOrder = []Type{
	IsNotNull, IsNull, Between, LessThan, LessThanEqual, GreaterThan, GreaterThanEqual,
	Before, After, NotLike, Like, StartingWith, EndingWith, IsNotEmpty, IsEmpty,
	NotContaining, Containing, NotIn, In, Near, Within, Regex, Exists, True, False,
	NegatingSimpleProperty, SimpleProperty,
}

// Keywords returns the method-name keywords for t
func (t Type) Keywords() []string {
	return append([]string(nil), types[t].keywords...)
}

// NumberOfArguments is how many bound values a part of this type consumes
func (t Type) NumberOfArguments() int {
	return types[t].args
}

// Negated reports whether the type is the negated form of another comparison
func (t Type) Negated() bool {
	return types[t].negated
}

// Known reports whether t is a recognised comparison kind
func (t Type) Known() bool {
	_, ok := types[t]
	return ok
}

// fromSource finds the type whose keyword ends source, returning the property text before it.
func fromSource(source string) (Type, string) {
	for _, t := range matchOrder {
		for _, kw := range types[t].keywords {
			if len(source) > len(kw) && strings.HasSuffix(source, kw) {
				return t, source[:len(source)-len(kw)]
			}
		}
	}
	return SimpleProperty, source
}

