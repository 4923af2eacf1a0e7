package filter

// ComparisonOperator is the comparison a predicate applies to its property
type ComparisonOperator string

const (
	Equals           ComparisonOperator = "EQUALS"
	In               ComparisonOperator = "IN"
	Like             ComparisonOperator = "LIKE"
	Matches          ComparisonOperator = "MATCHES"
	Containing       ComparisonOperator = "CONTAINING"
	StartingWith     ComparisonOperator = "STARTING_WITH"
	EndingWith       ComparisonOperator = "ENDING_WITH"
	GreaterThan      ComparisonOperator = "GREATER_THAN"
	GreaterThanEqual ComparisonOperator = "GREATER_THAN_EQUAL"
	LessThan         ComparisonOperator = "LESS_THAN"
	LessThanEqual    ComparisonOperator = "LESS_THAN_EQUAL"
	IsNull           ComparisonOperator = "IS_NULL"
	Exists           ComparisonOperator = "EXISTS"
	IsTrue           ComparisonOperator = "IS_TRUE"
	IsFalse          ComparisonOperator = "IS_FALSE"
	IsEmpty          ComparisonOperator = "IS_EMPTY"
)

// HasValue reports whether the operator compares against a bound value
func (o ComparisonOperator) HasValue() bool {
	switch o {
	case IsNull, Exists, IsTrue, IsFalse, IsEmpty:
		return false
	}
	return true
}

// caseFoldable reports whether ignore-case wraps both sides in toLower
func (o ComparisonOperator) caseFoldable() bool {
	switch o {
	case Equals, Containing, StartingWith, EndingWith:
		return true
	}
	return false
}

func (o ComparisonOperator) cypher() string {
	switch o {
	case Equals:
		return "="
	case In:
		return "IN"
	case Like, Matches:
		return "=~"
	case Containing:
		return "CONTAINS"
	case StartingWith:
		return "STARTS WITH"
	case EndingWith:
		return "ENDS WITH"
	case GreaterThan:
		return ">"
	case GreaterThanEqual:
		return ">="
	case LessThan:
		return "<"
	case LessThanEqual:
		return "<="
	}
	return ""
}

// BooleanOperator links a predicate to the one before it
type BooleanOperator string

const (
	None BooleanOperator = "NONE"
	And  BooleanOperator = "AND"
	Or   BooleanOperator = "OR"
)

// Direction of a relationship hop in a nested path
type Direction string

const (
	Outgoing   Direction = "OUTGOING"
	Incoming   Direction = "INCOMING"
	Undirected Direction = "UNDIRECTED"
)
