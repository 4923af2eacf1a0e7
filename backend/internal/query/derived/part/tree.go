// Package part parses derived-query method names such as
// findDistinctTop3ByOwnerNameAndTagsContainingOrderByPriceDesc into a tree of parts.
package part

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "graphderive/backend/pkg/errors"
)

// Mode is what the derived query does with the matched nodes
type Mode string

const (
	ModeFind   Mode = "FIND"
	ModeCount  Mode = "COUNT"
	ModeExists Mode = "EXISTS"
	ModeDelete Mode = "DELETE"
)

var (
	prefixPattern  = regexp.MustCompile(`^(find|read|get|query|search|stream|count|exists|delete|remove)(\p{Lu}.*?)??By(.*)$`)
	allPattern     = regexp.MustCompile(`^(find|read|get|query|search|stream|count|exists|delete|remove)(\p{Lu}\w*)?$`)
	// subjectPattern anchors Distinct and First/Top right after the prefix
	subjectPattern = regexp.MustCompile(`^(Distinct)?(?:(First|Top)(\d*))?(\p{Lu}.*)?$`)
)

// Part is one comparison clause of a method name
type Part struct {
	Source     string
	Path       []string
	Type       Type
	IgnoreCase bool

	// IgnoreCaseWhenPossible marks case folding inherited from AllIgnoreCase; it applies to string values only
	IgnoreCaseWhenPossible bool

	// Index is the position of the part across the whole tree
	Index int
}

// Property is the dotted property path
func (p Part) Property() string {
	return strings.Join(p.Path, ".")
}

// Negated reports whether the part negates its comparison
func (p Part) Negated() bool {
	return p.Type.Negated()
}

// NumberOfArguments is how many bound values the part consumes
func (p Part) NumberOfArguments() int {
	return p.Type.NumberOfArguments()
}

// OrPart is a group of parts joined by AND; groups are joined by OR
type OrPart struct {
	Parts []Part
}

// Order is one ORDER BY item
type Order struct {
	Path       []string
	Descending bool
}

// Property is the dotted property path
func (o Order) Property() string {
	return strings.Join(o.Path, ".")
}

// Subject describes the query mode and result shaping
type Subject struct {
	Mode       Mode
	Distinct   bool
	MaxResults int
}

// Tree is a parsed method name
type Tree struct {
	Method        string
	Subject       Subject
	Predicate     []OrPart
	Orders        []Order
	AllIgnoreCase bool
}

// Parts returns every part in method-name order
func (t *Tree) Parts() []Part {
	var parts []Part
	for _, or := range t.Predicate {
		parts = append(parts, or.Parts...)
	}
	return parts
}

// NumberOfArguments is the total number of bound values the method consumes
func (t *Tree) NumberOfArguments() int {
	total := 0
	for _, p := range t.Parts() {
		total += p.NumberOfArguments()
	}
	return total
}

// Parse builds the tree for method
func Parse(method string) (*Tree, error) {
	tree := &Tree{Method: method}

	var subject, predicate string
	if m := prefixPattern.FindStringSubmatch(method); m != nil {
		tree.Subject.Mode = modeOf(m[1])
		subject, predicate = m[2], m[3]
	} else if m := allPattern.FindStringSubmatch(method); m != nil {
		tree.Subject.Mode = modeOf(m[1])
		subject = m[2]
	} else {
		return nil, apperrors.NewInvalidMethodName(method, "expected a find/count/exists/delete prefix")
	}

	if err := parseSubject(tree, subject); err != nil {
		return nil, err
	}

	if idx := strings.Index(predicate, "OrderBy"); idx >= 0 {
		orders, err := parseOrders(method, predicate[idx+len("OrderBy"):])
		if err != nil {
			return nil, err
		}
		tree.Orders = orders
		predicate = predicate[:idx]
	}

	for _, suffix := range []string{"AllIgnoreCase", "AllIgnoringCase"} {
		if strings.HasSuffix(predicate, suffix) {
			tree.AllIgnoreCase = true
			predicate = strings.TrimSuffix(predicate, suffix)
			break
		}
	}

	if predicate == "" {
		if strings.HasSuffix(method, "By") {
			return nil, apperrors.NewInvalidMethodName(method, "no criteria after By")
		}
		return tree, nil
	}

	index := 0
	for _, orSource := range splitKeyword(predicate, "Or") {
		var group OrPart
		for _, source := range splitKeyword(orSource, "And") {
			p, err := parsePart(method, source, tree.AllIgnoreCase)
			if err != nil {
				return nil, err
			}
			p.Index = index
			index++
			group.Parts = append(group.Parts, p)
		}
		tree.Predicate = append(tree.Predicate, group)
	}

	return tree, nil
}

func modeOf(prefix string) Mode {
	switch prefix {
	case "count":
		return ModeCount
	case "exists":
		return ModeExists
	case "delete", "remove":
		return ModeDelete
	}
	return ModeFind
}

func parseSubject(tree *Tree, subject string) error {
	m := subjectPattern.FindStringSubmatch(subject)
	if m == nil {
		return nil
	}
	tree.Subject.Distinct = m[1] != ""
	if m[2] != "" {
		tree.Subject.MaxResults = 1
		if m[3] != "" {
			n, err := strconv.Atoi(m[3])
			if err != nil || n < 1 {
				return apperrors.NewInvalidMethodName(tree.Method, "result limit must be positive")
			}
			tree.Subject.MaxResults = n
		}
	}
	return nil
}

func parsePart(method, source string, allIgnoreCase bool) (Part, error) {
	p := Part{Source: source, IgnoreCase: allIgnoreCase, IgnoreCaseWhenPossible: allIgnoreCase}

	for _, suffix := range []string{"IgnoreCase", "IgnoringCase"} {
		if strings.HasSuffix(source, suffix) {
			p.IgnoreCase = true
			p.IgnoreCaseWhenPossible = false
			source = strings.TrimSuffix(source, suffix)
			break
		}
	}

	t, property := fromSource(source)
	p.Type = t
	path, err := propertyPath(property)
	if err != nil {
		return Part{}, apperrors.NewInvalidMethodName(method, err.Error()+" in "+p.Source)
	}
	p.Path = path
	return p, nil
}

func parseOrders(method, source string) ([]Order, error) {
	if source == "" {
		return nil, apperrors.NewInvalidMethodName(method, "no properties after OrderBy")
	}

	var orders []Order
	start := 0
	for i := 0; i <= len(source); i++ {
		var desc, matched bool
		var kwLen int
		switch {
		case strings.HasPrefix(source[i:], "Desc") && upperOrEnd(source, i+4):
			desc, matched, kwLen = true, true, 4
		case strings.HasPrefix(source[i:], "Asc") && upperOrEnd(source, i+3):
			matched, kwLen = true, 3
		case i == len(source):
			matched = true
		}
		if !matched || i == start {
			continue
		}
		path, err := propertyPath(source[start:i])
		if err != nil {
			return nil, apperrors.NewInvalidMethodName(method, err.Error()+" in OrderBy")
		}
		orders = append(orders, Order{Path: path, Descending: desc})
		i += kwLen
		start = i
		i--
	}
	return orders, nil
}

func upperOrEnd(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsUpper(r)
}

// splitKeyword splits s on kw where kw is followed by an upper-case letter
func splitKeyword(s, kw string) []string {
	var out []string
	start := 0
	for i := 1; i+len(kw) < len(s); i++ {
		if s[i:i+len(kw)] == kw && upperOrEnd(s, i+len(kw)) {
			out = append(out, s[start:i])
			start = i + len(kw)
			i = start
		}
	}
	return append(out, s[start:])
}

// propertyPath turns "Owner_Name" into ["owner", "name"]
func propertyPath(source string) ([]string, error) {
	if source == "" {
		return nil, errEmptyProperty
	}
	segments := strings.Split(source, "_")
	path := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			return nil, errEmptyProperty
		}
		path = append(path, uncapitalize(seg))
	}
	return path, nil
}

// uncapitalize lowers the first rune unless the name starts with an acronym ("URL" stays "URL")
func uncapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(r) && unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

type parseError string

func (e parseError) Error() string { return string(e) }

const errEmptyProperty = parseError("empty property")
