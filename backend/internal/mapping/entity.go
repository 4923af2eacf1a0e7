// Package mapping describes just enough about graph entities to derive queries:
// the node label, which properties hold collections, and how named relationships are traversed.
package mapping

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"graphderive/backend/internal/query/filter"
)

// PropertyKind tells scalar properties from list-valued ones
type PropertyKind string

const (
	KindScalar     PropertyKind = "scalar"
	KindCollection PropertyKind = "collection"
)

// Relationship is a named hop from one entity to another
type Relationship struct {
	Type      string           `yaml:"type"`
	Direction filter.Direction `yaml:"direction"`
	Target    string           `yaml:"target"`
}

// Entity is the metadata of one node type
type Entity struct {
	Name          string
	Label         string
	Properties    map[string]PropertyKind
	Relationships map[string]Relationship

	context *Context
}

// NewEntity creates metadata for name labelled with the same name
func NewEntity(name string) *Entity {
	return &Entity{
		Name:          name,
		Label:         name,
		Properties:    map[string]PropertyKind{},
		Relationships: map[string]Relationship{},
	}
}

// WithCollections marks properties as list-valued
func (e *Entity) WithCollections(properties ...string) *Entity {
	for _, p := range properties {
		e.Properties[p] = KindCollection
	}
	return e
}

// WithRelationship adds a named hop
func (e *Entity) WithRelationship(name string, rel Relationship) *Entity {
	e.Relationships[name] = rel
	return e
}

// IsCollection reports whether property holds a list
func (e *Entity) IsCollection(property string) bool {
	if e == nil {
		return false
	}
	return e.Properties[property] == KindCollection
}

// Resolution is a property path split into relationship hops and a terminal property
type Resolution struct {
	Nested   []filter.NestedSegment
	Property string
	// Owner is the entity holding Property; nil when a hop leads to an unmapped entity.
	Owner *Entity
}

// Resolve walks path from e. Segments naming a relationship, or starting with one in
// camel case ("ownerName"), become hops; the remainder is the terminal property.
func (e *Entity) Resolve(path []string) Resolution {
	var res Resolution
	current := e
	segments := append([]string(nil), path...)

	for len(segments) > 0 {
		seg := segments[0]
		last := len(segments) == 1

		if name, rest, rel, ok := current.splitRelationship(seg); ok && (rest != "" || !last) {
			res.Nested = append(res.Nested, current.segment(name, rel))
			current = current.target(rel)
			if rest != "" {
				segments[0] = rest
			} else {
				segments = segments[1:]
			}
			continue
		}

		if last {
			res.Property = seg
			break
		}

		// Unmapped hop: follow the naming convention
		rel := Relationship{Type: upperSnake(seg), Direction: filter.Outgoing}
		res.Nested = append(res.Nested, current.segment(seg, rel))
		current = nil
		segments = segments[1:]
	}

	res.Owner = current
	return res
}

func (e *Entity) splitRelationship(seg string) (name, rest string, rel Relationship, ok bool) {
	if e == nil {
		return "", "", Relationship{}, false
	}
	if r, found := e.Relationships[seg]; found {
		return seg, "", r, true
	}
	best := ""
	for relName := range e.Relationships {
		if len(relName) > len(best) && len(seg) > len(relName) && strings.HasPrefix(seg, relName) {
			next, _ := utf8.DecodeRuneInString(seg[len(relName):])
			if unicode.IsUpper(next) {
				best = relName
			}
		}
	}
	if best == "" {
		return "", "", Relationship{}, false
	}
	return best, lowerFirst(seg[len(best):]), e.Relationships[best], true
}

func (e *Entity) segment(name string, rel Relationship) filter.NestedSegment {
	seg := filter.NestedSegment{
		PropertyName:     name,
		RelationshipType: rel.Type,
		Direction:        rel.Direction,
	}
	if seg.RelationshipType == "" {
		seg.RelationshipType = upperSnake(name)
	}
	if seg.Direction == "" {
		seg.Direction = filter.Outgoing
	}
	if target := e.target(rel); target != nil {
		seg.Label = target.Label
	}
	return seg
}

func (e *Entity) target(rel Relationship) *Entity {
	if e == nil || e.context == nil || rel.Target == "" {
		return nil
	}
	target, err := e.context.Lookup(rel.Target)
	if err != nil {
		return nil
	}
	return target
}

func upperSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
