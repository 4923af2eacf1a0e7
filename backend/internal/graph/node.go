package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Property keys the repository manages on every node
const (
	propID             = "id"
	propCreatedAt      = "created_at"
	propCreatedBy      = "created_by"
	propLastModifiedAt = "last_modified_at"
	propLastModifiedBy = "last_modified_by"
)

// Node is a labelled property bag stored in the graph
type Node struct {
	ID             string         `json:"id"`
	Label          string         `json:"label"`
	Properties     map[string]any `json:"properties"`
	CreatedAt      time.Time      `json:"created_at"`
	CreatedBy      string         `json:"created_by,omitempty"`
	LastModifiedAt time.Time      `json:"last_modified_at"`
	LastModifiedBy string         `json:"last_modified_by,omitempty"`

	persisted bool
}

// NewNode creates an unsaved node
func NewNode(label string, properties map[string]any) *Node {
	if properties == nil {
		properties = map[string]any{}
	}
	return &Node{Label: label, Properties: properties}
}

// ExistingNode refers to a node already stored under id; saving it only stamps modification fields
func ExistingNode(label, id string, properties map[string]any) *Node {
	n := NewNode(label, properties)
	n.ID = id
	n.persisted = true
	return n
}

func (n *Node) IsNew() bool { return !n.persisted }
func (n *Node) SetCreatedAt(t time.Time) { n.CreatedAt = t }
func (n *Node) SetCreatedBy(s string) { n.CreatedBy = s }
func (n *Node) SetLastModifiedAt(t time.Time) { n.LastModifiedAt = t }
func (n *Node) SetLastModifiedBy(s string) { n.LastModifiedBy = s }

// writeProperties is the property map sent to SET n += $props
func (n *Node) writeProperties() map[string]any {
	props := make(map[string]any, len(n.Properties)+5)
	for k, v := range n.Properties {
		props[k] = v
	}
	props[propID] = n.ID
	if !n.CreatedAt.IsZero() {
		props[propCreatedAt] = n.CreatedAt
	}
	if n.CreatedBy != "" {
		props[propCreatedBy] = n.CreatedBy
	}
	if !n.LastModifiedAt.IsZero() {
		props[propLastModifiedAt] = n.LastModifiedAt
	}
	if n.LastModifiedBy != "" {
		props[propLastModifiedBy] = n.LastModifiedBy
	}
	return props
}

// nodeFromGraph converts a driver node, lifting the managed keys out of the property bag
func nodeFromGraph(gn neo4j.Node) *Node {
	n := &Node{Properties: map[string]any{}, persisted: true}
	if len(gn.Labels) > 0 {
		n.Label = gn.Labels[0]
	}
	for k, v := range gn.Props {
		switch k {
		case propID:
			n.ID, _ = v.(string)
		case propCreatedAt:
			n.CreatedAt = toTime(v)
		case propCreatedBy:
			n.CreatedBy, _ = v.(string)
		case propLastModifiedAt:
			n.LastModifiedAt = toTime(v)
		case propLastModifiedBy:
			n.LastModifiedBy, _ = v.(string)
		default:
			n.Properties[k] = v
		}
	}
	return n
}
