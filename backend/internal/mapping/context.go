package mapping

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
	"graphderive/backend/internal/query/filter"
	apperrors "graphderive/backend/pkg/errors"
)

// Context is the registry of entity metadata. It is safe for concurrent lookups.
type Context struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

// NewContext creates an empty registry
func NewContext() *Context {
	return &Context{entities: map[string]*Entity{}}
}

// Register adds or replaces metadata for e.Name
func (c *Context) Register(e *Entity) *Entity {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.Label == "" {
		e.Label = e.Name
	}
	e.context = c
	c.entities[e.Name] = e
	return e
}

// Lookup returns the metadata registered under name
func (c *Context) Lookup(name string) (*Entity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entities[name]
	if !ok {
		return nil, apperrors.NewEntityNotMapped(name)
	}
	return e, nil
}

// Names lists the registered entity names
func (c *Context) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entities))
	for name := range c.entities {
		names = append(names, name)
	}
	return names
}

type fileEntity struct {
	Name          string                  `yaml:"name"`
	Label         string                  `yaml:"label"`
	Collections   []string                `yaml:"collections"`
	Relationships map[string]Relationship `yaml:"relationships"`
}

type file struct {
	Entities []fileEntity `yaml:"entities"`
}

// LoadYAML registers every entity described in r:
//
//	entities:
//	  - name: Product
//	    label: Product
//	    collections: [tags]
//	    relationships:
//	      owner: {type: OWNED_BY, direction: OUTGOING, target: Person}
func (c *Context) LoadYAML(r io.Reader) error {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode mapping: %w", err)
	}

	for i, fe := range f.Entities {
		if fe.Name == "" {
			return apperrors.NewBaseError(apperrors.ErrorTypeMapping, fmt.Sprintf("entity %d has no name", i), nil)
		}
		e := NewEntity(fe.Name)
		if fe.Label != "" {
			e.Label = fe.Label
		}
		e.WithCollections(fe.Collections...)
		for name, rel := range fe.Relationships {
			switch rel.Direction {
			case "", filter.Outgoing, filter.Incoming, filter.Undirected:
			default:
				return apperrors.NewBaseError(apperrors.ErrorTypeMapping,
					fmt.Sprintf("relationship %s.%s has unknown direction %q", fe.Name, name, rel.Direction), nil)
			}
			e.WithRelationship(name, rel)
		}
		c.Register(e)
	}
	return nil
}

// LoadFile reads a YAML mapping file into c
func (c *Context) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()
	return c.LoadYAML(f)
}
