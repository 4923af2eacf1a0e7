package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"graphderive/backend/internal/audit"
	"graphderive/backend/internal/query/cypher"
	"graphderive/backend/internal/query/filter"
	apperrors "graphderive/backend/pkg/errors"
	"graphderive/backend/pkg/logger"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger

	mu        sync.RWMutex
	listeners []audit.Listener
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Named("graph"),
	}
}

// WithDatabase targets a named database instead of the server default
func (r *Repository) WithDatabase(name string) *Repository {
	r.database = name
	return r
}

// Register adds a listener notified before every save
func (r *Repository) Register(l audit.Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// EnsureConstraints creates a uniqueness constraint on id for every label
func (r *Repository) EnsureConstraints(ctx context.Context, labels []string) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, label := range labels {
		query := fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE",
			filter.QuoteIdentifier(strings.ToLower(label)+"_id_unique"), filter.QuoteIdentifier(label))
		if _, err := session.Run(ctx, query, nil); err != nil {
			return apperrors.NewGraphQueryFailed(query, err)
		}
	}
	r.logger.Info("Ensured id constraints", zap.Int("labels", len(labels)))
	return nil
}

func (r *Repository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database})
}

// prepare assigns an id to new nodes and runs the pre-save listeners
func (r *Repository) prepare(ctx context.Context, node *Node) error {
	if node == nil {
		return apperrors.NewInvalidFilter("", "cannot save a nil node")
	}
	if node.Label == "" {
		return apperrors.NewInvalidFilter(node.ID, "node has no label")
	}
	if node.ID == "" {
		node.ID = uuid.New().String()
	}

	r.mu.RLock()
	listeners := append([]audit.Listener(nil), r.listeners...)
	r.mu.RUnlock()

	for _, l := range listeners {
		l.OnPreSave(ctx, audit.Event{Entity: node})
	}
	return nil
}

// Save writes node, creating it when new. Pre-save listeners run once, before the write.
func (r *Repository) Save(ctx context.Context, node *Node) error {
	if err := r.prepare(ctx, node); err != nil {
		return err
	}

	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MERGE (n:%s {id: $id})
		SET n += $props
		RETURN n`, filter.QuoteIdentifier(node.Label))

	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":    node.ID,
		"props": node.writeProperties(),
	})
	if err != nil {
		return apperrors.NewGraphQueryFailed(query, err)
	}
	if _, err := result.Single(ctx); err != nil {
		return apperrors.NewGraphQueryFailed(query, err)
	}

	created := node.IsNew()
	node.persisted = true

	r.logger.Info("Saved node",
		zap.String("label", node.Label),
		zap.String("id", node.ID),
		zap.Bool("created", created),
	)
	return nil
}

// Find returns the nodes matched by a find statement
func (r *Repository) Find(ctx context.Context, stmt cypher.Statement) ([]*Node, error) {
	if err := expectMode(stmt, cypher.ModeFind); err != nil {
		return nil, err
	}

	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, stmt.Cypher, stmt.Parameters)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed(stmt.Cypher, err)
	}

	nodes := []*Node{}
	for result.Next(ctx) {
		if n, ok := getNodeFromRecord(result.Record(), stmt.Column); ok {
			nodes = append(nodes, n)
		}
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed(stmt.Cypher, err)
	}

	r.logger.Debug("Find executed", zap.Int("results", len(nodes)))
	return nodes, nil
}

// Count returns the number of nodes matched by a count statement
func (r *Repository) Count(ctx context.Context, stmt cypher.Statement) (int64, error) {
	if err := expectMode(stmt, cypher.ModeCount); err != nil {
		return 0, err
	}
	record, err := r.single(ctx, neo4j.AccessModeRead, stmt)
	if err != nil {
		return 0, err
	}
	return getInt64FromRecord(record, stmt.Column), nil
}

// Exists reports whether an exists statement matches any node
func (r *Repository) Exists(ctx context.Context, stmt cypher.Statement) (bool, error) {
	if err := expectMode(stmt, cypher.ModeExists); err != nil {
		return false, err
	}
	record, err := r.single(ctx, neo4j.AccessModeRead, stmt)
	if err != nil {
		return false, err
	}
	return getBoolFromRecord(record, stmt.Column), nil
}

// Delete removes the nodes matched by a delete statement and returns how many were removed
func (r *Repository) Delete(ctx context.Context, stmt cypher.Statement) (int64, error) {
	if err := expectMode(stmt, cypher.ModeDelete); err != nil {
		return 0, err
	}
	record, err := r.single(ctx, neo4j.AccessModeWrite, stmt)
	if err != nil {
		return 0, err
	}
	deleted := getInt64FromRecord(record, stmt.Column)
	r.logger.Info("Deleted nodes", zap.Int64("deleted", deleted))
	return deleted, nil
}

// Result is the outcome of Execute; exactly one field matching Mode is set
type Result struct {
	Mode    cypher.Mode `json:"mode"`
	Nodes   []*Node     `json:"nodes,omitempty"`
	Count   *int64      `json:"count,omitempty"`
	Exists  *bool       `json:"exists,omitempty"`
	Deleted *int64      `json:"deleted,omitempty"`
}

// Execute runs stmt according to its mode
func (r *Repository) Execute(ctx context.Context, stmt cypher.Statement) (*Result, error) {
	res := &Result{Mode: stmt.Mode}
	switch stmt.Mode {
	case cypher.ModeFind:
		nodes, err := r.Find(ctx, stmt)
		if err != nil {
			return nil, err
		}
		res.Nodes = nodes
	case cypher.ModeCount:
		n, err := r.Count(ctx, stmt)
		if err != nil {
			return nil, err
		}
		res.Count = &n
	case cypher.ModeExists:
		ok, err := r.Exists(ctx, stmt)
		if err != nil {
			return nil, err
		}
		res.Exists = &ok
	case cypher.ModeDelete:
		n, err := r.Delete(ctx, stmt)
		if err != nil {
			return nil, err
		}
		res.Deleted = &n
	default:
		return nil, apperrors.NewInvalidFilter("", "unknown statement mode "+string(stmt.Mode))
	}
	return res, nil
}

func (r *Repository) single(ctx context.Context, mode neo4j.AccessMode, stmt cypher.Statement) (*neo4j.Record, error) {
	session := r.session(ctx, mode)
	defer session.Close(ctx)

	result, err := session.Run(ctx, stmt.Cypher, stmt.Parameters)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed(stmt.Cypher, err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed(stmt.Cypher, err)
	}
	return record, nil
}

func expectMode(stmt cypher.Statement, mode cypher.Mode) error {
	if stmt.Mode != mode {
		return apperrors.NewInvalidFilter("", fmt.Sprintf("expected a %s statement, got %s", mode, stmt.Mode))
	}
	return nil
}
