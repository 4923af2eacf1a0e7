// Package api exposes derived queries and audited saves over HTTP.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"graphderive/backend/internal/audit"
	"graphderive/backend/internal/graph"
	"graphderive/backend/internal/mapping"
	"graphderive/backend/internal/query/cypher"
	"graphderive/backend/internal/query/derived"
	"graphderive/backend/internal/query/derived/builder"
	apperrors "graphderive/backend/pkg/errors"
	"graphderive/backend/pkg/logger"
)

const principalHeader = "X-User-ID"

// Store is the part of the graph repository the handlers need
type Store interface {
	Save(ctx context.Context, node *graph.Node) error
	Execute(ctx context.Context, stmt cypher.Statement) (*graph.Result, error)
}

// Options tune statement rendering and execution
type Options struct {
	NodeIdentifier string
	QueryTimeout   time.Duration
}

// Server holds the handler dependencies
type Server struct {
	store    Store
	mappings *mapping.Context
	registry *builder.Registry
	opts     Options
	logger   *zap.Logger

	// methods caches parsed methods by entity and name
	methods sync.Map
}

// NewServer creates the HTTP handlers
func NewServer(store Store, mappings *mapping.Context, registry *builder.Registry, opts Options) *Server {
	return &Server{
		store:    store,
		mappings: mappings,
		registry: registry,
		opts:     opts,
		logger:   logger.Named("api"),
	}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(cors())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/entities")
	{
		api.GET("", s.listEntities)
		api.POST("/:entity/query", s.query)
		api.POST("/:entity/explain", s.explain)
		api.POST("/:entity", s.save)
	}
	return router
}

type queryRequest struct {
	Method string `json:"method" binding:"required"`
	Args   []any  `json:"args"`
}

type saveRequest struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties" binding:"required"`
}

func (s *Server) listEntities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entities": s.mappings.Names()})
}

// explain renders the statement without running it
func (s *Server) explain(c *gin.Context) {
	stmt, ok := s.statement(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stmt)
}

func (s *Server) query(c *gin.Context) {
	stmt, ok := s.statement(c)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(c.Request.Context())
	defer cancel()

	result, err := s.store.Execute(ctx, stmt)
	if err != nil {
		s.fail(c, "Failed to execute derived query", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) save(c *gin.Context) {
	entity, err := s.mappings.Lookup(c.Param("entity"))
	if err != nil {
		s.fail(c, "Unknown entity", err)
		return
	}

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	node := graph.NewNode(entity.Label, req.Properties)
	if req.ID != "" {
		node = graph.ExistingNode(entity.Label, req.ID, req.Properties)
	}

	ctx := c.Request.Context()
	if principal := c.GetHeader(principalHeader); principal != "" {
		ctx = audit.WithPrincipal(ctx, principal)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Save(ctx, node); err != nil {
		s.fail(c, "Failed to save node", err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// statement derives the statement for the request, writing the error response on failure
func (s *Server) statement(c *gin.Context) (cypher.Statement, bool) {
	entity, err := s.mappings.Lookup(c.Param("entity"))
	if err != nil {
		s.fail(c, "Unknown entity", err)
		return cypher.Statement{}, false
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return cypher.Statement{}, false
	}

	m, err := s.method(entity, req.Method)
	if err != nil {
		s.fail(c, "Failed to derive query", err)
		return cypher.Statement{}, false
	}

	stmt, err := m.Statement(req.Args...)
	if err != nil {
		s.fail(c, "Failed to bind query arguments", err)
		return cypher.Statement{}, false
	}
	return stmt, true
}

func (s *Server) method(entity *mapping.Entity, name string) (*derived.Method, error) {
	key := entity.Name + "#" + name
	if m, ok := s.methods.Load(key); ok {
		return m.(*derived.Method), nil
	}
	m, err := derived.NewMethod(name, entity, s.registry, derived.WithNodeIdentifier(s.opts.NodeIdentifier))
	if err != nil {
		return nil, err
	}
	actual, _ := s.methods.LoadOrStore(key, m)
	return actual.(*derived.Method), nil
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.QueryTimeout)
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var notMapped *apperrors.ErrEntityNotMapped
	var conn *apperrors.ErrGraphConnectionFailed
	switch {
	case stderrors.As(err, &notMapped):
		return http.StatusNotFound
	case apperrors.IsErrorType(err, apperrors.ErrorTypeQuery):
		return http.StatusBadRequest
	case stderrors.As(err, &conn):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
