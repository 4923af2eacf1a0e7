package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"graphderive/backend/internal/api"
	"graphderive/backend/internal/audit"
	"graphderive/backend/internal/graph"
	"graphderive/backend/internal/mapping"
	"graphderive/backend/internal/query/derived/builder"
	"graphderive/backend/pkg/config"
	apperrors "graphderive/backend/pkg/errors"
	"graphderive/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load entity mapping
	mappings, err := loadMappings(cfg.MappingFile)
	if err != nil {
		log.Fatal("Failed to load entity mapping", zap.String("file", cfg.MappingFile), zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)))
	}

	// Initialize dependencies
	graphRepo := graph.NewRepository(driver).WithDatabase(cfg.Neo4jDatabase)
	if err := graphRepo.EnsureConstraints(ctx, labels(mappings)); err != nil {
		log.Warn("Failed to create some constraints (may already exist)", zap.Error(err))
	}

	auditHandler := audit.NewIsNewAwareHandler(audit.ContextAuditor{})
	auditListener, err := audit.NewEventListener(func() audit.Handler { return auditHandler })
	if err != nil {
		log.Fatal("Failed to create auditing listener", zap.Error(err))
	}
	graphRepo.Register(auditListener)

	server := api.NewServer(graphRepo, mappings, builder.Default(), api.Options{
		NodeIdentifier: cfg.NodeIdentifier,
		QueryTimeout:   cfg.QueryTimeout,
	})

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.Router()

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started",
		zap.String("port", cfg.Port),
		zap.Strings("entities", mappings.Names()),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func loadMappings(path string) (*mapping.Context, error) {
	mappings := mapping.NewContext()
	if err := mappings.LoadFile(path); err != nil {
		return nil, err
	}
	return mappings, nil
}

// labels lists the node label of every mapped entity
func labels(mappings *mapping.Context) []string {
	var out []string
	for _, name := range mappings.Names() {
		if e, err := mappings.Lookup(name); err == nil {
			out = append(out, e.Label)
		}
	}
	return out
}
