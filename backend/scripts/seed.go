package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"graphderive/backend/internal/audit"
	"graphderive/backend/internal/graph"
	"graphderive/backend/internal/mapping"
	"graphderive/backend/pkg/config"
	"graphderive/backend/pkg/logger"
)

type fixtures struct {
	Nodes []struct {
		Label      string         `yaml:"label"`
		Properties map[string]any `yaml:"properties"`
	} `yaml:"nodes"`
}

func main() {
	fixturePath := flag.String("fixtures", "seed.yaml", "YAML file with nodes to create")
	principal := flag.String("as", "seed", "Principal recorded as creator")
	flag.Parse()

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
	log.Info("Starting database seeding...")

	mappings := mapping.NewContext()
	if err := mappings.LoadFile(cfg.MappingFile); err != nil {
		log.Fatal("Failed to load entity mapping", zap.Error(err))
	}

	data, err := os.ReadFile(*fixturePath)
	if err != nil {
		log.Fatal("Failed to read fixtures", zap.Error(err))
	}
	var fx fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		log.Fatal("Failed to parse fixtures", zap.Error(err))
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

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver).WithDatabase(cfg.Neo4jDatabase)

	// Create constraints
	log.Info("Creating constraints...")
	var labels []string
	for _, name := range mappings.Names() {
		e, _ := mappings.Lookup(name)
		labels = append(labels, e.Label)
	}
	if err := repo.EnsureConstraints(ctx, labels); err != nil {
		log.Warn("Failed to create some constraints (may already exist)", zap.Error(err))
	}

	handler := audit.NewIsNewAwareHandler(audit.ContextAuditor{})
	listener, err := audit.NewEventListener(func() audit.Handler { return handler })
	if err != nil {
		log.Fatal("Failed to create auditing listener", zap.Error(err))
	}
	repo.Register(listener)

	ctx = audit.WithPrincipal(ctx, *principal)
	created := 0
	for _, n := range fx.Nodes {
		entity, err := mappings.Lookup(n.Label)
		if err != nil {
			log.Warn("Skipping node of unmapped entity", zap.String("label", n.Label))
			continue
		}
		node := graph.NewNode(entity.Label, n.Properties)
		if err := repo.Save(ctx, node); err != nil {
			log.Fatal("Failed to create node", zap.String("label", n.Label), zap.Error(err))
		}
		created++
	}

	log.Info("Database seeding completed successfully!", zap.Int("nodes", created))
}
