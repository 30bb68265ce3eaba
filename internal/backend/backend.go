package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/simcomp/internal/config"
	"github.com/agenthands/simcomp/internal/core/model"
	"github.com/agenthands/simcomp/internal/driver"
	"github.com/agenthands/simcomp/internal/logger"
)

// ContributionDetails is the paper context of a contribution.
type ContributionDetails struct {
	Label      string `json:"label"`
	PaperID    string `json:"paper_id"`
	PaperLabel string `json:"paper_label"`
}

// Backend is the narrow view of the knowledge graph the comparators consume.
// Implementations never fail loudly: a lookup that cannot be served is logged
// and reported as absent (nil, "" or an empty list).
type Backend interface {
	GetSubgraph(ctx context.Context, thingID string) *model.Subgraph
	GetContributionDetails(ctx context.Context, contributionID string) *ContributionDetails
	GetPaperYear(ctx context.Context, paperID string) string
	GetContributionIDs(ctx context.Context) []string
	Close(ctx context.Context) error
}

// New builds the backend selected by cfg.Backend.Provider.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Backend, error) {
	provider := strings.ToLower(cfg.Backend.Provider)

	switch provider {
	case "neo4j", "memgraph":
		d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database, log)
		if err != nil {
			return nil, err
		}
		return NewGraphBackend(d, cfg.Backend, log), nil

	case "fixture":
		if cfg.Backend.Fixture == "" {
			return nil, fmt.Errorf("fixture backend requires backend.fixture to be set")
		}
		return LoadFixtureBackend(cfg.Backend.Fixture)

	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", provider)
	}
}
