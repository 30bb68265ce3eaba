package core

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agenthands/simcomp/internal/backend"
	"github.com/agenthands/simcomp/internal/config"
	"github.com/agenthands/simcomp/internal/core/compare"
	"github.com/agenthands/simcomp/internal/core/export"
	"github.com/agenthands/simcomp/internal/core/model"
	"github.com/agenthands/simcomp/internal/core/text"
	"github.com/agenthands/simcomp/internal/logger"
	"github.com/agenthands/simcomp/internal/observability"
)

// SimComp compares contributions held by a graph backend.
type SimComp struct {
	Backend    backend.Backend
	Strategies compare.Strategies
	log        *logger.Logger
}

func NewSimComp(b backend.Backend, cfg config.ComparisonConfig, pre *text.Preprocessor, log *logger.Logger) *SimComp {
	return &SimComp{
		Backend: b,
		Strategies: compare.Strategies{
			compare.TypeMerge: compare.NewMerge(cfg.SimilarityThreshold, pre, log),
			compare.TypePath:  compare.NewPath(cfg.MaxPathLength, log),
		},
		log: log,
	}
}

// Result holds either the comparison itself or, when an export format was
// requested, its exported artifact.
type Result struct {
	Comparison *model.Comparison
	Artifact   *export.Artifact
	// Filename is set for CSV exports.
	Filename string
}

// Compare aligns contributionIDs with the strategy named by comparisonType.
// A non-empty format exports the comparison.
func (s *SimComp) Compare(ctx context.Context, contributionIDs []string, comparisonType compare.Type, format export.Format) (*Result, error) {
	if comparisonType == "" {
		comparisonType = compare.TypePath
	}

	ctx, span := observability.Tracer().Start(ctx, "simcomp.Compare")
	defer span.End()
	span.SetAttributes(
		attribute.StringSlice("simcomp.contributions", contributionIDs),
		attribute.String("simcomp.type", string(comparisonType)),
		attribute.String("simcomp.format", string(format)),
	)

	strategy, err := s.Strategies.Resolve(comparisonType)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.log.Debug("Comparing contributions", "contributions", contributionIDs, "type", comparisonType, "format", format)
	comparison := strategy.Compare(ctx, s.Backend, contributionIDs)
	s.log.Info("Compared contributions",
		"requested", len(contributionIDs),
		"compared", len(comparison.Contributions),
		"predicates", len(comparison.Predicates))
	span.SetAttributes(
		attribute.Int("simcomp.compared", len(comparison.Contributions)),
		attribute.Int("simcomp.predicates", len(comparison.Predicates)),
	)

	if format == "" {
		return &Result{Comparison: comparison}, nil
	}

	artifact, err := export.Export(comparison, format, nil, false)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	res := &Result{Comparison: comparison, Artifact: artifact}
	if artifact.Format == export.FormatCSV {
		res.Filename = strings.Join(contributionIDs, "_") + ".csv"
	}
	return res, nil
}

// ContributionIDs lists every contribution the backend knows.
func (s *SimComp) ContributionIDs(ctx context.Context) []string {
	ids := s.Backend.GetContributionIDs(ctx)
	if ids == nil {
		return []string{}
	}
	return ids
}
