package compare

import (
	"context"
	"strings"

	"github.com/agenthands/simcomp/internal/apierr"
	"github.com/agenthands/simcomp/internal/backend"
	"github.com/agenthands/simcomp/internal/core/model"
)

// Type selects the alignment strategy.
type Type string

const (
	TypePath  Type = "PATH"
	TypeMerge Type = "MERGE"
)

// Strategy aligns the predicates of a set of contributions.
type Strategy interface {
	Compare(ctx context.Context, b backend.Backend, contributionIDs []string) *model.Comparison
}

// Strategies maps every supported comparison type onto its implementation.
type Strategies map[Type]Strategy

// Resolve returns the strategy for t, or a bad request error naming t.
func (s Strategies) Resolve(t Type) (Strategy, error) {
	strategy, ok := s[Type(strings.ToUpper(string(t)))]
	if !ok {
		return nil, apierr.BadRequest("compare.Strategies", "Unknown comparison_type=%s", t)
	}
	return strategy, nil
}

// ignoredClasses never show up in target cells.
var ignoredClasses = map[string]bool{
	"Thing":           true,
	"Literal":         true,
	"AuditableEntity": true,
	"Resource":        true,
}

func cleanClasses(classes []string) []string {
	out := []string{}
	for _, c := range classes {
		if !ignoredClasses[c] {
			out = append(out, c)
		}
	}
	return out
}

// header resolves the header cell of a contribution, or nil when the backend
// knows nothing about it.
func header(ctx context.Context, b backend.Backend, contributionID string) *model.HeaderCell {
	details := b.GetContributionDetails(ctx, contributionID)
	if details == nil {
		return nil
	}
	return &model.HeaderCell{
		ID:         contributionID,
		Label:      details.Label,
		PaperID:    details.PaperID,
		PaperLabel: details.PaperLabel,
		PaperYear:  b.GetPaperYear(ctx, details.PaperID),
	}
}
