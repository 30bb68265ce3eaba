package compare

import (
	"context"
	"sort"

	"github.com/agenthands/simcomp/internal/backend"
	"github.com/agenthands/simcomp/internal/core/model"
	"github.com/agenthands/simcomp/internal/core/similarity"
	"github.com/agenthands/simcomp/internal/core/text"
	"github.com/agenthands/simcomp/internal/logger"
)

// DefaultSimilarityThreshold is the score above which two predicates share a row.
const DefaultSimilarityThreshold = 0.85

// Merge aligns contributions by clustering predicates with similar labels.
type Merge struct {
	Threshold    float64
	Preprocessor *text.Preprocessor
	log          *logger.Logger
}

func NewMerge(threshold float64, pre *text.Preprocessor, log *logger.Logger) *Merge {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if pre == nil {
		pre = text.English()
	}
	return &Merge{Threshold: threshold, Preprocessor: pre, log: log.With("comparator", "merge")}
}

type mergeInput struct {
	header     model.HeaderCell
	graph      *model.Subgraph
	root       string
	predicates *model.PredicateSet
}

type cluster struct {
	representative string
	members        []string
	freq           int
}

func (m *Merge) Compare(ctx context.Context, b backend.Backend, contributionIDs []string) *model.Comparison {
	var inputs []mergeInput
	for _, id := range contributionIDs {
		h := header(ctx, b, id)
		g := b.GetSubgraph(ctx, id)
		if h == nil || g == nil {
			m.log.Debug("Skipping contribution", "contribution_id", id, "has_details", h != nil, "has_subgraph", g != nil)
			continue
		}
		preds := g.Predicates()
		root, ok := g.Root(id)
		if preds.Len() == 0 || !ok {
			m.log.Debug("Skipping contribution without predicates", "contribution_id", id)
			continue
		}
		inputs = append(inputs, mergeInput{header: *h, graph: g, root: root, predicates: preds})
	}

	comparison := model.NewComparison()
	if len(inputs) == 0 {
		return comparison
	}

	sets := make([]*model.PredicateSet, len(inputs))
	for i, in := range inputs {
		sets[i] = in.predicates
	}
	matrix := similarity.NewMatrix(sets, m.Preprocessor)
	clusters := m.clusters(matrix, sets)

	for _, in := range inputs {
		comparison.Contributions = append(comparison.Contributions, in.header)
	}

	for _, c := range clusters {
		ids := make(map[string]bool, len(c.members)+1)
		ids[c.representative] = true
		for _, p := range c.members {
			ids[p] = true
		}

		row := model.NewRow(len(inputs))
		for i, in := range inputs {
			if targets := extractTargets(in.graph, in.root, ids); len(targets) > 0 {
				row[i] = targets
			}
		}
		comparison.Data[c.representative] = row

		similar := make([]string, len(c.members))
		for i, p := range c.members {
			similar[i] = matrix.Label(p)
		}
		comparison.Predicates = append(comparison.Predicates, model.IndexCell{
			ID:                c.representative,
			Label:             matrix.Label(c.representative),
			NContributions:    model.CountFilled(row),
			Active:            c.freq >= 2,
			SimilarPredicates: similar,
		})
	}

	sort.Slice(comparison.Predicates, func(i, j int) bool {
		return comparison.Predicates[i].ID < comparison.Predicates[j].ID
	})

	return comparison
}

// clusters groups predicates in first-seen order. A predicate claimed by an
// earlier cluster is neither a representative nor a member of a later one.
func (m *Merge) clusters(matrix *similarity.Matrix, sets []*model.PredicateSet) []cluster {
	claimed := make(map[string]bool, matrix.Len())
	var out []cluster

	for i := 0; i < matrix.Len(); i++ {
		representative := matrix.IDAt(i)
		if claimed[representative] {
			continue
		}
		claimed[representative] = true

		c := cluster{representative: representative}
		for _, j := range matrix.Similar(i, m.Threshold) {
			pid := matrix.IDAt(j)
			if claimed[pid] {
				continue
			}
			claimed[pid] = true
			c.members = append(c.members, pid)
		}
		sort.Strings(c.members)

		for _, set := range sets {
			if set.Has(representative) || containsAny(set, c.members) {
				c.freq++
			}
		}
		out = append(out, c)
	}
	return out
}

func containsAny(set *model.PredicateSet, ids []string) bool {
	for _, id := range ids {
		if set.Has(id) {
			return true
		}
	}
	return false
}

// extractTargets collects the objects of every edge whose predicate is in ids,
// each with its shortest path from root.
func extractTargets(g *model.Subgraph, root string, ids map[string]bool) model.Slot {
	var targets model.Slot
	for _, e := range g.Edges() {
		if !ids[e.ID] {
			continue
		}
		nodes := g.ShortestPath(root, e.Target)
		if len(nodes) == 0 {
			continue
		}
		pathIDs, pathLabels := g.Trail(nodes, model.Node.PlainLabel)
		obj, _ := g.Node(e.Target)
		targets = append(targets, model.TargetCell{
			ID:         obj.ID,
			Label:      obj.Label,
			Type:       obj.Class,
			Classes:    cleanClasses(obj.Classes),
			Path:       pathIDs[:len(pathIDs)-1],
			PathLabels: pathLabels[:len(pathLabels)-1],
		})
	}
	return targets
}
