package compare

import (
	"context"
	"sort"
	"strings"

	"github.com/agenthands/simcomp/internal/backend"
	"github.com/agenthands/simcomp/internal/core/model"
	"github.com/agenthands/simcomp/internal/logger"
)

// DefaultMaxPathLength bounds the number of edges of an enumerated path.
const DefaultMaxPathLength = 5

// Path aligns contributions by the exact sequence of predicates leading to
// each value.
type Path struct {
	MaxLength int
	log       *logger.Logger
}

func NewPath(maxLength int, log *logger.Logger) *Path {
	if maxLength <= 0 {
		maxLength = DefaultMaxPathLength
	}
	return &Path{MaxLength: maxLength, log: log.With("comparator", "path")}
}

func (p *Path) Compare(ctx context.Context, b backend.Backend, contributionIDs []string) *model.Comparison {
	var headers []model.HeaderCell
	var paths []map[string]model.Slot
	for _, id := range contributionIDs {
		h := header(ctx, b, id)
		var cp map[string]model.Slot
		if h != nil {
			cp = p.contributionPaths(b.GetSubgraph(ctx, id), id)
		}
		if h == nil || len(cp) == 0 {
			p.log.Debug("Skipping contribution", "contribution_id", id, "has_details", h != nil)
			continue
		}
		headers = append(headers, *h)
		paths = append(paths, cp)
	}

	comparison := model.NewComparison()
	if len(headers) == 0 {
		return comparison
	}
	comparison.Contributions = headers

	for i, cp := range paths {
		for key, targets := range cp {
			row, ok := comparison.Data[key]
			if !ok {
				row = model.NewRow(len(paths))
				comparison.Data[key] = row
			}
			row[i] = targets
		}
	}

	keys := make([]string, 0, len(comparison.Data))
	for key := range comparison.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		n := model.CountFilled(comparison.Data[key])
		comparison.Predicates = append(comparison.Predicates, model.IndexCell{
			ID:             key,
			Label:          key,
			NContributions: n,
			Active:         n >= 2,
		})
	}

	return comparison
}

// contributionPaths groups every value reachable from root by the signature
// of the path leading to it.
func (p *Path) contributionPaths(g *model.Subgraph, root string) map[string]model.Slot {
	if g == nil || !g.HasNode(root) {
		return nil
	}

	out := make(map[string]model.Slot)
	for _, target := range g.NodeIDs() {
		for _, nodes := range g.SimplePaths(root, target, p.MaxLength) {
			ids, labels := g.Trail(nodes, model.Node.DisplayLabel)
			key := Signature(g, nodes)
			node, _ := g.Node(target)

			pathLabels := make([]string, len(labels)-1)
			for i, l := range labels[:len(labels)-1] {
				pathLabels[i] = strings.ToLower(l)
			}

			out[key] = append(out[key], model.TargetCell{
				ID:         target,
				Label:      strings.ToLower(labels[len(labels)-1]),
				Type:       node.Class,
				Classes:    cleanClasses(node.Classes),
				Path:       ids[:len(ids)-1],
				PathLabels: pathLabels,
			})
		}
	}
	return out
}

// Signature is the lowercase, slash-joined predicate labels along nodes.
func Signature(g *model.Subgraph, nodes []string) string {
	labels := make([]string, 0, len(nodes))
	for i := 1; i < len(nodes); i++ {
		e, _ := g.Edge(nodes[i-1], nodes[i])
		labels = append(labels, e.Label)
	}
	return strings.ToLower(strings.Join(labels, "/"))
}
