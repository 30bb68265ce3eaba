package compare

import (
	"github.com/agenthands/simcomp/internal/backend"
	"github.com/agenthands/simcomp/internal/core/model"
)

const year = "2023"

func details(label string) *backend.ContributionDetails {
	return &backend.ContributionDetails{Label: label, PaperID: "paper_0", PaperLabel: "Paper 1"}
}

// starGraph links id to one literal per predicate label, the literal named
// after its value.
func starGraph(id string, predicates map[string]string, order ...string) *model.Subgraph {
	g := model.NewSubgraph(id)
	g.AddNode(model.Node{ID: id, Label: "contribution " + id, Class: "resource"})
	for _, key := range order {
		value := predicates[key]
		g.AddNode(model.Node{ID: id + "/" + value, Label: value, Class: "literal", Classes: []string{"Literal", "Thing"}})
		g.AddEdge(id, id+"/"+value, key, key)
	}
	return g
}

func newFixture() *backend.FixtureBackend {
	b := backend.NewFixtureBackend()
	b.SetPaperYear("paper_0", year)
	return b
}

func assertRowsAligned(t interface {
	Errorf(format string, args ...interface{})
}, c *model.Comparison) {
	for key, row := range c.Data {
		if len(row) != len(c.Contributions) {
			t.Errorf("row %q has %d slots for %d contributions", key, len(row), len(c.Contributions))
		}
	}
}
