package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/agenthands/simcomp/internal/core/model"
)

// SubgraphDoc is the serialised form of a subgraph.
type SubgraphDoc struct {
	Nodes []model.Node `json:"nodes"`
	Edges []model.Edge `json:"edges"`
}

// ContributionFixture is one contribution of a fixture file. Details and
// Subgraph may be omitted to simulate lookups the graph cannot serve.
type ContributionFixture struct {
	Details  *ContributionDetails `json:"details,omitempty"`
	Subgraph *SubgraphDoc         `json:"subgraph,omitempty"`
}

type fixtureFile struct {
	Contributions map[string]ContributionFixture `json:"contributions"`
	Papers        map[string]struct {
		Year string `json:"year"`
	} `json:"papers"`
}

// FixtureBackend serves contributions from memory. Every GetSubgraph call
// builds a new graph, so callers never share state.
type FixtureBackend struct {
	contributions map[string]ContributionFixture
	years         map[string]string
}

func NewFixtureBackend() *FixtureBackend {
	return &FixtureBackend{
		contributions: make(map[string]ContributionFixture),
		years:         make(map[string]string),
	}
}

func LoadFixtureBackend(path string) (*FixtureBackend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture '%s': %w", path, err)
	}
	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture '%s': %w", path, err)
	}

	b := NewFixtureBackend()
	for id, c := range f.Contributions {
		b.contributions[id] = c
	}
	for id, p := range f.Papers {
		b.years[id] = p.Year
	}
	return b, nil
}

// AddContribution registers a contribution. A nil graph leaves the subgraph
// unavailable.
func (b *FixtureBackend) AddContribution(id string, details *ContributionDetails, g *model.Subgraph) {
	c := ContributionFixture{Details: details}
	if g != nil {
		c.Subgraph = &SubgraphDoc{Edges: g.Edges()}
		for _, nid := range g.NodeIDs() {
			n, _ := g.Node(nid)
			c.Subgraph.Nodes = append(c.Subgraph.Nodes, n)
		}
	}
	b.contributions[id] = c
}

func (b *FixtureBackend) SetPaperYear(paperID, year string) {
	b.years[paperID] = year
}

func (b *FixtureBackend) GetSubgraph(_ context.Context, thingID string) *model.Subgraph {
	c, ok := b.contributions[thingID]
	if !ok || c.Subgraph == nil {
		return nil
	}
	g := model.NewSubgraph(thingID)
	for _, n := range c.Subgraph.Nodes {
		g.AddNode(n)
	}
	for _, e := range c.Subgraph.Edges {
		g.AddEdge(e.Source, e.Target, e.ID, e.Label)
	}
	return g
}

func (b *FixtureBackend) GetContributionDetails(_ context.Context, contributionID string) *ContributionDetails {
	c, ok := b.contributions[contributionID]
	if !ok || c.Details == nil {
		return nil
	}
	d := *c.Details
	return &d
}

func (b *FixtureBackend) GetPaperYear(_ context.Context, paperID string) string {
	return b.years[paperID]
}

func (b *FixtureBackend) GetContributionIDs(_ context.Context) []string {
	ids := make([]string, 0, len(b.contributions))
	for id := range b.contributions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *FixtureBackend) Close(context.Context) error { return nil }
