package core

import (
	"context"

	"github.com/agenthands/simcomp/internal/backend"
	"github.com/agenthands/simcomp/internal/core/model"
)

// MockBackend records every lookup and answers from fixed tables.
type MockBackend struct {
	Subgraphs map[string]*model.Subgraph
	Details   map[string]*backend.ContributionDetails
	Years     map[string]string
	IDs       []string

	SubgraphCalls []string
}

func (m *MockBackend) GetSubgraph(ctx context.Context, thingID string) *model.Subgraph {
	m.SubgraphCalls = append(m.SubgraphCalls, thingID)
	return m.Subgraphs[thingID]
}

func (m *MockBackend) GetContributionDetails(ctx context.Context, contributionID string) *backend.ContributionDetails {
	return m.Details[contributionID]
}

func (m *MockBackend) GetPaperYear(ctx context.Context, paperID string) string {
	return m.Years[paperID]
}

func (m *MockBackend) GetContributionIDs(ctx context.Context) []string {
	return m.IDs
}

func (m *MockBackend) Close(ctx context.Context) error {
	return nil
}

func newMockBackend(ids ...string) *MockBackend {
	m := &MockBackend{
		Subgraphs: map[string]*model.Subgraph{},
		Details:   map[string]*backend.ContributionDetails{},
		Years:     map[string]string{"paper": "2021"},
	}
	for _, id := range ids {
		g := model.NewSubgraph(id)
		g.AddNode(model.Node{ID: id, Label: "Contribution " + id, Class: "resource"})
		g.AddNode(model.Node{ID: id + "_v", Label: "value " + id, Class: "literal"})
		g.AddEdge(id, id+"_v", "P"+id, "predicate "+id)
		m.Subgraphs[id] = g
		m.Details[id] = &backend.ContributionDetails{Label: "Contribution " + id, PaperID: "paper", PaperLabel: "Paper"}
		m.IDs = append(m.IDs, id)
	}
	return m
}
