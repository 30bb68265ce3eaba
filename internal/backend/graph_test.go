package backend

import (
	"context"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/simcomp/internal/config"
	"github.com/agenthands/simcomp/internal/driver"
	"github.com/agenthands/simcomp/internal/logger"
)

var statementKeys = []string{
	"subject_id", "subject_label", "subject_formatted_label", "subject_classes",
	"predicate_id", "predicate_label",
	"object_id", "object_label", "object_formatted_label", "object_classes",
}

func newBackend(d *MockDriver) *GraphBackend {
	return NewGraphBackend(d, config.Default().Backend, logger.Nop())
}

func thingResult(id, label string, classes ...interface{}) neo4j.EagerResult {
	return neo4j.EagerResult{Records: []*neo4j.Record{
		record([]string{"id", "label", "formatted_label", "classes"}, id, label, nil, classes),
	}}
}

// statement builds a resource-to-resource statement record.
func statement(subject, predicate, object string) *neo4j.Record {
	return record(statementKeys, subject, subject, nil, []interface{}{"Thing", "Resource"},
		predicate, predicate, object, object, nil, []interface{}{"Thing", "Resource"})
}

func TestGetSubgraph(t *testing.T) {
	d := &MockDriver{
		Results: []neo4j.EagerResult{
			thingResult("R1", "Contribution 1", "Thing", "Resource", "Contribution"),
			{Records: []*neo4j.Record{
				record(statementKeys, "R1", "Contribution 1", nil, []interface{}{"Thing", "Resource", "Contribution"},
					"P32", "research problem", "R2", "Problem", nil, []interface{}{"Thing", "Resource", "Problem"}),
			}},
			{Records: []*neo4j.Record{
				record(statementKeys, "R2", "Problem", nil, []interface{}{"Thing", "Resource", "Problem"},
					"P5", "has value", "L1", "42", nil, []interface{}{"Thing", "Literal"}),
			}},
		},
	}

	g := newBackend(d).GetSubgraph(context.Background(), "R1")
	require.NotNil(t, g)

	assert.Equal(t, []string{"R1", "R2", "L1"}, g.NodeIDs())
	e, ok := g.Edge("R2", "L1")
	require.True(t, ok)
	assert.Equal(t, "P5", e.ID)
	assert.Equal(t, "has value", e.Label)

	lit, _ := g.Node("L1")
	assert.Equal(t, "literal", lit.Class)
	assert.Equal(t, []string{"Thing", "Literal"}, lit.Classes)

	// literals are never expanded
	require.Len(t, d.Queries, 3)
	assert.Equal(t, driver.GetStatementsQuery, d.Queries[1])
	assert.Equal(t, []string{"R1"}, d.Params[1]["subject_ids"])
	assert.Equal(t, []string{"R2"}, d.Params[2]["subject_ids"])
	assert.Equal(t, []string{"ResearchField"}, d.Params[1]["blacklist"])
}

func TestGetSubgraph_SharedNodesExpandOnce(t *testing.T) {
	d := &MockDriver{
		Results: []neo4j.EagerResult{
			thingResult("R", "root", "Thing", "Resource"),
			{Records: []*neo4j.Record{statement("R", "P1", "A"), statement("R", "P2", "B")}},
			{Records: []*neo4j.Record{statement("A", "P3", "C"), statement("B", "P3", "C")}},
			{Records: []*neo4j.Record{statement("C", "P4", "R")}},
		},
	}

	g := newBackend(d).GetSubgraph(context.Background(), "R")
	require.NotNil(t, g)

	assert.Equal(t, []string{"R", "A", "B", "C"}, g.NodeIDs())
	assert.Equal(t, 5, len(g.Edges()))
	require.Len(t, d.Queries, 4)
	assert.Equal(t, []string{"A", "B"}, d.Params[2]["subject_ids"])
	assert.Equal(t, []string{"C"}, d.Params[3]["subject_ids"])
}

func TestGetSubgraph_MaxLevel(t *testing.T) {
	chain := &MockDriver{
		Results: []neo4j.EagerResult{
			thingResult("R", "root", "Thing", "Resource"),
			{Records: []*neo4j.Record{statement("R", "P1", "A")}},
			{Records: []*neo4j.Record{statement("A", "P2", "B")}},
		},
		Fallback: neo4j.EagerResult{Records: []*neo4j.Record{statement("B", "P3", "C")}},
	}
	b := newBackend(chain)
	b.MaxLevel = 1

	g := b.GetSubgraph(context.Background(), "R")
	require.NotNil(t, g)
	assert.Equal(t, []string{"R", "A", "B"}, g.NodeIDs())
	assert.Len(t, chain.Queries, 3)
}

func TestGetSubgraph_BlacklistedRoot(t *testing.T) {
	d := &MockDriver{
		Results: []neo4j.EagerResult{thingResult("RF1", "Science", "Thing", "Resource", "ResearchField")},
	}

	g := newBackend(d).GetSubgraph(context.Background(), "RF1")
	require.NotNil(t, g)
	assert.Equal(t, []string{"RF1"}, g.NodeIDs())
	assert.Len(t, d.Queries, 1)
}

func TestGetSubgraph_LevelError(t *testing.T) {
	d := &MockDriver{
		Results: []neo4j.EagerResult{thingResult("R1", "Contribution 1", "Thing", "Resource")},
		Errs:    []error{nil, fmt.Errorf("timeout")},
	}
	assert.Nil(t, newBackend(d).GetSubgraph(context.Background(), "R1"))
}

func TestGetSubgraph_UnknownThing(t *testing.T) {
	d := &MockDriver{}
	assert.Nil(t, newBackend(d).GetSubgraph(context.Background(), "missing"))
}

func TestGetSubgraph_QueryError(t *testing.T) {
	d := &MockDriver{Errs: []error{fmt.Errorf("connection refused")}}
	assert.Nil(t, newBackend(d).GetSubgraph(context.Background(), "R1"))
}

func TestGetContributionDetails(t *testing.T) {
	keys := []string{"label", "paper_id", "paper_label"}
	d := &MockDriver{
		Results: []neo4j.EagerResult{
			{Records: []*neo4j.Record{record(keys, "Contribution 1", "R0", "Paper")}},
		},
	}

	details := newBackend(d).GetContributionDetails(context.Background(), "R1")
	require.NotNil(t, details)
	assert.Equal(t, ContributionDetails{Label: "Contribution 1", PaperID: "R0", PaperLabel: "Paper"}, *details)
	assert.Equal(t, "R1", d.Params[0]["contribution_id"])
}

func TestGetContributionDetails_AmbiguousOrFailing(t *testing.T) {
	keys := []string{"label", "paper_id", "paper_label"}
	two := &MockDriver{
		Fallback: neo4j.EagerResult{Records: []*neo4j.Record{
			record(keys, "a", "p1", "x"),
			record(keys, "b", "p2", "y"),
		}},
	}
	assert.Nil(t, newBackend(two).GetContributionDetails(context.Background(), "R1"))

	failing := &MockDriver{Errs: []error{fmt.Errorf("boom")}}
	assert.Nil(t, newBackend(failing).GetContributionDetails(context.Background(), "R1"))
}

func TestGetPaperYear(t *testing.T) {
	d := &MockDriver{
		Results: []neo4j.EagerResult{
			{Records: []*neo4j.Record{record([]string{"year"}, int64(2019))}},
		},
	}
	assert.Equal(t, "2019", newBackend(d).GetPaperYear(context.Background(), "R0"))

	none := &MockDriver{}
	assert.Equal(t, "", newBackend(none).GetPaperYear(context.Background(), "R0"))
}

func countResult(total int64) neo4j.EagerResult {
	return neo4j.EagerResult{Records: []*neo4j.Record{record([]string{"total"}, total)}}
}

func TestGetContributionIDs_Pages(t *testing.T) {
	keys := []string{"id"}
	d := &MockDriver{
		Results: []neo4j.EagerResult{
			countResult(3),
			{Records: []*neo4j.Record{record(keys, "R1"), record(keys, "R2")}},
			{Records: []*neo4j.Record{record(keys, "R3")}},
		},
	}
	b := newBackend(d)
	b.PageSize = 2

	assert.Equal(t, []string{"R1", "R2", "R3"}, b.GetContributionIDs(context.Background()))
	require.Len(t, d.Params, 3)
	assert.Equal(t, driver.CountContributionsQuery, d.Queries[0])
	assert.Equal(t, 0, d.Params[1]["skip"])
	assert.Equal(t, 2, d.Params[2]["skip"])
}

func TestGetContributionIDs_FailingPageIsSkipped(t *testing.T) {
	keys := []string{"id"}
	d := &MockDriver{
		Results: []neo4j.EagerResult{
			countResult(5),
			{Records: []*neo4j.Record{record(keys, "R1"), record(keys, "R2")}},
			{},
			{Records: []*neo4j.Record{record(keys, "R5")}},
		},
		Errs: []error{nil, nil, fmt.Errorf("timeout")},
	}
	b := newBackend(d)
	b.PageSize = 2

	assert.Equal(t, []string{"R1", "R2", "R5"}, b.GetContributionIDs(context.Background()))
	require.Len(t, d.Params, 4)
	assert.Equal(t, 4, d.Params[3]["skip"])
}

func TestGetContributionIDs_CountFails(t *testing.T) {
	d := &MockDriver{Errs: []error{fmt.Errorf("unavailable")}}
	assert.Empty(t, newBackend(d).GetContributionIDs(context.Background()))
	assert.Len(t, d.Queries, 1)
}
