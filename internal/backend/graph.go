package backend

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/simcomp/internal/config"
	"github.com/agenthands/simcomp/internal/core/model"
	"github.com/agenthands/simcomp/internal/driver"
	"github.com/agenthands/simcomp/internal/logger"
)

// GraphBackend reads contributions straight from the graph store.
type GraphBackend struct {
	Driver    driver.GraphDriver
	MaxLevel  int
	Blacklist []string
	PageSize  int
	log       *logger.Logger
}

func NewGraphBackend(d driver.GraphDriver, cfg config.BackendConfig, log *logger.Logger) *GraphBackend {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 300
	}
	blacklist := cfg.Blacklist
	if blacklist == nil {
		blacklist = []string{}
	}
	return &GraphBackend{
		Driver:    d,
		MaxLevel:  cfg.MaxLevel,
		Blacklist: blacklist,
		PageSize:  pageSize,
		log:       log.With("backend", "GraphBackend"),
	}
}

func (b *GraphBackend) Close(ctx context.Context) error {
	return b.Driver.Close(ctx)
}

// GetSubgraph expands the statements below thingID one level at a time, so
// every node is visited once however many paths lead to it.
func (b *GraphBackend) GetSubgraph(ctx context.Context, thingID string) *model.Subgraph {
	b.log.Debug("Getting subgraph", "thing_id", thingID)

	root, err := b.Driver.ExecuteQuery(ctx, driver.GetThingQuery, map[string]interface{}{"thing_id": thingID})
	if err != nil || len(root.Records) == 0 {
		b.log.Warn("An error occurred while obtaining a subgraph representation", "thing_id", thingID, "error", err)
		return nil
	}

	g := model.NewSubgraph(thingID)
	rootNode := nodeFromRecord(root.Records[0], "")
	g.AddNode(rootNode)
	if b.blacklisted(rootNode) {
		return g
	}

	frontier := []string{thingID}
	for level := 0; level <= driver.SubgraphDepth(b.MaxLevel) && len(frontier) > 0; level++ {
		res, err := b.Driver.ExecuteQuery(ctx, driver.GetStatementsQuery, map[string]interface{}{
			"subject_ids": frontier,
			"blacklist":   b.Blacklist,
		})
		if err != nil {
			b.log.Warn("An error occurred while obtaining a subgraph representation", "thing_id", thingID, "level", level, "error", err)
			return nil
		}

		var next []string
		for _, rec := range res.Records {
			subject := nodeFromRecord(rec, "subject_")
			object := nodeFromRecord(rec, "object_")
			if subject.ID == "" || object.ID == "" {
				continue
			}
			if !g.HasNode(subject.ID) {
				g.AddNode(subject)
			}
			if !g.HasNode(object.ID) {
				g.AddNode(object)
				if object.Class != "literal" {
					next = append(next, object.ID)
				}
			}
			g.AddEdge(subject.ID, object.ID, stringValue(rec, "predicate_id"), stringValue(rec, "predicate_label"))
		}
		frontier = next
	}

	return g
}

func (b *GraphBackend) blacklisted(n model.Node) bool {
	for _, class := range n.Classes {
		for _, banned := range b.Blacklist {
			if class == banned {
				return true
			}
		}
	}
	return false
}

func (b *GraphBackend) GetContributionDetails(ctx context.Context, contributionID string) *ContributionDetails {
	b.log.Debug("Getting contribution details", "contribution_id", contributionID)

	res, err := b.Driver.ExecuteQuery(ctx, driver.GetContributionDetailsQuery, map[string]interface{}{"contribution_id": contributionID})
	if err != nil || len(res.Records) != 1 {
		b.log.Warn("An error occurred while fetching contribution details", "contribution_id", contributionID, "records", len(res.Records), "error", err)
		return nil
	}

	rec := res.Records[0]
	return &ContributionDetails{
		Label:      stringValue(rec, "label"),
		PaperID:    stringValue(rec, "paper_id"),
		PaperLabel: stringValue(rec, "paper_label"),
	}
}

func (b *GraphBackend) GetPaperYear(ctx context.Context, paperID string) string {
	b.log.Debug("Getting paper year", "paper_id", paperID)

	res, err := b.Driver.ExecuteQuery(ctx, driver.GetPaperYearQuery, map[string]interface{}{"paper_id": paperID})
	if err != nil || len(res.Records) != 1 {
		b.log.Warn("An error occurred while fetching the paper year", "paper_id", paperID, "records", len(res.Records), "error", err)
		return ""
	}
	return stringValue(res.Records[0], "year")
}

// GetContributionIDs counts the contributions, then reads them page by page.
// A failing page is logged and skipped; a failing count yields nothing.
func (b *GraphBackend) GetContributionIDs(ctx context.Context) []string {
	b.log.Debug("Getting all contributions")

	res, err := b.Driver.ExecuteQuery(ctx, driver.CountContributionsQuery, nil)
	if err != nil || len(res.Records) != 1 {
		b.log.Warn("An error occurred while counting contributions", "error", err)
		return nil
	}
	total, _, err := neo4j.GetRecordValue[int64](res.Records[0], "total")
	if err != nil {
		b.log.Warn("Contribution count has an unexpected type", "error", err)
		return nil
	}
	pages := int((total + int64(b.PageSize) - 1) / int64(b.PageSize))

	var ids []string
	for page := 0; page < pages; page++ {
		res, err := b.Driver.ExecuteQuery(ctx, driver.GetContributionIDsQuery, map[string]interface{}{
			"skip":  page * b.PageSize,
			"limit": b.PageSize,
		})
		if err != nil {
			b.log.Warn("An error occurred while paging contributions", "page", page, "pages", pages, "error", err)
			continue
		}
		for _, rec := range res.Records {
			if id := stringValue(rec, "id"); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func nodeFromRecord(rec *neo4j.Record, prefix string) model.Node {
	classes := stringsValue(rec, prefix+"classes")
	return model.Node{
		ID:             stringValue(rec, prefix+"id"),
		Label:          stringValue(rec, prefix+"label"),
		FormattedLabel: stringValue(rec, prefix+"formatted_label"),
		Class:          nodeClass(classes),
		Classes:        classes,
	}
}

// nodeClass maps store labels onto the thing kind exposed as "_class".
func nodeClass(labels []string) string {
	for _, l := range labels {
		switch l {
		case "Literal":
			return "literal"
		case "Class":
			return "class"
		case "Predicate":
			return "predicate"
		}
	}
	return "resource"
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func stringsValue(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	switch vs := v.(type) {
	case []string:
		return vs
	case []interface{}:
		out := make([]string, 0, len(vs))
		for _, x := range vs {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
