package driver

// Statements are (:Thing)-[:RELATED {statement_id, predicate_id}]->(:Thing).
// Predicate labels live on (:Predicate {id, label}) nodes.

const (
	GetThingQuery = `
		MATCH (n:Thing {id: $thing_id})
		RETURN n.id AS id, n.label AS label, n.formatted_label AS formatted_label, labels(n) AS classes
	`

	// GetStatementsQuery returns the outgoing statements of one traversal
	// level, skipping objects that carry a blacklisted label.
	GetStatementsQuery = `
		UNWIND $subject_ids AS subject_id
		MATCH (s:Thing {id: subject_id})-[r:RELATED]->(o:Thing)
		WHERE NONE(l IN labels(o) WHERE l IN $blacklist)
		OPTIONAL MATCH (p:Predicate {id: r.predicate_id})
		RETURN s.id AS subject_id, s.label AS subject_label, s.formatted_label AS subject_formatted_label, labels(s) AS subject_classes,
			r.predicate_id AS predicate_id, coalesce(p.label, r.predicate_id) AS predicate_label,
			o.id AS object_id, o.label AS object_label, o.formatted_label AS object_formatted_label, labels(o) AS object_classes
		ORDER BY r.statement_id
	`

	GetContributionDetailsQuery = `
		MATCH (paper:Thing)-[:RELATED {predicate_id: 'P31'}]->(c:Thing {id: $contribution_id})
		RETURN c.label AS label, paper.id AS paper_id, paper.label AS paper_label
	`

	GetPaperYearQuery = `
		MATCH (paper:Thing {id: $paper_id})-[:RELATED {predicate_id: 'P29'}]->(y:Thing)
		RETURN y.label AS year
	`

	CountContributionsQuery = `
		MATCH (c:Contribution)
		RETURN count(c) AS total
	`

	GetContributionIDsQuery = `
		MATCH (c:Contribution)
		RETURN c.id AS id
		ORDER BY c.id
		SKIP $skip
		LIMIT $limit
	`
)

// MaxSubgraphDepth bounds traversals requested without an explicit level.
const MaxSubgraphDepth = 25

// SubgraphDepth is the number of levels to expand for maxLevel.
func SubgraphDepth(maxLevel int) int {
	if maxLevel <= 0 || maxLevel > MaxSubgraphDepth {
		return MaxSubgraphDepth
	}
	return maxLevel
}
