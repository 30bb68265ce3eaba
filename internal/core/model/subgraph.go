package model

// Node is a vertex of a contribution subgraph.
type Node struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	FormattedLabel string   `json:"formatted_label,omitempty"`
	Class          string   `json:"_class"`
	Classes        []string `json:"classes,omitempty"`
}

// DisplayLabel prefers the formatted label when the backend supplied one.
func (n Node) DisplayLabel() string {
	if n.FormattedLabel != "" {
		return n.FormattedLabel
	}
	return n.Label
}

// PlainLabel is the stored label, ignoring any formatted one.
func (n Node) PlainLabel() string {
	return n.Label
}

// Edge carries the predicate of a statement.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	ID     string `json:"id"`
	Label  string `json:"label"`
}

// Subgraph is a directed graph with at most one edge per ordered node pair.
// Node order and successor order follow insertion, which keeps every
// traversal deterministic.
type Subgraph struct {
	RootID string

	nodes    map[string]*Node
	order    []string
	succ     map[string][]string
	edges    map[string]map[string]*Edge
	inDegree map[string]int
}

func NewSubgraph(rootID string) *Subgraph {
	return &Subgraph{
		RootID:   rootID,
		nodes:    make(map[string]*Node),
		succ:     make(map[string][]string),
		edges:    make(map[string]map[string]*Edge),
		inDegree: make(map[string]int),
	}
}

// AddNode inserts n, or updates the attributes of an existing node in place.
func (g *Subgraph) AddNode(n Node) {
	if existing, ok := g.nodes[n.ID]; ok {
		*existing = n
		return
	}
	node := n
	g.nodes[n.ID] = &node
	g.order = append(g.order, n.ID)
}

// AddEdge links source to target. Missing endpoints are created with their
// id as label. Adding an edge between an already linked pair replaces its
// predicate.
func (g *Subgraph) AddEdge(source, target, predicateID, predicateLabel string) {
	if _, ok := g.nodes[source]; !ok {
		g.AddNode(Node{ID: source, Label: source})
	}
	if _, ok := g.nodes[target]; !ok {
		g.AddNode(Node{ID: target, Label: target})
	}

	out, ok := g.edges[source]
	if !ok {
		out = make(map[string]*Edge)
		g.edges[source] = out
	}
	if e, ok := out[target]; ok {
		e.ID = predicateID
		e.Label = predicateLabel
		return
	}
	out[target] = &Edge{Source: source, Target: target, ID: predicateID, Label: predicateLabel}
	g.succ[source] = append(g.succ[source], target)
	g.inDegree[target]++
}

func (g *Subgraph) HasNode(id string) bool {
	if g == nil {
		return false
	}
	_, ok := g.nodes[id]
	return ok
}

func (g *Subgraph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

func (g *Subgraph) Edge(source, target string) (Edge, bool) {
	e, ok := g.edges[source][target]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// NodeIDs returns node ids in insertion order.
func (g *Subgraph) NodeIDs() []string {
	return append([]string(nil), g.order...)
}

func (g *Subgraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

func (g *Subgraph) Successors(id string) []string {
	return g.succ[id]
}

func (g *Subgraph) InDegree(id string) int {
	return g.inDegree[id]
}

// Edges lists every edge grouped by source node, in insertion order.
func (g *Subgraph) Edges() []Edge {
	var out []Edge
	for _, u := range g.order {
		for _, v := range g.succ[u] {
			out = append(out, *g.edges[u][v])
		}
	}
	return out
}

// Predicates returns the distinct predicates used by the edges, in the order
// they are first met.
func (g *Subgraph) Predicates() *PredicateSet {
	set := NewPredicateSet()
	if g == nil {
		return set
	}
	for _, e := range g.Edges() {
		set.Put(e.ID, e.Label)
	}
	return set
}

// Sources returns the nodes without incoming edges, in insertion order.
func (g *Subgraph) Sources() []string {
	var out []string
	for _, id := range g.order {
		if g.inDegree[id] == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Root picks the traversal root: preferred when it is part of the graph,
// otherwise the first node without incoming edges. ok is false when neither
// exists.
func (g *Subgraph) Root(preferred string) (string, bool) {
	if g == nil {
		return "", false
	}
	if preferred != "" && g.HasNode(preferred) {
		return preferred, true
	}
	if sources := g.Sources(); len(sources) > 0 {
		return sources[0], true
	}
	return "", false
}

// ShortestPath returns the node sequence of a shortest path from source to
// target found by breadth-first search, or nil when target is unreachable.
func (g *Subgraph) ShortestPath(source, target string) []string {
	if !g.HasNode(source) || !g.HasNode(target) {
		return nil
	}
	if source == target {
		return []string{source}
	}

	parent := map[string]string{source: ""}
	queue := []string{source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.succ[u] {
			if _, seen := parent[v]; seen {
				continue
			}
			parent[v] = u
			if v == target {
				return g.unwind(parent, source, target)
			}
			queue = append(queue, v)
		}
	}
	return nil
}

func (g *Subgraph) unwind(parent map[string]string, source, target string) []string {
	var rev []string
	for cur := target; ; cur = parent[cur] {
		rev = append(rev, cur)
		if cur == source {
			break
		}
	}
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}

// SimplePaths enumerates every path from source to target that visits no node
// twice and uses at most cutoff edges. Paths come out in depth-first order
// over successors. A path from a node to itself is never reported.
func (g *Subgraph) SimplePaths(source, target string, cutoff int) [][]string {
	if !g.HasNode(source) || !g.HasNode(target) || source == target || cutoff < 1 {
		return nil
	}

	var paths [][]string
	visited := map[string]bool{source: true}
	stack := []string{source}

	var walk func(u string)
	walk = func(u string) {
		for _, v := range g.succ[u] {
			if visited[v] {
				continue
			}
			if v == target {
				p := make([]string, len(stack)+1)
				copy(p, stack)
				p[len(stack)] = v
				paths = append(paths, p)
				continue
			}
			if len(stack) < cutoff {
				visited[v] = true
				stack = append(stack, v)
				walk(v)
				stack = stack[:len(stack)-1]
				delete(visited, v)
			}
		}
	}
	walk(source)

	return paths
}

// Trail expands a node sequence into the alternating id and label sequences
// node, predicate, node, ..., node. nodeLabel picks the label of each node.
func (g *Subgraph) Trail(nodes []string, nodeLabel func(Node) string) (ids []string, labels []string) {
	for i, id := range nodes {
		if i > 0 {
			e := g.edges[nodes[i-1]][id]
			ids = append(ids, e.ID)
			labels = append(labels, e.Label)
		}
		n := g.nodes[id]
		ids = append(ids, id)
		labels = append(labels, nodeLabel(*n))
	}
	return ids, labels
}

// PredicateSet is an insertion-ordered predicate id to label mapping.
type PredicateSet struct {
	ids    []string
	labels map[string]string
}

func NewPredicateSet() *PredicateSet {
	return &PredicateSet{labels: make(map[string]string)}
}

// Put records id with label. A repeated id keeps its position and takes the
// newest label.
func (s *PredicateSet) Put(id, label string) {
	if _, ok := s.labels[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.labels[id] = label
}

func (s *PredicateSet) Has(id string) bool {
	_, ok := s.labels[id]
	return ok
}

func (s *PredicateSet) Label(id string) string {
	return s.labels[id]
}

func (s *PredicateSet) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *PredicateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}
