package similarity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/agenthands/simcomp/internal/core/model"
	"github.com/agenthands/simcomp/internal/core/text"
)

// Matrix scores every pair of distinct predicates seen across a set of
// contributions by the closeness of their cleaned labels.
type Matrix struct {
	predicates *model.PredicateSet
	ids        []string
	index      map[string]int
	clean      []string

	cache  map[[2]int]float64
	scores *mat.SymDense
}

// NewMatrix merges the per-contribution predicate sets in order and
// materialises the full score matrix.
func NewMatrix(contributions []*model.PredicateSet, pre *text.Preprocessor) *Matrix {
	union := model.NewPredicateSet()
	for _, set := range contributions {
		for _, id := range set.IDs() {
			union.Put(id, set.Label(id))
		}
	}

	ids := union.IDs()
	labels := make([]string, len(ids))
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		labels[i] = union.Label(id)
		index[id] = i
	}

	m := &Matrix{
		predicates: union,
		ids:        ids,
		index:      index,
		clean:      pre.CleanAll(labels),
		cache:      make(map[[2]int]float64),
	}
	m.materialize()
	return m
}

func (m *Matrix) materialize() {
	n := len(m.ids)
	if n == 0 {
		return
	}
	m.scores = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.scores.SetSym(i, j, m.score(i, j))
		}
	}
}

// score is memoised for both (i,j) and (j,i).
func (m *Matrix) score(i, j int) float64 {
	if i == j {
		return 1.0
	}
	if s, ok := m.cache[[2]int{i, j}]; ok {
		return s
	}
	s := Ratio(m.clean[i], m.clean[j])
	m.cache[[2]int{i, j}] = s
	m.cache[[2]int{j, i}] = s
	return s
}

func (m *Matrix) Len() int { return len(m.ids) }

func (m *Matrix) At(i, j int) float64 {
	return m.scores.At(i, j)
}

func (m *Matrix) Row(i int) []float64 {
	return mat.Row(nil, i, m.scores)
}

// IDAt maps a row index to its predicate id.
func (m *Matrix) IDAt(i int) string { return m.ids[i] }

// Index maps a predicate id to its row index.
func (m *Matrix) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

func (m *Matrix) Label(id string) string { return m.predicates.Label(id) }

func (m *Matrix) IDs() []string { return append([]string(nil), m.ids...) }

// Similar returns the indices whose score against i is strictly above
// threshold, i itself included.
func (m *Matrix) Similar(i int, threshold float64) []int {
	var out []int
	for j, s := range m.Row(i) {
		if s > threshold {
			out = append(out, j)
		}
	}
	return out
}
