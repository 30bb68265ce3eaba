package model

import "encoding/json"

// HeaderCell describes one compared contribution.
type HeaderCell struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	PaperID    string `json:"paper_id"`
	PaperLabel string `json:"paper_label"`
	PaperYear  string `json:"paper_year"`
}

// IndexCell describes one row of the comparison: a predicate, a merged
// predicate cluster or a path signature.
type IndexCell struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	NContributions    int      `json:"n_contributions"`
	Active            bool     `json:"active"`
	SimilarPredicates []string `json:"similar_predicates,omitempty"`
}

// TargetCell is a value reached from a contribution. The zero value is the
// empty-slot sentinel and encodes as {}.
type TargetCell struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Classes    []string `json:"classes"`
	Path       []string `json:"path"`
	PathLabels []string `json:"path_labels"`
}

func (c TargetCell) IsEmpty() bool {
	return c.ID == "" && c.Label == "" && c.Type == "" &&
		len(c.Classes) == 0 && len(c.Path) == 0 && len(c.PathLabels) == 0
}

func (c TargetCell) MarshalJSON() ([]byte, error) {
	if c.IsEmpty() {
		return []byte("{}"), nil
	}
	type plain TargetCell
	p := plain(c)
	if p.Classes == nil {
		p.Classes = []string{}
	}
	if p.Path == nil {
		p.Path = []string{}
	}
	if p.PathLabels == nil {
		p.PathLabels = []string{}
	}
	return json.Marshal(p)
}

// Slot holds the targets of one contribution for one row.
type Slot []TargetCell

// EmptySlot returns a freshly allocated sentinel slot.
func EmptySlot() Slot {
	return Slot{TargetCell{}}
}

func (s Slot) IsEmpty() bool {
	return len(s) == 0 || s[0].IsEmpty()
}

// Comparison is the aligned result of comparing contributions. Every entry of
// Data has exactly one slot per contribution, in contribution order.
type Comparison struct {
	Contributions []HeaderCell      `json:"contributions"`
	Predicates    []IndexCell       `json:"predicates"`
	Data          map[string][]Slot `json:"data"`
}

func NewComparison() *Comparison {
	return &Comparison{
		Contributions: []HeaderCell{},
		Predicates:    []IndexCell{},
		Data:          map[string][]Slot{},
	}
}

// NewRow allocates n independent empty slots.
func NewRow(n int) []Slot {
	row := make([]Slot, n)
	for i := range row {
		row[i] = EmptySlot()
	}
	return row
}

// CountFilled returns how many slots of row hold at least one target.
func CountFilled(row []Slot) int {
	n := 0
	for _, s := range row {
		if !s.IsEmpty() {
			n++
		}
	}
	return n
}
