package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"strings"
)

// Table is the two-dimensional rendition of a comparison: one column per
// contribution, one row per predicate.
type Table struct {
	Columns []string   `json:"columns"`
	Index   []string   `json:"index"`
	Rows    [][]string `json:"data"`
}

// Row returns the cells of the row labelled label.
func (t *Table) Row(label string) ([]string, bool) {
	for i, l := range t.Index {
		if l == label {
			return t.Rows[i], true
		}
	}
	return nil, false
}

// CSV renders the table with a leading index column whose header is empty.
func (t *Table) CSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(append([]string{""}, t.Columns...)); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, label := range t.Index {
		if err := w.Write(append([]string{label}, t.Rows[i]...)); err != nil {
			return "", fmt.Errorf("failed to write csv row '%s': %w", label, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.String(), nil
}

var htmlTable = template.Must(template.New("table").Parse(`<table border="1" class="dataframe">
  <thead>
    <tr style="text-align: right;">
      <th></th>
{{- range .Columns}}
      <th>{{.}}</th>
{{- end}}
    </tr>
  </thead>
  <tbody>
{{- range $i, $row := .Rows}}
    <tr>
      <th>{{index $.Index $i}}</th>
{{- range $row}}
      <td>{{.}}</td>
{{- end}}
    </tr>
{{- end}}
  </tbody>
</table>`))

// HTML renders the table as an escaped HTML table, index cells as <th>.
func (t *Table) HTML() (string, error) {
	var sb strings.Builder
	if err := htmlTable.Execute(&sb, t); err != nil {
		return "", fmt.Errorf("failed to render html table: %w", err)
	}
	return sb.String(), nil
}

// ParseTable reads a table back from its CSV rendition.
func ParseTable(data string) (*Table, error) {
	r := csv.NewReader(strings.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header")
	}

	t := &Table{Columns: records[0][1:], Index: []string{}, Rows: [][]string{}}
	for _, rec := range records[1:] {
		t.Index = append(t.Index, rec[0])
		t.Rows = append(t.Rows, rec[1:])
	}
	return t, nil
}
