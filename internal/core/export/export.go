package export

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agenthands/simcomp/internal/apierr"
	"github.com/agenthands/simcomp/internal/core/common"
	"github.com/agenthands/simcomp/internal/core/model"
)

// Format names an export rendition.
type Format string

const (
	FormatUnknown   Format = "UNKNOWN"
	FormatCSV       Format = "CSV"
	FormatDataFrame Format = "DATAFRAME"
	FormatHTML      Format = "HTML"
	FormatXML       Format = "XML"
)

// Separator joins the labels of the targets sharing a cell.
const Separator = "<SEP>"

// Artifact is an exported thing. Table is set for DATAFRAME, Text for
// the textual formats.
type Artifact struct {
	Format Format
	Table  *Table
	Text   string
}

// Payload is the value to embed in a response body.
func (a *Artifact) Payload() any {
	if a.Format == FormatDataFrame {
		return a.Table
	}
	return a.Text
}

func (a *Artifact) ContentType() string {
	switch a.Format {
	case FormatCSV:
		return "text/csv"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXML:
		return "application/xml"
	}
	return "application/json"
}

// Export renders comparison in format. comparison may be a model.Comparison,
// a pointer to one, raw JSON or a decoded JSON object. With likeUI set, the
// ordered predicate ids of config["predicates"] select and order the rows.
func Export(comparison any, format Format, config map[string]any, likeUI bool) (*Artifact, error) {
	c, err := parse(comparison)
	if err != nil {
		return nil, err
	}

	f := Format(strings.ToUpper(string(format)))
	switch f {
	case FormatDataFrame, FormatCSV, FormatHTML:
	default:
		return nil, apierr.NotImplemented("export.Export",
			"Exporting a comparison with the format=%q is not supported", string(format))
	}

	var allow []string
	if likeUI && config != nil {
		allow = common.Strings(config["predicates"])
	}
	table, err := toTable(c, allow)
	if err != nil {
		return nil, err
	}

	a := &Artifact{Format: f}
	switch f {
	case FormatDataFrame:
		a.Table = table
	case FormatCSV:
		a.Text, err = table.CSV()
	case FormatHTML:
		a.Text, err = table.HTML()
	}
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "export.Export", err)
	}
	return a, nil
}

func malformed() *apierr.Error {
	return apierr.Internal("export.Export", "Data object cannot be parsed as a Comparison")
}

func parse(v any) (*model.Comparison, error) {
	switch in := v.(type) {
	case *model.Comparison:
		if in == nil {
			return nil, malformed()
		}
		return in, nil
	case model.Comparison:
		return &in, nil
	}

	data, ok := v.([]byte)
	if !ok {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, malformed()
		}
		data = raw
	}
	if err := common.RequireKeys(data, "contributions", "predicates", "data"); err != nil {
		return nil, malformed()
	}
	c, err := common.Decode[model.Comparison](data)
	if err != nil {
		return nil, malformed()
	}
	return &c, nil
}

func toTable(c *model.Comparison, allow []string) (*Table, error) {
	t := &Table{Columns: make([]string, len(c.Contributions)), Index: []string{}, Rows: [][]string{}}
	for i, h := range c.Contributions {
		t.Columns[i] = h.PaperLabel + "/" + h.Label
	}

	labels := make(map[string]string, len(c.Predicates))
	for _, p := range c.Predicates {
		labels[p.ID] = p.Label
	}
	for id := range c.Data {
		if _, ok := labels[id]; !ok {
			return nil, malformed()
		}
	}

	order := make([]string, 0, len(c.Predicates))
	for _, p := range c.Predicates {
		order = append(order, p.ID)
	}
	if len(allow) > 0 {
		order = allow
	}

	seen := make(map[string]bool, len(order))
	for _, id := range order {
		row, ok := c.Data[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if len(row) != len(c.Contributions) {
			return nil, malformed()
		}
		cells := make([]string, len(row))
		for i, slot := range row {
			cells[i] = cell(slot)
		}
		t.Index = append(t.Index, labels[id])
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func cell(slot model.Slot) string {
	if slot.IsEmpty() {
		return ""
	}
	labels := make([]string, len(slot))
	for i, target := range slot {
		labels[i] = target.Label
	}
	return strings.Join(labels, Separator)
}
