package export

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/agenthands/simcomp/internal/apierr"
	"github.com/agenthands/simcomp/internal/core/common"
)

// Review is a stored SmartReview: the statements reachable from its root
// resource.
type Review struct {
	RootReviewID string            `json:"root_review_id"`
	Statements   []ReviewStatement `json:"statements"`
}

type ReviewStatement struct {
	ID        string         `json:"id"`
	Subject   ReviewResource `json:"subject"`
	Predicate ReviewResource `json:"predicate"`
	Object    ReviewResource `json:"object"`
}

type ReviewResource struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Classes   []string  `json:"classes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r ReviewResource) hasClass(class string) bool {
	for _, c := range r.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// ComparisonTables renders the stored comparison with the given id as an
// HTML table.
type ComparisonTables func(comparisonID string) (string, error)

const (
	predicateContribution = "P31"
	predicateField        = "P30"
	predicateAuthor       = "P27"
	predicateHasSection   = "HasSection"
	predicateHasContent   = "hasContent"
	predicateHasLink      = "HasLink"
	predicateDescription  = "description"
)

// ExportReview renders review as a JATS article. XML is the only format;
// tables supplies the comparison sections and may be nil.
func ExportReview(review any, format Format, tables ComparisonTables) (*Artifact, error) {
	r, err := parseReview(review)
	if err != nil {
		return nil, err
	}

	f := Format(strings.ToUpper(string(format)))
	if f != FormatXML {
		return nil, apierr.NotImplemented("export.ExportReview",
			"Exporting a review with the format=%q is not supported", string(format))
	}

	a, err := buildArticle(r, tables)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := jatsArticle.Execute(&sb, a); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "export.ExportReview",
			fmt.Errorf("failed to render review: %w", err))
	}
	return &Artifact{Format: FormatXML, Text: sb.String()}, nil
}

func parseReview(v any) (*Review, error) {
	switch in := v.(type) {
	case *Review:
		if in != nil {
			return in, nil
		}
	case Review:
		return &in, nil
	default:
		data, ok := v.([]byte)
		if !ok {
			raw, err := json.Marshal(v)
			if err != nil {
				break
			}
			data = raw
		}
		if err := common.RequireKeys(data, "root_review_id", "statements"); err != nil {
			break
		}
		if r, err := common.Decode[Review](data); err == nil {
			return &r, nil
		}
	}
	return nil, apierr.Internal("export.ExportReview", "Data object cannot be parsed as a Review")
}

type article struct {
	Field     string
	Title     string
	Authors   []string
	Published time.Time
	Sections  []section
}

type sectionKind int

const (
	sectionText sectionKind = iota
	sectionComparison
	sectionVisualization
	sectionEntity
)

type section struct {
	Kind  sectionKind
	Type  string
	Title string
	Text  string

	// comparison and entity sections
	LinkID      string
	LinkLabel   string
	Description string
	Table       string
	Rows        [][2]string
}

func (s section) IsComparison() bool    { return s.Kind == sectionComparison }
func (s section) IsVisualization() bool { return s.Kind == sectionVisualization }
func (s section) IsEntity() bool        { return s.Kind == sectionEntity }

func buildArticle(r *Review, tables ComparisonTables) (*article, error) {
	root, ok := r.first(func(st ReviewStatement) bool { return st.Subject.ID == r.RootReviewID })
	if !ok || !root.Subject.hasClass("SmartReview") {
		return nil, apierr.Internal("export.ExportReview", "Review is not of class SmartReview")
	}

	a := &article{Title: root.Subject.Label, Published: root.Subject.CreatedAt, Authors: []string{}}
	if st, ok := r.first(r.rootPredicate(predicateField)); ok {
		a.Field = st.Object.Label
	}
	for _, st := range r.Statements {
		if r.rootPredicate(predicateAuthor)(st) {
			a.Authors = append(a.Authors, st.Object.Label)
		}
	}

	contributionID := ""
	if st, ok := r.first(r.rootPredicate(predicateContribution)); ok {
		contributionID = st.Object.ID
	}
	var sectionIDs []string
	for _, st := range r.Statements {
		if st.Subject.ID == contributionID && st.Predicate.ID == predicateHasSection {
			sectionIDs = append(sectionIDs, st.Object.ID)
		}
	}

	for i := len(sectionIDs) - 1; i >= 0; i-- {
		if sec, ok := r.section(sectionIDs[i], tables); ok {
			a.Sections = append(a.Sections, sec)
		}
	}
	return a, nil
}

// section builds the section with id; sections whose link is missing are
// dropped.
func (r *Review) section(id string, tables ComparisonTables) (section, bool) {
	st, _ := r.first(func(st ReviewStatement) bool { return st.Object.ID == id })
	res := st.Object
	sec := section{
		Kind:  sectionText,
		Type:  strings.ToLower(strings.TrimSpace(strings.ReplaceAll(strings.Join(res.Classes, " "), "Section", ""))),
		Title: res.Label,
	}

	link, linked := r.first(func(st ReviewStatement) bool {
		return st.Subject.ID == id && st.Predicate.ID == predicateHasLink
	})

	switch {
	case res.hasClass("ComparisonSection"):
		if !linked {
			return sec, false
		}
		sec.Kind = sectionComparison
		sec.LinkID, sec.LinkLabel = link.Object.ID, link.Object.Label
		if d, ok := r.first(func(st ReviewStatement) bool {
			return st.Subject.ID == link.Object.ID && st.Predicate.ID == predicateDescription
		}); ok {
			sec.Description = d.Object.Label
		}
		sec.Table = comparisonTable(link.Object.ID, tables)
	case res.hasClass("VisualizationSection"):
		if !linked {
			return sec, false
		}
		sec.Kind = sectionVisualization
		sec.LinkID = link.Object.ID
	case res.hasClass("PropertySection") || res.hasClass("ResourceSection"):
		if !linked {
			return sec, false
		}
		sec.Kind = sectionEntity
		sec.LinkID, sec.LinkLabel = link.Object.ID, link.Object.Label
		for _, st := range r.Statements {
			if st.Subject.ID == link.Object.ID {
				sec.Rows = append(sec.Rows, [2]string{st.Predicate.Label, st.Object.Label})
			}
		}
	case res.hasClass("Section"):
		if c, ok := r.first(func(st ReviewStatement) bool {
			return st.Subject.ID == id && st.Predicate.ID == predicateHasContent
		}); ok {
			sec.Text = c.Object.Label
		}
	}
	return sec, true
}

func comparisonTable(id string, tables ComparisonTables) string {
	if tables != nil {
		if html, err := tables(id); err == nil {
			return html
		}
	}
	html, _ := (&Table{}).HTML()
	return html
}

func (r *Review) first(match func(ReviewStatement) bool) (ReviewStatement, bool) {
	for _, st := range r.Statements {
		if match(st) {
			return st, true
		}
	}
	return ReviewStatement{}, false
}

func (r *Review) rootPredicate(predicateID string) func(ReviewStatement) bool {
	return func(st ReviewStatement) bool {
		return st.Subject.ID == r.RootReviewID && st.Predicate.ID == predicateID
	}
}

var jatsArticle = template.Must(template.New("article").Funcs(template.FuncMap{
	"xml": template.HTMLEscapeString,
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<article xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:ali="http://www.niso.org/schemas/ali/1.0">
  <front>
    <article-meta>
      <article-categories>
        <subj-group xml:lang="en">
          <subject>{{xml .Field}}</subject>
        </subj-group>
      </article-categories>
      <title-group>
        <article-title>{{xml .Title}}</article-title>
      </title-group>
      <contrib-group content-type="author">
{{- range .Authors}}
        <contrib contrib-type="person">
          <string-name>{{xml .}}</string-name>
        </contrib>
{{- end}}
      </contrib-group>
      <pub-date date-type="pub" iso-8601-date="{{.Published.Format "2006-01-02"}}">
        <day>{{.Published.Day}}</day>
        <month>{{printf "%d" .Published.Month}}</month>
        <year>{{.Published.Year}}</year>
      </pub-date>
      <permissions id="permission">
        <copyright-year>{{.Published.Year}}</copyright-year>
        <copyright-holder>Open Research Knowledge Graph</copyright-holder>
        <license>
          <ali:license_ref>http://creativecommons.org/licenses/by-sa/4.0/</ali:license_ref>
          <license-p>This work is licensed under a Creative Commons Attribution-ShareAlike 4.0 International License (CC BY-SA 4.0)</license-p>
        </license>
      </permissions>
    </article-meta>
  </front>
  <body id="body">
{{- range .Sections}}
    <sec sec-type="{{xml .Type}}">
      <title>{{xml .Title}}</title>
      <p>
{{- if .IsComparison}}
        <table-wrap>
          <label>{{xml .LinkLabel}}</label>
          <caption>
            <title>{{xml .Description}}</title>
          </caption>
          {{.Table}}
        </table-wrap>
{{- else if .IsVisualization}}Visualization can be viewed via <a href="https://orkg.org/resource/{{xml .LinkID}}">the ORKG website</a>.
{{- else if .IsEntity}}
        <table-wrap>
          <label>{{xml .Title}}</label>
          <caption>
            <title>{{xml .LinkLabel}}</title>
          </caption>
          <table>
            <thead>
              <tr>
                <th>Property</th>
                <th>Value</th>
              </tr>
            </thead>
            <tbody>
{{- range .Rows}}
              <tr>
                <td>{{xml (index . 0)}}</td>
                <td>{{xml (index . 1)}}</td>
              </tr>
{{- end}}
            </tbody>
          </table>
        </table-wrap>
{{- else}}{{xml .Text}}{{end}}</p>
    </sec>
{{- end}}
  </body>
</article>
`))
