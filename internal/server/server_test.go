package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/simcomp/internal/backend"
	"github.com/agenthands/simcomp/internal/config"
	"github.com/agenthands/simcomp/internal/core"
	"github.com/agenthands/simcomp/internal/core/model"
	"github.com/agenthands/simcomp/internal/core/text"
	"github.com/agenthands/simcomp/internal/logger"
	"github.com/agenthands/simcomp/internal/thing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, prefix string) *gin.Engine {
	t.Helper()
	b := backend.NewFixtureBackend()
	b.SetPaperYear("paper", "2020")
	for _, id := range []string{"123", "234"} {
		g := model.NewSubgraph(id)
		g.AddNode(model.Node{ID: id, Label: "Contribution " + id, Class: "resource"})
		g.AddNode(model.Node{ID: id + "_v", Label: "Value " + id, Class: "literal"})
		g.AddEdge(id, id+"_v", "P1", "uses")
		b.AddContribution(id, &backend.ContributionDetails{Label: "Contribution " + id, PaperID: "paper", PaperLabel: "Paper"}, g)
	}

	dbCfg := config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}
	db, err := thing.Open(dbCfg, logger.Nop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	simComp := core.NewSimComp(b, config.Default().Comparison, text.English(), logger.Nop())
	things := thing.NewService(thing.NewStore(db, logger.Nop()), false, logger.Nop())
	return NewServer(simComp, things, prefix, logger.Nop()).SetupRouter()
}

func do(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	UUID    string          `json:"uuid"`
	Payload json.RawMessage `json:"payload"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.NotEmpty(t, env.UUID)
	return env
}

func decodeComparison(t *testing.T, w *httptest.ResponseRecorder) model.Comparison {
	t.Helper()
	var payload struct {
		Comparison *model.Comparison `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Payload, &payload))
	require.NotNil(t, payload.Comparison, "payload has no comparison")
	return *payload.Comparison
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t, ""), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCompare_JSON(t *testing.T) {
	r := newTestRouter(t, "")
	w := do(r, http.MethodGet, "/contribution/compare?contributions=123&contributions=234", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Payload, &raw))
	assert.Len(t, raw, 1)
	assert.Contains(t, raw, "comparison")

	c := decodeComparison(t, w)
	require.Len(t, c.Contributions, 2)
	require.Len(t, c.Predicates, 1)
	assert.Equal(t, "uses", c.Predicates[0].ID)
	assert.True(t, c.Predicates[0].Active)
	assert.Equal(t, "value 123", c.Data["uses"][0][0].Label)
}

func TestCompare_CommaSeparatedMerge(t *testing.T) {
	r := newTestRouter(t, "")
	w := do(r, http.MethodGet, "/contribution/compare?contributions=123,234&type=merge", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	c := decodeComparison(t, w)
	require.Len(t, c.Predicates, 1)
	assert.Equal(t, "P1", c.Predicates[0].ID)
	assert.Equal(t, "Value 234", c.Data["P1"][1][0].Label)
}

func TestCompare_CSV(t *testing.T) {
	r := newTestRouter(t, "")
	w := do(r, http.MethodGet, "/contribution/compare?contributions=123&contributions=234&format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=123_234.csv", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), ",Paper/Contribution 123,Paper/Contribution 234\n"))
}

func TestCompare_Errors(t *testing.T) {
	r := newTestRouter(t, "")

	w := do(r, http.MethodGet, "/contribution/compare?contributions=123&type=FOO", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "compare.Strategies", body.Location)
	assert.Equal(t, "Unknown comparison_type=FOO", body.Detail)

	w = do(r, http.MethodGet, "/contribution/compare?contributions=123&format=xml", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestListContributions(t *testing.T) {
	w := do(newTestRouter(t, ""), http.MethodGet, "/contribution/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contributions":["123","234"]}`, string(decodeEnvelope(t, w).Payload))
}

func TestThingLifecycle(t *testing.T) {
	r := newTestRouter(t, "/api/")

	comparison := map[string]any{
		"contributions": []any{map[string]any{"id": "1", "label": "C", "paper_id": "p", "paper_label": "P", "paper_year": ""}},
		"predicates":    []any{map[string]any{"id": "P1", "label": "uses", "n_contributions": 1, "active": false}},
		"data":          map[string]any{"P1": []any{[]any{map[string]any{"id": "v", "label": "x", "type": "literal"}}}},
	}
	req := map[string]any{"thing_type": "COMPARISON", "thing_key": "R1", "data": comparison, "config": map[string]any{}}

	w := do(r, http.MethodPost, "/api/thing/", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/thing/", req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodGet, "/api/thing/?thing_type=COMPARISON&thing_key=R1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Thing thing.Thing `json:"thing"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Payload, &payload))
	assert.Equal(t, "R1", payload.Thing.ThingKey)
	assert.Equal(t, thing.TypeComparison, payload.Thing.ThingType)

	w = do(r, http.MethodGet, "/api/thing/export?thing_type=COMPARISON&thing_key=R1&format=CSV", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=comparison_R1.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, ",P/C\nuses,x\n", w.Body.String())

	w = do(r, http.MethodGet, "/api/thing/export?thing_type=COMPARISON&thing_key=R1&format=DATAFRAME", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"columns":["P/C"],"index":["uses"],"data":[["x"]]}`, string(decodeEnvelope(t, w).Payload))
}

func TestThingErrors(t *testing.T) {
	r := newTestRouter(t, "")

	w := do(r, http.MethodGet, "/thing/?thing_type=COMPARISON&thing_key=missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/thing/?thing_type=BOGUS&thing_key=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/thing/", map[string]any{"thing_type": "UNKNOWN", "thing_key": "x", "data": map[string]any{"a": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/thing/", map[string]any{"thing_type": "LIST", "thing_key": "x", "data": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/thing/", map[string]any{"thing_type": "LIST", "thing_key": "x", "data": map[string]any{"a": 1}})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(r, http.MethodGet, "/thing/export?thing_type=LIST&thing_key=x&format=CSV", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(r, http.MethodGet, "/thing/export?thing_type=LIST&thing_key=x&format=CSV&like_ui=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestThingExport_ReviewXML(t *testing.T) {
	r := newTestRouter(t, "")

	root := map[string]any{"id": "R1", "label": "Review", "classes": []any{"SmartReview"}, "created_at": "2022-05-06T00:00:00Z"}
	review := map[string]any{
		"root_review_id": "R1",
		"statements": []any{
			map[string]any{"id": "s1", "subject": root, "predicate": map[string]any{"id": "P30", "label": "field"}, "object": map[string]any{"id": "F1", "label": "Physics"}},
		},
	}
	w := do(r, http.MethodPost, "/thing/", map[string]any{"thing_type": "REVIEW", "thing_key": "R1", "data": review})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/thing/export?thing_type=REVIEW&thing_key=R1&format=XML", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, w.Body.String(), "<subject>Physics</subject>")
	assert.Contains(t, w.Body.String(), "<year>2022</year>")

	w = do(r, http.MethodGet, "/thing/export?thing_type=REVIEW&thing_key=R1&format=CSV", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
