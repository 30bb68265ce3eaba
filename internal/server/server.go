package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/agenthands/simcomp/internal/apierr"
	"github.com/agenthands/simcomp/internal/core"
	"github.com/agenthands/simcomp/internal/core/compare"
	"github.com/agenthands/simcomp/internal/core/export"
	"github.com/agenthands/simcomp/internal/logger"
	"github.com/agenthands/simcomp/internal/thing"
)

type Server struct {
	SimComp   *core.SimComp
	Things    *thing.Service
	APIPrefix string
	log       *logger.Logger
}

func NewServer(simComp *core.SimComp, things *thing.Service, apiPrefix string, log *logger.Logger) *Server {
	return &Server{
		SimComp:   simComp,
		Things:    things,
		APIPrefix: apiPrefix,
		log:       log.With("component", "server"),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware("simcomp"), CORS(), RequestLogger(s.log))

	api := r.Group("/" + strings.Trim(s.APIPrefix, "/"))
	api.GET("/health", s.Health)
	api.GET("/contribution/compare", s.CompareContributions)
	api.GET("/contribution/", s.ListContributions)

	things := api.Group("/thing")
	things.POST("/", s.AddThing)
	things.GET("/", s.GetThing)
	things.GET("/export", s.ExportThing)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// contributionIDs reads repeated contributions parameters, each of which may
// also hold a comma separated list.
func contributionIDs(c *gin.Context) []string {
	var ids []string
	for _, v := range c.QueryArray("contributions") {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (s *Server) CompareContributions(c *gin.Context) {
	ids := contributionIDs(c)
	typ := compare.Type(c.DefaultQuery("type", string(compare.TypePath)))
	format := export.Format(strings.ToUpper(c.Query("format")))

	res, err := s.SimComp.Compare(c.Request.Context(), ids, typ, format)
	if err != nil {
		respondError(c, err)
		return
	}

	if res.Artifact == nil {
		respondJSON(c, http.StatusOK, gin.H{"comparison": res.Comparison})
		return
	}
	if res.Artifact.Format == export.FormatCSV {
		respondCSV(c, res.Filename, res.Artifact.Text)
		return
	}
	respondJSON(c, http.StatusOK, res.Artifact.Payload())
}

func (s *Server) ListContributions(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"contributions": s.SimComp.ContributionIDs(c.Request.Context())})
}

type AddThingRequest struct {
	ThingType string         `json:"thing_type"`
	ThingKey  string         `json:"thing_key"`
	Data      map[string]any `json:"data"`
	Config    map[string]any `json:"config"`
}

func (s *Server) AddThing(c *gin.Context) {
	var req AddThingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.BadRequest("server.AddThing", "Invalid request: %v", err))
		return
	}
	thingType, err := thing.ParseType(req.ThingType)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := s.Things.Add(c.Request.Context(), thingType, req.ThingKey, req.Data, req.Config); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, nil)
}

func (s *Server) GetThing(c *gin.Context) {
	thingType, err := thing.ParseType(c.Query("thing_type"))
	if err != nil {
		respondError(c, err)
		return
	}

	t, err := s.Things.Get(c.Request.Context(), thingType, c.Query("thing_key"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"thing": t})
}

func (s *Server) ExportThing(c *gin.Context) {
	thingType, err := thing.ParseType(c.Query("thing_type"))
	if err != nil {
		respondError(c, err)
		return
	}
	thingKey := c.Query("thing_key")
	format := export.Format(strings.ToUpper(c.Query("format")))
	likeUI := false
	if v := c.Query("like_ui"); v != "" {
		if likeUI, err = strconv.ParseBool(v); err != nil {
			respondError(c, apierr.BadRequest("server.ExportThing", "Invalid like_ui=%q", v))
			return
		}
	}

	artifact, err := s.Things.Export(c.Request.Context(), thingType, thingKey, format, likeUI)
	if err != nil {
		respondError(c, err)
		return
	}
	if artifact.Format == export.FormatCSV {
		respondCSV(c, strings.ToLower(string(thingType))+"_"+thingKey+".csv", artifact.Text)
		return
	}
	if artifact.Format == export.FormatXML {
		respondRaw(c, artifact.ContentType(), artifact.Text)
		return
	}
	respondJSON(c, http.StatusOK, artifact.Payload())
}
