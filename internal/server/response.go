package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/simcomp/internal/apierr"
)

// Envelope wraps every JSON payload.
type Envelope struct {
	Timestamp time.Time `json:"timestamp"`
	UUID      uuid.UUID `json:"uuid"`
	Payload   any       `json:"payload"`
}

// ErrorBody names the component that failed and why.
type ErrorBody struct {
	Location string `json:"location"`
	Detail   string `json:"detail"`
}

func respondJSON(c *gin.Context, status int, payload any) {
	c.JSON(status, Envelope{
		Timestamp: time.Now().UTC(),
		UUID:      uuid.New(),
		Payload:   payload,
	})
}

func respondCSV(c *gin.Context, filename, body string) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", []byte(body))
}

func respondRaw(c *gin.Context, contentType, body string) {
	c.Data(http.StatusOK, contentType, []byte(body))
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	body := ErrorBody{Location: "server", Detail: err.Error()}
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		body.Location = apiErr.Code
	}
	c.AbortWithStatusJSON(apierr.StatusOf(err), body)
}
