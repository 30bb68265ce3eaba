package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/simcomp/internal/config"
	"github.com/agenthands/simcomp/internal/logger"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown := InitTracing(context.Background(), config.TracingConfig{}, "test", logger.Nop())
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracer_NoopWithoutProvider(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "compare")
	defer span.End()
	assert.NotNil(t, span)
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 1.0, clampRatio(3))
	assert.Equal(t, 0.25, clampRatio(0.25))
}
