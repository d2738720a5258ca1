package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.Annotations.WithLabelValues("ok").Add(2)
	m.Analyses.WithLabelValues("success").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Annotations.WithLabelValues("ok")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `filinglens_annotations_total{outcome="ok"} 2`)
	assert.Contains(t, string(body), `filinglens_analyses_total{result="success"} 1`)
}

func TestSetupTracingStdout(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := SetupTracing("stdout", &buf)
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "unit")
	span.End()
	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"unit"`)

	shutdown, err = SetupTracing("none", nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = SetupTracing("jaeger", nil)
	assert.Error(t, err)
}
