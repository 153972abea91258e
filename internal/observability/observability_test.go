package observability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	QueriesTotal.WithLabelValues("types", OutcomeMatch).Inc()
	ResolveDuration.Observe(0.00002)

	path := filepath.Join(t.TempDir(), "typeextractor.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `typeextractor_queries_total{backend="types",outcome="match"}`)
	assert.Contains(t, out, "typeextractor_resolve_seconds_count")
}

func TestSetupTracing_NoEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	_, span := Tracer.Start(context.Background(), "test")
	span.End()
}
