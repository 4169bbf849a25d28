package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "notify-test",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.Nil(t, tp.provider)

	// Shutdown on a disabled provider is a no-op
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	// Requires a collector listening on the endpoint
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tp, err := NewTracerProvider(context.Background(), Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "notify-test",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp.provider)

	assert.NoError(t, tp.Shutdown(context.Background()))
}
