package app

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWTSecret = "test-secret"
	return cfg
}

func TestBuildDependencies_MemoryFallback(t *testing.T) {
	deps, err := BuildDependencies(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	require.NotNil(t, deps.Handler)
	require.NotNil(t, deps.Health)
	require.NotNil(t, deps.Metrics)
	// Без брокеров outbox-воркер не создаётся.
	require.Nil(t, deps.OutboxWorker)
}

func TestBuildDependencies_ServesSeededCatalog(t *testing.T) {
	deps, err := BuildDependencies(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	server := httptest.NewServer(deps.Handler.Router())
	t.Cleanup(server.Close)

	resp, err := server.Client().Get(server.URL + "/api/products")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Greater(t, list.Total, 0)
}

func TestBuildDependencies_HealthEndpoint(t *testing.T) {
	deps, err := BuildDependencies(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	server := httptest.NewServer(deps.Health)
	t.Cleanup(server.Close)

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Status string                     `json:"status"`
		Checks map[string]json.RawMessage `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "healthy", body.Status)
	require.Contains(t, body.Checks, "outbox")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.OpsAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
