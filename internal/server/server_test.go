package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"loan-assist-be/internal/bootstrap"
	"loan-assist-be/internal/config"
	"loan-assist-be/internal/controller"
	"loan-assist-be/internal/handler"
	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/internal/repository/memory"
	"loan-assist-be/internal/service"
	"loan-assist-be/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContainer() *bootstrap.Container {
	log := logger.NewNopLogger()
	contexts := memory.NewContextStore()
	hub := websocket.NewHub(contexts, nil, log)
	sessions := service.NewSessionService(service.SessionServiceDeps{
		Contexts: contexts,
		Teardown: hub,
		Logger:   log,
	})
	return &bootstrap.Container{
		SessionController: controller.NewSessionController(sessions),
		LoanController:    controller.NewLoanController(service.NewLoanService(nil, 0, log)),
		RealtimeHandler:   handler.NewRealtimeHandler(hub, sessions, log),
		Hub:               hub,
		ContextStore:      contexts,
	}
}

func TestHealth(t *testing.T) {
	srv := New(&config.Config{App: config.AppConfig{CorsAllowedOrigins: "*"}}, testContainer())

	resp, err := srv.GetApp().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestMetrics(t *testing.T) {
	srv := New(&config.Config{App: config.AppConfig{CorsAllowedOrigins: "*"}}, testContainer())

	resp, err := srv.GetApp().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(raw), "loan_assist_realtime_connections"))
}

func TestEndSessionWithoutDatabase(t *testing.T) {
	srv := New(&config.Config{App: config.AppConfig{CorsAllowedOrigins: "*"}}, testContainer())

	resp, err := srv.GetApp().Test(httptest.NewRequest("POST", "/api/session/sess-1/end", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestInitializeWithoutDatabase(t *testing.T) {
	srv := New(&config.Config{App: config.AppConfig{CorsAllowedOrigins: "*"}}, testContainer())

	req := httptest.NewRequest("POST", "/api/session/context", strings.NewReader(`{"session_id":"sess-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.GetApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `"error_type":"configuration_error"`)
}
