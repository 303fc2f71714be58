package handler

import (
	"context"
	"net/http/httptest"
	"testing"

	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/internal/repository/memory"
	internalWS "loan-assist-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopAnswerer struct{}

func (nopAnswerer) Answer(ctx context.Context, sessionID, question string) (string, error) {
	return "", nil
}

func TestServeWsRequiresUpgrade(t *testing.T) {
	hub := internalWS.NewHub(memory.NewContextStore(), nil, logger.NewNopLogger())
	h := NewRealtimeHandler(hub, nopAnswerer{}, logger.NewNopLogger())

	app := fiber.New()
	h.RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/sess-1", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
