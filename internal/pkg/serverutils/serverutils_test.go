package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Question  string `json:"question" validate:"notblank"`
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr bool
		field   string
	}{
		{name: "valid", req: sampleRequest{SessionID: "s1", Question: "why?"}},
		{name: "missing session", req: sampleRequest{Question: "why?"}, wantErr: true, field: "session_id"},
		{name: "blank question", req: sampleRequest{SessionID: "s1", Question: "   "}, wantErr: true, field: "question"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			appErr, ok := AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, 400, appErr.Code)
			assert.Equal(t, KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Detail, tt.field)
		})
	}
}

func decodeBody(t *testing.T, body io.Reader) ErrorBody {
	t.Helper()
	var out ErrorBody
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantType string
	}{
		{name: "not found", err: NewNotFoundError("Session not found"), wantCode: 404, wantType: KindNotFound},
		{name: "wrapped configuration", err: fmt.Errorf("init: %w", NewConfigurationError("Database not configured", nil)), wantCode: 500, wantType: KindConfiguration},
		{name: "upstream", err: NewUpstreamError("Analysis failed", errors.New("quota")), wantCode: 502, wantType: KindUpstream},
		{name: "fiber error", err: fiber.ErrMethodNotAllowed, wantCode: 405},
		{name: "plain error", err: errors.New("boom"), wantCode: 500, wantType: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/", func(ctx *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			body := decodeBody(t, resp.Body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantType, body.ErrorType)
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	api := app.Group("/api", ErrorHandlerMiddleware())
	api.Get("/session/:id/context", func(ctx *fiber.Ctx) error {
		return NewNotFoundError("Session context not initialized")
	})
	api.Get("/ok", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", true))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/session/sess-1/context", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, KindNotFound, body.ErrorType)
	assert.Equal(t, "Session context not initialized", body.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
