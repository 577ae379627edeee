package ingest

import (
	coreingest "ai-concierge/internal/core/ingest"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	res coreingest.Result
	err error
}

func (f fakeReader) Status(context.Context) (coreingest.Result, error) { return f.res, f.err }

func getStatus(t *testing.T, r StatusReader) (int, []byte) {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app, NewHandler(r))
	resp, err := app.Test(httptest.NewRequest("GET", "/api/ingest/status", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHandleStatus(t *testing.T) {
	code, body := getStatus(t, fakeReader{res: coreingest.Result{RunID: "r-1", Status: coreingest.StatusIngested, Documents: 28, Chunks: 28}})

	require.Equal(t, fiber.StatusOK, code)
	var payload struct {
		Message string            `json:"message"`
		Data    coreingest.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "ingest ingested", payload.Message)
	assert.Equal(t, 28, payload.Data.Documents)
}

func TestHandleStatus_StoreDown(t *testing.T) {
	code, body := getStatus(t, fakeReader{err: errors.New("mysql down")})

	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Contains(t, string(body), "AI-1005")
}
