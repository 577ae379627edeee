package chat

import (
	corechat "ai-concierge/internal/core/chat"
	"ai-concierge/internal/core/roster"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	students []roster.Student
	err      error
	question string
}

func (f *fakeAsker) Ask(_ context.Context, question string) ([]roster.Student, error) {
	f.question = question
	return f.students, f.err
}

func newApp(a Asker) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, NewHandler(a, 0))
	return app
}

func get(t *testing.T, app *fiber.App, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHandleChat_BothRoutesReturnSameRecords(t *testing.T) {
	want := []roster.Student{{Name: "나철롱", School: "광주서고", Phone: "000-1111-1111"}}
	a := &fakeAsker{students: want}
	app := newApp(a)

	for _, target := range []string{
		"/api/chat?question=" + url.QueryEscape("나철롱 연락처"),
		"/chat?req=" + url.QueryEscape("나철롱 연락처"),
	} {
		code, body := get(t, app, target)
		require.Equal(t, fiber.StatusOK, code, target)

		var got []roster.Student
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, want, got)
		assert.Equal(t, "나철롱 연락처", a.question)
	}
}

func TestHandleChat_MissingQuestion(t *testing.T) {
	code, body := get(t, newApp(&fakeAsker{}), "/api/chat")

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, string(body), "AI-1")
}

func TestHandleChat_Errors(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("decode: %w", corechat.ErrMalformedOutput), "AI-1001"},
		{errors.New("provider down"), "AI-1000"},
	}
	for _, tc := range cases {
		code, body := get(t, newApp(&fakeAsker{err: tc.err}), "/api/chat?question=x")

		assert.Equal(t, fiber.StatusInternalServerError, code)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, tc.code, payload["error_code"])
	}
}
