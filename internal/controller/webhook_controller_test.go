package controller

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"lessonplan-bot-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return p.err
}

func newApp(pub *fakePublisher) *fiber.App {
	app := fiber.New()
	NewWebhookController(pub, logger.NewNopLogger()).RegisterRoutes(app)
	return app
}

func TestWebhook_AlwaysOK(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		pubErr     error
		wantQueued int
	}{
		{name: "text message", body: `{"update_id":1,"message":{"chat":{"id":5},"text":"/start"}}`, wantQueued: 1},
		{name: "malformed json", body: `{"update_id":`, wantQueued: 0},
		{name: "no message", body: `{"update_id":2,"edited_message":{}}`, wantQueued: 0},
		{name: "publish failure", body: `{"message":{"chat":{"id":5},"text":"hi"}}`, pubErr: errors.New("closed"), wantQueued: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{err: tt.pubErr}
			req := httptest.NewRequest("POST", "/webhook", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := newApp(pub).Test(req)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.JSONEq(t, `{"ok":true}`, string(body))
			assert.Len(t, pub.payloads, tt.wantQueued)
		})
	}
}

func TestWebhook_QueuesRawBody(t *testing.T) {
	pub := &fakePublisher{}
	body := `{"update_id":9,"message":{"chat":{"id":5},"document":{"file_id":"f","file_name":"a.pdf"}}}`

	_, err := newApp(pub).Test(httptest.NewRequest("POST", "/webhook", strings.NewReader(body)))
	require.NoError(t, err)

	require.Len(t, pub.payloads, 1)
	assert.JSONEq(t, body, string(pub.payloads[0]))
}

func TestHealth(t *testing.T) {
	app := newApp(&fakePublisher{})
	for _, path := range []string{"/", "/health"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"ok":true}`, string(body))
	}
}
