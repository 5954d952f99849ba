package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mealmate-bot/mealmate/internal/bot"
	"github.com/mealmate-bot/mealmate/internal/config"
	"github.com/mealmate-bot/mealmate/internal/gemini"
)

const testChannelSecret = "test-channel-secret"

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	return "reply to: " + prompt, nil
}

// captureMessenger signals on a channel when a reply is dispatched, since
// webhook processing happens after the HTTP response is written.
type captureMessenger struct {
	replies chan string
}

func (m *captureMessenger) ReplyText(_ context.Context, _, text string) error {
	m.replies <- text
	return nil
}

func newTestServer(t *testing.T) (*Server, *captureMessenger) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	messenger := &captureMessenger{replies: make(chan string, 8)}
	router := bot.NewRouter(bot.Deps{
		Logger:    log,
		Config:    &config.Config{Bot: config.BotConfig{StalenessThreshold: time.Minute}},
		Messenger: messenger,
		Gateway:   gemini.NewGateway(echoGenerator{}, "fallback", log),
	})

	srv := New(config.ServerConfig{Addr: ":0"}, testChannelSecret, router, log)
	return srv, messenger
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(srv *Server, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Line-Signature", signature)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func textMessageDelivery(text string) []byte {
	return fmt.Appendf(nil, `{
		"destination": "Uabcdef",
		"events": [{
			"type": "message",
			"mode": "active",
			"timestamp": %d,
			"webhookEventId": "evt1",
			"deliveryContext": {"isRedelivery": false},
			"source": {"type": "user", "userId": "U1"},
			"replyToken": "tok1",
			"message": {"type": "text", "id": "m1", "text": %q}
		}]
	}`, time.Now().UnixMilli(), text)
}

func TestWebhookAcknowledgesAndReplies(t *testing.T) {
	t.Parallel()

	srv, messenger := newTestServer(t)
	body := textMessageDelivery("hello there")

	rec := postWebhook(srv, body, sign(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for a verified delivery", rec.Code)
	}

	select {
	case reply := <-messenger.replies:
		if !strings.Contains(reply, "hello there") {
			t.Errorf("reply %q does not derive from the inbound text", reply)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reply dispatched after acknowledging the delivery")
	}
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	t.Parallel()

	srv, messenger := newTestServer(t)
	body := textMessageDelivery("hello")

	rec := postWebhook(srv, body, "bm90LWEtcmVhbC1zaWduYXR1cmU=")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a bad signature", rec.Code)
	}

	select {
	case reply := <-messenger.replies:
		t.Errorf("unexpected reply %q for a rejected delivery", reply)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	body := []byte("not json at all")

	rec := postWebhook(srv, body, sign(body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a malformed body", rec.Code)
	}
}

func TestWebhookEmptyEventBatch(t *testing.T) {
	t.Parallel()

	srv, messenger := newTestServer(t)
	body := []byte(`{"destination": "Uabcdef", "events": []}`)

	rec := postWebhook(srv, body, sign(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for an empty verified batch", rec.Code)
	}

	select {
	case reply := <-messenger.replies:
		t.Errorf("unexpected reply %q for an empty batch", reply)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
