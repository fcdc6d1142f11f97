package feishu

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

type fakeIntake struct {
	mu       sync.Mutex
	messages []plugin.IncomingMessage
	received chan struct{}
	err      error
}

func newFakeIntake() *fakeIntake {
	return &fakeIntake{received: make(chan struct{}, 16)}
}

func (f *fakeIntake) Incoming(_ context.Context, msg plugin.IncomingMessage) error {
	f.mu.Lock()
	f.messages = append(f.messages, msg)
	f.mu.Unlock()
	f.received <- struct{}{}
	return f.err
}

func (f *fakeIntake) wait(t *testing.T) plugin.IncomingMessage {
	t.Helper()
	select {
	case <-f.received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbound message")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[len(f.messages)-1]
}

func newTestMonitor(intake plugin.MessageIntake) (*Monitor, *plugin.WebhookRegistry) {
	registry := plugin.NewWebhookRegistry()
	return newMonitor(nil, intake, registry, newStatusTracker()), registry
}

func webhookAccount(verificationToken string) config.ResolvedAccount {
	return config.ResolvedAccount{
		AccountID:         "default",
		AppID:             "cli_a",
		AppSecret:         "s_a",
		VerificationToken: verificationToken,
		EventURL:          "https://bot.example.com/feishu/events",
	}
}

func postWebhook(t *testing.T, registry *plugin.WebhookRegistry, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	handler, ok := registry.Handler(WebhookPath)
	if !ok {
		t.Fatal("webhook path not registered")
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, handler(e.NewContext(req, rec))
}

func TestStartAccountRequiresCredentials(t *testing.T) {
	t.Parallel()

	monitor, _ := newTestMonitor(newFakeIntake())
	_, err := monitor.StartAccount(context.Background(), config.ResolvedAccount{AccountID: "default"})
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("expected ErrCredentialsMissing, got %v", err)
	}
}

func TestStartAccountWebhookRegistersPath(t *testing.T) {
	t.Parallel()

	monitor, registry := newTestMonitor(newFakeIntake())
	stop, err := monitor.StartAccount(context.Background(), webhookAccount("verify-token"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := registry.Handler(WebhookPath); !ok {
		t.Fatal("expected webhook path registered")
	}
	if err := stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if _, ok := registry.Handler(WebhookPath); ok {
		t.Fatal("expected webhook path unregistered after stop")
	}
	// Stop is idempotent.
	if err := stop(context.Background()); err != nil {
		t.Fatalf("second stop failed: %v", err)
	}
}

func TestStartAccountWebhookDuplicatePath(t *testing.T) {
	t.Parallel()

	monitor, _ := newTestMonitor(newFakeIntake())
	stop, err := monitor.StartAccount(context.Background(), webhookAccount("verify-token"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = stop(context.Background()) }()

	second := webhookAccount("verify-token")
	second.AccountID = "support"
	if _, err := monitor.StartAccount(context.Background(), second); err == nil {
		t.Fatal("expected duplicate webhook registration to fail")
	}
}

func TestWebhookURLVerification(t *testing.T) {
	t.Parallel()

	monitor, registry := newTestMonitor(newFakeIntake())
	stop, err := monitor.StartAccount(context.Background(), webhookAccount("verify-token"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = stop(context.Background()) }()

	body := `{"schema":"2.0","header":{"event_type":"im.message.receive_v1","token":"verify-token"},"type":"url_verification","challenge":"hello"}`
	rec, err := postWebhook(t, registry, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"challenge":"hello"`) {
		t.Fatalf("unexpected challenge response: %s", rec.Body.String())
	}
}

func TestWebhookEventCallbackForwardsInbound(t *testing.T) {
	t.Parallel()

	intake := newFakeIntake()
	monitor, registry := newTestMonitor(intake)
	stop, err := monitor.StartAccount(context.Background(), webhookAccount("verify-token"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = stop(context.Background()) }()

	body := `{"schema":"2.0","header":{"event_id":"evt_1","event_type":"im.message.receive_v1","token":"verify-token"},"event":{"sender":{"sender_id":{"open_id":"ou_user_1"}},"message":{"message_id":"om_1","chat_id":"oc_1","chat_type":"p2p","message_type":"text","content":"{\"text\":\"hello\"}"}},"type":"event_callback"}`
	rec, err := postWebhook(t, registry, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
	msg := intake.wait(t)
	if msg.Text != "hello" || msg.ChatType != plugin.ChatTypeDirect {
		t.Fatalf("unexpected message: %#v", msg)
	}
	if msg.AccountID != "default" || msg.ChannelID != "oc_1" {
		t.Fatalf("unexpected envelope: %#v", msg)
	}
}

func TestWebhookRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	intake := newFakeIntake()
	monitor, registry := newTestMonitor(intake)
	stop, err := monitor.StartAccount(context.Background(), webhookAccount("verify-token"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = stop(context.Background()) }()

	body := `{"schema":"2.0","header":{"event_id":"evt_1","event_type":"im.message.receive_v1","token":"forged-token"},"event":{"sender":{"sender_id":{"open_id":"ou_user_1"}},"message":{"message_id":"om_1","chat_id":"oc_1","chat_type":"p2p","message_type":"text","content":"{\"text\":\"hello\"}"}},"type":"event_callback"}`
	_, err = postWebhook(t, registry, body)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestWebhookRequiresVerificationToken(t *testing.T) {
	t.Parallel()

	monitor, registry := newTestMonitor(newFakeIntake())
	stop, err := monitor.StartAccount(context.Background(), webhookAccount(""))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = stop(context.Background()) }()

	body := `{"schema":"2.0","header":{"event_id":"evt_1","event_type":"im.message.receive_v1","token":"verify-token"},"event":{},"type":"event_callback"}`
	_, err = postWebhook(t, registry, body)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestWebhookRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	monitor, registry := newTestMonitor(newFakeIntake())
	stop, err := monitor.StartAccount(context.Background(), webhookAccount("verify-token"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = stop(context.Background()) }()

	_, err = postWebhook(t, registry, strings.Repeat("x", int(webhookMaxBodyBytes)+1))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected payload-too-large, got %v", err)
	}
}
