package plugin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestWebhookRegistryRegisterAndDispatch(t *testing.T) {
	t.Parallel()

	registry := NewWebhookRegistry()
	err := registry.Register("/feishu/events", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/feishu/events", nil)
	rec := httptest.NewRecorder()
	if err := registry.Dispatch(e.NewContext(req, rec)); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestWebhookRegistryRejectsDuplicatePath(t *testing.T) {
	t.Parallel()

	registry := NewWebhookRegistry()
	noop := func(c echo.Context) error { return nil }
	if err := registry.Register("/feishu/events", noop); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := registry.Register("/feishu/events", noop); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestWebhookRegistryUnregister(t *testing.T) {
	t.Parallel()

	registry := NewWebhookRegistry()
	noop := func(c echo.Context) error { return nil }
	if err := registry.Register("/feishu/events", noop); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	registry.Unregister("/feishu/events")
	if _, ok := registry.Handler("/feishu/events"); ok {
		t.Fatal("expected path removed")
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/feishu/events", nil)
	rec := httptest.NewRecorder()
	err := registry.Dispatch(e.NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
