package plugin

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// WebhookRegistry maps URL paths to plugin-owned HTTP handlers. The host
// mounts it under its public listener so webhook-mode accounts can receive
// platform callbacks without the plugin owning a server.
type WebhookRegistry struct {
	mu       sync.RWMutex
	handlers map[string]echo.HandlerFunc
}

// NewWebhookRegistry returns an empty registry.
func NewWebhookRegistry() *WebhookRegistry {
	return &WebhookRegistry{handlers: make(map[string]echo.HandlerFunc)}
}

// Register binds a handler to a path. Registering an already-bound path is
// an error so two accounts cannot silently shadow each other.
func (r *WebhookRegistry) Register(path string, handler echo.HandlerFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[path]; exists {
		return fmt.Errorf("webhook path already registered: %s", path)
	}
	r.handlers[path] = handler
	return nil
}

// Unregister removes a path binding. Unknown paths are ignored.
func (r *WebhookRegistry) Unregister(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, path)
}

// Handler returns the handler bound to path, if any.
func (r *WebhookRegistry) Handler(path string) (echo.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[path]
	return handler, ok
}

// Paths returns the currently bound paths.
func (r *WebhookRegistry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.handlers))
	for path := range r.handlers {
		paths = append(paths, path)
	}
	return paths
}

// Dispatch is an echo handler that routes requests to the registered
// handler for the request path, or 404s.
func (r *WebhookRegistry) Dispatch(c echo.Context) error {
	handler, ok := r.Handler(c.Request().URL.Path)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown webhook path")
	}
	return handler(c)
}
