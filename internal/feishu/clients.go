package feishu

import (
	"fmt"
	"log/slog"
	"sync"

	lark "github.com/larksuite/oapi-sdk-go/v3"

	"github.com/openclaw/openclaw-feishu/internal/config"
)

// ClientManager caches one Lark API client per account id. Clients are keyed
// by account id alone: a credential change does not refresh a cached client
// until RemoveClient or Clear is called.
type ClientManager struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*lark.Client
}

// NewClientManager creates an empty client cache.
func NewClientManager(log *slog.Logger) *ClientManager {
	if log == nil {
		log = slog.Default()
	}
	return &ClientManager{
		logger:  log.With(slog.String("component", "feishu_clients")),
		clients: make(map[string]*lark.Client),
	}
}

// GetClient returns the cached client for the account, creating it on first
// use. Accounts without credentials fail with ErrCredentialsMissing.
func (m *ClientManager) GetClient(account config.ResolvedAccount) (*lark.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if client, ok := m.clients[account.AccountID]; ok {
		return client, nil
	}
	if !account.HasCredentials() {
		return nil, fmt.Errorf("account %s: %w", account.AccountID, ErrCredentialsMissing)
	}
	m.logger.Debug("creating lark client", slog.String("account_id", account.AccountID))
	client := lark.NewClient(account.AppID, account.AppSecret)
	m.clients[account.AccountID] = client
	return client, nil
}

// RemoveClient drops the cached client for one account.
func (m *ClientManager) RemoveClient(accountID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, accountID)
}

// Clear drops every cached client.
func (m *ClientManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients = make(map[string]*lark.Client)
}
