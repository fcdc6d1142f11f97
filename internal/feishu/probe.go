package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

const tenantTokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

type tokenExchanger interface {
	Exchange(ctx context.Context, appID, appSecret string) (code int, msg string, err error)
}

type larkTokenExchanger struct {
	clients *ClientManager
	account config.ResolvedAccount
}

func (e *larkTokenExchanger) Exchange(ctx context.Context, appID, appSecret string) (int, string, error) {
	client, err := e.clients.GetClient(e.account)
	if err != nil {
		return 0, "", err
	}
	resp, err := client.Post(ctx, tenantTokenPath, map[string]string{
		"app_id":     appID,
		"app_secret": appSecret,
	}, larkcore.AccessTokenTypeNone)
	if err != nil {
		return 0, "", err
	}
	var body struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(resp.RawBody, &body); err != nil {
		return 0, "", fmt.Errorf("parse token response: %w", err)
	}
	return body.Code, body.Msg, nil
}

// Prober checks account credentials by exchanging them for a tenant token.
type Prober struct {
	logger  *slog.Logger
	clients *ClientManager

	// exchangerFor overrides the token API in tests.
	exchangerFor func(account config.ResolvedAccount) tokenExchanger
}

// NewProber creates a Prober over the shared client cache.
func NewProber(log *slog.Logger, clients *ClientManager) *Prober {
	if log == nil {
		log = slog.Default()
	}
	p := &Prober{
		logger:  log.With(slog.String("component", "feishu_probe")),
		clients: clients,
	}
	p.exchangerFor = func(account config.ResolvedAccount) tokenExchanger {
		return &larkTokenExchanger{clients: clients, account: account}
	}
	return p
}

// ProbeAccount reports credential health. Failures are returned in the
// result, never as an error.
func (p *Prober) ProbeAccount(ctx context.Context, account config.ResolvedAccount, timeout time.Duration) plugin.ProbeResult {
	if !account.HasCredentials() {
		return plugin.ProbeResult{Error: "missing credentials"}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	code, msg, err := p.exchangerFor(account).Exchange(ctx, account.AppID, account.AppSecret)
	if err != nil {
		p.logger.Warn("probe failed", slog.String("account_id", account.AccountID), slog.Any("error", err))
		return plugin.ProbeResult{Error: err.Error()}
	}
	if code != 0 {
		p.logger.Warn("probe rejected",
			slog.String("account_id", account.AccountID),
			slog.Int("code", code),
			slog.String("msg", msg),
		)
		if msg == "" {
			msg = fmt.Sprintf("feishu auth failed (code: %d)", code)
		}
		return plugin.ProbeResult{Error: msg}
	}
	return plugin.ProbeResult{OK: true}
}
