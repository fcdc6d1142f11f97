package feishu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

// Plugin wires the Feishu channel components over a host runtime.
type Plugin struct {
	logger    *slog.Logger
	runtime   plugin.Runtime
	clients   *ClientManager
	sender    *Sender
	prober    *Prober
	monitor   *Monitor
	status    *statusTracker
	heartbeat *Heartbeat

	mu    sync.Mutex
	stops map[string]plugin.StopFunc
}

// New assembles the plugin from a host runtime.
func New(runtime plugin.Runtime) *Plugin {
	log := runtime.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("channel", ChannelID))

	p := &Plugin{
		logger:  log,
		runtime: runtime,
		status:  newStatusTracker(),
		stops:   make(map[string]plugin.StopFunc),
	}
	p.clients = NewClientManager(log)
	p.sender = NewSender(log, p.clients, p.section)
	p.prober = NewProber(log, p.clients)
	p.monitor = newMonitor(log, runtime.Messages, runtime.Webhooks, p.status)
	p.heartbeat = newHeartbeat(log, p.prober, p.status, p.section)
	return p
}

func (p *Plugin) section() *config.Section {
	return p.runtime.Config.Tree().FeishuSection()
}

// Descriptor returns the channel descriptor registered with the host.
func (p *Plugin) Descriptor() plugin.ChannelPlugin {
	return plugin.ChannelPlugin{
		ID:          ChannelID,
		DisplayName: DisplayName,
		Meta: plugin.Meta{
			Label:          "飞书",
			SelectionLabel: "飞书（Lark/Feishu）",
			DetailLabel:    "飞书机器人",
			DocsPath:       "/channels/feishu",
		},
		Capabilities: plugin.Capabilities{
			ChatTypes: []plugin.ChatType{plugin.ChatTypeDirect, plugin.ChatTypeGroup},
			Media:     true,
		},
		ReloadPrefixes: []string{"channels.feishu"},
		ConfigSchema:   config.Validate,
		Config: plugin.ConfigHooks{
			ListAccountIDs:    config.ListAccountIDs,
			ResolveAccount:    config.ResolveAccount,
			DefaultAccountID:  defaultAccountID,
			SetAccountEnabled: config.SetAccountEnabled,
			DeleteAccount:     config.DeleteAccount,
			IsConfigured: func(account config.ResolvedAccount) bool {
				return account.HasCredentials()
			},
			DescribeAccount: func(account config.ResolvedAccount) plugin.AccountDescription {
				return plugin.AccountDescription{
					AccountID:  account.AccountID,
					Name:       account.Name,
					Enabled:    account.Enabled,
					Configured: account.HasCredentials(),
				}
			},
		},
		Security: plugin.SecurityHooks{
			ResolveDMPolicy: func(config.ResolvedAccount) plugin.DMPolicy {
				return plugin.DMPolicy{
					Policy:        "open",
					AllowFrom:     []string{},
					AllowFromPath: "channels.feishu.dm.",
					ApproveHint:   "Feishu bots accept messages from any user in the tenant",
				}
			},
			CollectWarnings: func(*config.Section) []string { return nil },
		},
		Outbound: plugin.OutboundHooks{
			TextChunkLimit: TextChunkLimit,
			SendText:       p.SendText,
			SendMedia:      p.SendMedia,
		},
		Status: plugin.StatusHooks{
			ProbeAccount:         p.ProbeAccount,
			BuildAccountSnapshot: buildAccountSnapshot,
			BuildChannelSummary:  buildChannelSummary,
		},
		Gateway: plugin.GatewayHooks{
			StartAccount: p.StartAccount,
		},
		Setup: plugin.SetupHooks{
			ResolveAccountID:   config.NormalizeAccountID,
			ValidateInput:      config.ValidateSetupInput,
			ApplyAccountName:   config.ApplyAccountName,
			ApplyAccountConfig: config.ApplyAccountConfig,
		},
	}
}

// defaultAccountID picks the account the host targets when none is named.
func defaultAccountID(section *config.Section) string {
	ids := config.ListAccountIDs(section)
	for _, id := range ids {
		if id == config.DefaultAccountID {
			return config.DefaultAccountID
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return config.DefaultAccountID
}

// SendText delivers plain text on behalf of one account.
func (p *Plugin) SendText(ctx context.Context, accountID, target, text string) (plugin.SendResult, error) {
	result, err := p.sender.SendText(ctx, accountID, target, text)
	if err == nil {
		p.status.markOutbound(config.NormalizeAccountID(accountID))
	}
	return result, err
}

// SendMedia delivers text with a media reference on behalf of one account.
func (p *Plugin) SendMedia(ctx context.Context, accountID, target, text string, media plugin.Media) (plugin.SendResult, error) {
	result, err := p.sender.SendMedia(ctx, accountID, target, text, media)
	if err == nil {
		p.status.markOutbound(config.NormalizeAccountID(accountID))
	}
	return result, err
}

// ProbeAccount checks one account's credentials.
func (p *Plugin) ProbeAccount(ctx context.Context, account config.ResolvedAccount, timeout time.Duration) plugin.ProbeResult {
	result := p.prober.ProbeAccount(ctx, account, timeout)
	p.status.setProbe(account.AccountID, result)
	return result
}

// StartAccount brings up the listener for one account.
func (p *Plugin) StartAccount(ctx context.Context, account config.ResolvedAccount) (plugin.StopFunc, error) {
	stop, err := p.monitor.StartAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.stops[account.AccountID] = stop
	p.mu.Unlock()
	return stop, nil
}

// StartEnabledAccounts starts every enabled configured account, used by the
// standalone gateway. Accounts that fail to start are logged and skipped.
func (p *Plugin) StartEnabledAccounts(ctx context.Context) int {
	started := 0
	for _, account := range config.ResolveEnabledAccounts(p.section()) {
		if !account.HasCredentials() {
			p.logger.Warn("account not configured; skipping", slog.String("account_id", account.AccountID))
			continue
		}
		if _, err := p.StartAccount(ctx, account); err != nil {
			p.logger.Error("start account failed", slog.String("account_id", account.AccountID), slog.Any("error", err))
			continue
		}
		started++
	}
	return started
}

// StartHeartbeat schedules the periodic credential probe.
func (p *Plugin) StartHeartbeat(schedule string) error {
	return p.heartbeat.Start(schedule)
}

// AccountSnapshots reports status for every configured account.
func (p *Plugin) AccountSnapshots() []plugin.AccountSnapshot {
	section := p.section()
	var snapshots []plugin.AccountSnapshot
	for _, id := range config.ListAccountIDs(section) {
		account := config.ResolveAccount(section, id)
		probe, probedAt := p.status.probe(id)
		snapshot := buildAccountSnapshot(account, p.status.runtimeStatus(id), probe)
		snapshot.LastProbeAt = probedAt
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

// Stop tears down every running listener, the heartbeat, and the client
// cache.
func (p *Plugin) Stop(ctx context.Context) error {
	if err := p.heartbeat.Stop(ctx); err != nil {
		return fmt.Errorf("stop heartbeat: %w", err)
	}
	p.mu.Lock()
	stops := p.stops
	p.stops = make(map[string]plugin.StopFunc)
	p.mu.Unlock()
	for accountID, stop := range stops {
		if err := stop(ctx); err != nil {
			p.logger.Error("stop account failed", slog.String("account_id", accountID), slog.Any("error", err))
		}
	}
	p.clients.Clear()
	return nil
}
