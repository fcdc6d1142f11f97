package plugin

import (
	"context"
	"time"

	"github.com/openclaw/openclaw-feishu/internal/config"
)

// StopFunc tears down a running account listener.
type StopFunc func(ctx context.Context) error

// Meta carries the display strings the host shows for a channel.
type Meta struct {
	Label          string
	SelectionLabel string
	DetailLabel    string
	DocsPath       string
}

// Capabilities declares which platform features the channel supports.
type Capabilities struct {
	ChatTypes      []ChatType
	Reactions      bool
	Threads        bool
	Media          bool
	NativeCommands bool
}

// AccountDescription is the short account listing shown in setup flows.
type AccountDescription struct {
	AccountID  string `json:"accountId"`
	Name       string `json:"name,omitempty"`
	Enabled    bool   `json:"enabled"`
	Configured bool   `json:"configured"`
}

// ConfigHooks expose account enumeration and configuration edits. Mutation
// hooks are pure: they return a rewritten tree and never touch the input.
type ConfigHooks struct {
	ListAccountIDs    func(section *config.Section) []string
	ResolveAccount    func(section *config.Section, accountID string) config.ResolvedAccount
	DefaultAccountID  func(section *config.Section) string
	SetAccountEnabled func(tree *config.Tree, accountID string, enabled bool) *config.Tree
	DeleteAccount     func(tree *config.Tree, accountID string) *config.Tree
	IsConfigured      func(account config.ResolvedAccount) bool
	DescribeAccount   func(account config.ResolvedAccount) AccountDescription
}

// DMPolicy describes how the plugin treats unsolicited direct messages.
type DMPolicy struct {
	Policy        string
	AllowFrom     []string
	AllowFromPath string
	ApproveHint   string
}

// SecurityHooks expose DM policy and configuration warnings.
type SecurityHooks struct {
	ResolveDMPolicy func(account config.ResolvedAccount) DMPolicy
	CollectWarnings func(section *config.Section) []string
}

// OutboundHooks expose message delivery. TextChunkLimit is the largest text
// payload a single platform message accepts; the host splits above it.
type OutboundHooks struct {
	TextChunkLimit int
	SendText       func(ctx context.Context, accountID, target, text string) (SendResult, error)
	SendMedia      func(ctx context.Context, accountID, target, text string, media Media) (SendResult, error)
}

// StatusHooks expose health reporting.
type StatusHooks struct {
	ProbeAccount         func(ctx context.Context, account config.ResolvedAccount, timeout time.Duration) ProbeResult
	BuildAccountSnapshot func(account config.ResolvedAccount, runtime *AccountRuntimeStatus, probe *ProbeResult) AccountSnapshot
	BuildChannelSummary  func(snapshot AccountSnapshot) ChannelSummary
}

// GatewayHooks expose account lifecycle. StartAccount blocks until the
// listener is established, then returns a StopFunc for teardown.
type GatewayHooks struct {
	StartAccount func(ctx context.Context, account config.ResolvedAccount) (StopFunc, error)
}

// SetupHooks expose the interactive account setup flow.
type SetupHooks struct {
	ResolveAccountID   func(accountID string) string
	ValidateInput      func(accountID string, input config.SetupInput) string
	ApplyAccountName   func(tree *config.Tree, accountID, name string) *config.Tree
	ApplyAccountConfig func(tree *config.Tree, accountID string, input config.SetupInput) *config.Tree
}

// ChannelPlugin is the descriptor a channel plugin registers with the host.
// ReloadPrefixes lists the config key prefixes whose edits the host answers
// with a plugin reload; ConfigSchema validates a candidate tree before the
// host commits it.
type ChannelPlugin struct {
	ID             string
	DisplayName    string
	Meta           Meta
	Capabilities   Capabilities
	ReloadPrefixes []string
	ConfigSchema   func(tree *config.Tree) error
	Config         ConfigHooks
	Security       SecurityHooks
	Outbound       OutboundHooks
	Status         StatusHooks
	Gateway        GatewayHooks
	Setup          SetupHooks
}
