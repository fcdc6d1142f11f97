package feishu

import (
	"sync"
	"time"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

// statusTracker records per-account runtime state for status reporting.
type statusTracker struct {
	mu       sync.RWMutex
	accounts map[string]*plugin.AccountRuntimeStatus
	probes   map[string]plugin.ProbeResult
	probedAt map[string]time.Time
}

func newStatusTracker() *statusTracker {
	return &statusTracker{
		accounts: make(map[string]*plugin.AccountRuntimeStatus),
		probes:   make(map[string]plugin.ProbeResult),
		probedAt: make(map[string]time.Time),
	}
}

func (t *statusTracker) entry(accountID string) *plugin.AccountRuntimeStatus {
	status, ok := t.accounts[accountID]
	if !ok {
		status = &plugin.AccountRuntimeStatus{AccountID: accountID}
		t.accounts[accountID] = status
	}
	return status
}

func (t *statusTracker) markStarted(accountID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	status := t.entry(accountID)
	status.Running = true
	status.LastStartAt = &now
	status.LastError = ""
}

func (t *statusTracker) markStopped(accountID string, cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	status := t.entry(accountID)
	status.Running = false
	status.LastStopAt = &now
	if cause != nil {
		status.LastError = cause.Error()
	}
}

func (t *statusTracker) markInbound(accountID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.entry(accountID).LastInboundAt = &now
}

func (t *statusTracker) markOutbound(accountID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.entry(accountID).LastOutboundAt = &now
}

func (t *statusTracker) setProbe(accountID string, result plugin.ProbeResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.probes[accountID] = result
	t.probedAt[accountID] = time.Now()
}

// runtimeStatus returns a copy of the tracked state, or nil when untracked.
func (t *statusTracker) runtimeStatus(accountID string) *plugin.AccountRuntimeStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	status, ok := t.accounts[accountID]
	if !ok {
		return nil
	}
	copied := *status
	return &copied
}

func (t *statusTracker) probe(accountID string) (*plugin.ProbeResult, *time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result, ok := t.probes[accountID]
	if !ok {
		return nil, nil
	}
	at := t.probedAt[accountID]
	return &result, &at
}

// buildAccountSnapshot merges the resolved account with tracked runtime
// state and the latest probe outcome.
func buildAccountSnapshot(account config.ResolvedAccount, runtime *plugin.AccountRuntimeStatus, probe *plugin.ProbeResult) plugin.AccountSnapshot {
	snapshot := plugin.AccountSnapshot{
		AccountID:  account.AccountID,
		Name:       account.Name,
		Enabled:    account.Enabled,
		Configured: account.HasCredentials(),
		Probe:      probe,
	}
	if runtime != nil {
		snapshot.Running = runtime.Running
		snapshot.LastStartAt = runtime.LastStartAt
		snapshot.LastStopAt = runtime.LastStopAt
		snapshot.LastError = runtime.LastError
		snapshot.LastInboundAt = runtime.LastInboundAt
		snapshot.LastOutboundAt = runtime.LastOutboundAt
	}
	return snapshot
}

// buildChannelSummary collapses one snapshot into the channel-level view.
func buildChannelSummary(snapshot plugin.AccountSnapshot) plugin.ChannelSummary {
	return plugin.ChannelSummary{
		Configured:  snapshot.Configured,
		Running:     snapshot.Running,
		LastStartAt: snapshot.LastStartAt,
		LastStopAt:  snapshot.LastStopAt,
		LastError:   snapshot.LastError,
		Probe:       snapshot.Probe,
		LastProbeAt: snapshot.LastProbeAt,
	}
}
