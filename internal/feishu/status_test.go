package feishu

import (
	"errors"
	"testing"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

func TestStatusTrackerLifecycle(t *testing.T) {
	t.Parallel()

	tracker := newStatusTracker()
	if tracker.runtimeStatus("default") != nil {
		t.Fatal("untracked accounts report nil")
	}

	tracker.markStarted("default")
	status := tracker.runtimeStatus("default")
	if status == nil || !status.Running || status.LastStartAt == nil {
		t.Fatalf("unexpected status after start: %#v", status)
	}

	tracker.markInbound("default")
	tracker.markOutbound("default")
	status = tracker.runtimeStatus("default")
	if status.LastInboundAt == nil || status.LastOutboundAt == nil {
		t.Fatalf("unexpected activity timestamps: %#v", status)
	}

	tracker.markStopped("default", errors.New("socket closed"))
	status = tracker.runtimeStatus("default")
	if status.Running || status.LastStopAt == nil || status.LastError != "socket closed" {
		t.Fatalf("unexpected status after stop: %#v", status)
	}

	tracker.markStarted("default")
	if got := tracker.runtimeStatus("default"); got.LastError != "" {
		t.Fatalf("restart should clear the last error, got %q", got.LastError)
	}
}

func TestStatusTrackerProbe(t *testing.T) {
	t.Parallel()

	tracker := newStatusTracker()
	if probe, at := tracker.probe("default"); probe != nil || at != nil {
		t.Fatal("unprobed accounts report nil")
	}
	tracker.setProbe("default", plugin.ProbeResult{OK: true})
	probe, at := tracker.probe("default")
	if probe == nil || !probe.OK || at == nil {
		t.Fatalf("unexpected probe state: %#v %v", probe, at)
	}
}

func TestBuildAccountSnapshot(t *testing.T) {
	t.Parallel()

	account := config.ResolvedAccount{
		AccountID: "support",
		Name:      "Support Bot",
		Enabled:   true,
		AppID:     "cli_a",
		AppSecret: "s_a",
	}
	tracker := newStatusTracker()
	tracker.markStarted("support")
	probe := &plugin.ProbeResult{OK: true}

	snapshot := buildAccountSnapshot(account, tracker.runtimeStatus("support"), probe)
	if snapshot.AccountID != "support" || snapshot.Name != "Support Bot" {
		t.Fatalf("unexpected identity: %#v", snapshot)
	}
	if !snapshot.Configured || !snapshot.Enabled || !snapshot.Running {
		t.Fatalf("unexpected flags: %#v", snapshot)
	}
	if snapshot.Probe != probe {
		t.Fatal("probe result not carried through")
	}

	summary := buildChannelSummary(snapshot)
	if !summary.Configured || !summary.Running || summary.Probe != probe {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}

func TestBuildAccountSnapshotWithoutRuntime(t *testing.T) {
	t.Parallel()

	snapshot := buildAccountSnapshot(config.ResolvedAccount{AccountID: "default"}, nil, nil)
	if snapshot.Running || snapshot.Configured {
		t.Fatalf("unexpected snapshot: %#v", snapshot)
	}
}
