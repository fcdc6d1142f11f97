package plugin

import "time"

// AccountRuntimeStatus tracks the live state of one account listener.
type AccountRuntimeStatus struct {
	AccountID      string     `json:"accountId"`
	Running        bool       `json:"running"`
	LastStartAt    *time.Time `json:"lastStartAt,omitempty"`
	LastStopAt     *time.Time `json:"lastStopAt,omitempty"`
	LastInboundAt  *time.Time `json:"lastInboundAt,omitempty"`
	LastOutboundAt *time.Time `json:"lastOutboundAt,omitempty"`
	LastError      string     `json:"lastError,omitempty"`
}

// AccountSnapshot is the per-account status view exposed to operators.
type AccountSnapshot struct {
	AccountID      string       `json:"accountId"`
	Name           string       `json:"name,omitempty"`
	Enabled        bool         `json:"enabled"`
	Configured     bool         `json:"configured"`
	Running        bool         `json:"running"`
	LastStartAt    *time.Time   `json:"lastStartAt,omitempty"`
	LastStopAt     *time.Time   `json:"lastStopAt,omitempty"`
	LastError      string       `json:"lastError,omitempty"`
	Probe          *ProbeResult `json:"probe,omitempty"`
	LastProbeAt    *time.Time   `json:"lastProbeAt,omitempty"`
	LastInboundAt  *time.Time   `json:"lastInboundAt,omitempty"`
	LastOutboundAt *time.Time   `json:"lastOutboundAt,omitempty"`
}

// ChannelSummary is the channel-level rollup derived from one snapshot.
type ChannelSummary struct {
	Configured  bool         `json:"configured"`
	Running     bool         `json:"running"`
	LastStartAt *time.Time   `json:"lastStartAt,omitempty"`
	LastStopAt  *time.Time   `json:"lastStopAt,omitempty"`
	LastError   string       `json:"lastError,omitempty"`
	Probe       *ProbeResult `json:"probe,omitempty"`
	LastProbeAt *time.Time   `json:"lastProbeAt,omitempty"`
}
