// Package config models the OpenClaw configuration tree consumed by the
// Feishu channel plugin: the channel section, its optional multi-account
// map, and the pure helpers that resolve and rewrite account entries.
//
// The tree is owned by the host; every helper here treats its input as
// read-only and returns a fresh copy when it needs to change anything.
package config

import (
	"sort"
)

// DefaultAccountID is the reserved account id whose fields live directly on
// the channel section instead of under the accounts map.
const DefaultAccountID = "default"

// AccountFields holds the credential and delivery settings shared by the
// channel section and per-account entries.
type AccountFields struct {
	Enabled           *bool          `toml:"enabled,omitempty" json:"enabled,omitempty"`
	Name              string         `toml:"name,omitempty" json:"name,omitempty"`
	AppID             string         `toml:"appId,omitempty" json:"appId,omitempty"`
	AppSecret         string         `toml:"appSecret,omitempty" json:"appSecret,omitempty"`
	EncryptKey        string         `toml:"encryptKey,omitempty" json:"encryptKey,omitempty"`
	VerificationToken string         `toml:"verificationToken,omitempty" json:"verificationToken,omitempty"`
	EventURL          string         `toml:"eventUrl,omitempty" json:"eventUrl,omitempty" validate:"omitempty,url"`
	Extra             map[string]any `toml:"config,omitempty" json:"config,omitempty"`
}

// Account is one named entry under the channel section's accounts map.
type Account struct {
	AccountFields
}

// Section is the feishu channel section of the host configuration tree.
// The default account's fields live directly on the section.
type Section struct {
	AccountFields
	Accounts map[string]*Account `toml:"accounts,omitempty" json:"accounts,omitempty"`

	// accountOrder preserves the stored ordering of the accounts map. It
	// is maintained by Load and the mutation helpers; when empty, sorted
	// keys are used as a deterministic fallback.
	accountOrder []string
}

// Channels groups the channel sections of the tree. Only feishu is modeled
// here; the host owns the rest.
type Channels struct {
	Feishu *Section `toml:"feishu,omitempty" json:"feishu,omitempty"`
}

// LogConfig mirrors the host's logging settings for the standalone gateway.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// ServerConfig configures the gateway HTTP listener used in webhook mode.
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr"`
}

// StatusConfig configures the periodic credential probe.
type StatusConfig struct {
	// ProbeSchedule is a cron expression; empty disables the heartbeat.
	ProbeSchedule string `toml:"probe_schedule" json:"probe_schedule"`
}

// Tree is the root of the configuration consumed by the plugin.
type Tree struct {
	Log      LogConfig    `toml:"log" json:"log"`
	Server   ServerConfig `toml:"server" json:"server"`
	Status   StatusConfig `toml:"status" json:"status"`
	Channels Channels     `toml:"channels" json:"channels"`
}

// FeishuSection returns the feishu channel section, or nil when absent.
func (t *Tree) FeishuSection() *Section {
	if t == nil {
		return nil
	}
	return t.Channels.Feishu
}

// AccountIDs returns the account ids of the section in stored order.
func (s *Section) AccountIDs() []string {
	if s == nil || len(s.Accounts) == 0 {
		return nil
	}
	if len(s.accountOrder) == len(s.Accounts) {
		ids := make([]string, len(s.accountOrder))
		copy(ids, s.accountOrder)
		return ids
	}
	ids := make([]string, 0, len(s.Accounts))
	for id := range s.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetAccountOrder records the stored ordering of the accounts map.
func (s *Section) SetAccountOrder(ids []string) {
	if s == nil {
		return
	}
	s.accountOrder = append([]string(nil), ids...)
}

func (f AccountFields) clone() AccountFields {
	out := f
	out.Enabled = cloneBool(f.Enabled)
	out.Extra = cloneAnyMap(f.Extra)
	return out
}

func (a *Account) clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{AccountFields: a.AccountFields.clone()}
}

func (s *Section) clone() *Section {
	if s == nil {
		return nil
	}
	out := &Section{AccountFields: s.AccountFields.clone()}
	if s.Accounts != nil {
		out.Accounts = make(map[string]*Account, len(s.Accounts))
		for id, acct := range s.Accounts {
			out.Accounts[id] = acct.clone()
		}
	}
	out.accountOrder = append([]string(nil), s.accountOrder...)
	return out
}

// Clone deep-copies the tree. Mutation helpers operate on clones so the
// host-owned input is never modified in place.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return &Tree{}
	}
	out := *t
	out.Channels.Feishu = t.Channels.Feishu.clone()
	return &out
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}

func cloneAnyMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = cloneAnyValue(value)
	}
	return out
}

func cloneAnyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneAnyMap(v)
	case []any:
		items := make([]any, 0, len(v))
		for _, item := range v {
			items = append(items, cloneAnyValue(item))
		}
		return items
	case []string:
		items := make([]string, len(v))
		copy(items, v)
		return items
	default:
		return v
	}
}
