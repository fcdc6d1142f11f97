// Package plugin defines the contract between the OpenClaw host runtime and
// a channel plugin: the descriptor a plugin registers, the runtime services
// the host hands back, and the message types that cross the boundary.
package plugin

import (
	"context"
	"strings"
	"time"
)

// ChatType classifies the conversation an inbound message belongs to.
type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
)

// Media references an attachment delivered alongside an outbound message.
type Media struct {
	URL  string `json:"url"`
	Mime string `json:"mime,omitempty"`
	Name string `json:"name,omitempty"`
}

// IncomingMessage is a normalized inbound message handed to the host for
// routing. ChannelID is the platform conversation id the reply should target.
// Media stays nil when the channel renders attachments as placeholder text.
type IncomingMessage struct {
	Channel   string    `json:"channel"`
	AccountID string    `json:"accountId"`
	ChannelID string    `json:"channelId"`
	ChatType  ChatType  `json:"chatType"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Text      string    `json:"text"`
	Media     *Media    `json:"media"`
	MessageID string    `json:"messageId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SendResult reports a completed outbound delivery. ChannelID echoes the
// target the message was delivered to.
type SendResult struct {
	Channel   string `json:"channel"`
	ChannelID string `json:"channelId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// ProbeResult is the outcome of a credential check against the platform.
type ProbeResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// MessageIntake accepts normalized inbound messages for routing.
type MessageIntake interface {
	Incoming(ctx context.Context, msg IncomingMessage) error
}

// DirectChat reports whether the message arrived in a one-on-one chat.
func (m IncomingMessage) DirectChat() bool {
	return m.ChatType == ChatTypeDirect
}

// Empty reports whether the message carries no routable text.
func (m IncomingMessage) Empty() bool {
	return strings.TrimSpace(m.Text) == ""
}
