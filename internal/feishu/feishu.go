// Package feishu implements the Feishu/Lark channel plugin: account
// resolution over the host configuration tree, cached API clients, outbound
// delivery, and inbound event listeners in websocket and webhook modes.
package feishu

import "errors"

// ChannelID is the plugin id registered with the host.
const ChannelID = "feishu"

// DisplayName is the human-readable channel name.
const DisplayName = "Feishu"

// WebhookPath is the callback path registered for webhook-mode accounts.
const WebhookPath = "/feishu/events"

// TextChunkLimit is the largest text payload one Feishu message accepts.
const TextChunkLimit = 4096

// ErrCredentialsMissing reports an account without appId or appSecret.
var ErrCredentialsMissing = errors.New("feishu credentials missing")

// ErrSendFailed reports a delivery the platform rejected.
var ErrSendFailed = errors.New("feishu send failed")
