package feishu

import (
	"strconv"
	"strings"
	"time"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

// NormalizeEvent converts a message-receive event into the host's inbound
// shape. ok=false means the event carries nothing routable and should be
// dropped silently.
func NormalizeEvent(accountID string, event *larkim.P2MessageReceiveV1) (plugin.IncomingMessage, bool) {
	if event == nil || event.Event == nil || event.Event.Message == nil {
		return plugin.IncomingMessage{}, false
	}
	message := event.Event.Message

	messageType := derefTrim(message.MessageType)
	rawContent := ""
	if message.Content != nil {
		rawContent = *message.Content
	}
	text, ok := ExtractText(messageType, rawContent)
	if !ok || text == "" {
		return plugin.IncomingMessage{}, false
	}

	openID := ""
	if sender := event.Event.Sender; sender != nil && sender.SenderId != nil {
		openID = derefTrim(sender.SenderId.OpenId)
	}

	chatID := derefTrim(message.ChatId)
	chatType := derefTrim(message.ChatType)

	kind := plugin.ChatTypeGroup
	if chatType == "p2p" || (chatID != "" && chatID == openID) {
		kind = plugin.ChatTypeDirect
	}

	return plugin.IncomingMessage{
		Channel:   ChannelID,
		AccountID: accountID,
		ChannelID: chatID,
		ChatType:  kind,
		UserID:    openID,
		UserName:  openID,
		Text:      text,
		MessageID: derefTrim(message.MessageId),
		Timestamp: parseCreateTime(derefTrim(message.CreateTime)),
	}, true
}

// parseCreateTime converts Feishu's millisecond epoch string, falling back
// to the wall clock when absent or malformed.
func parseCreateTime(raw string) time.Time {
	if raw != "" {
		if millis, err := strconv.ParseInt(raw, 10, 64); err == nil && millis > 0 {
			return time.UnixMilli(millis)
		}
	}
	return time.Now()
}

func derefTrim(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
