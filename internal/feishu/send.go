package feishu

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

// messageCreator performs one create-message call. The SDK request is built
// behind this seam; its exported struct does not expose what Build() stores.
type messageCreator interface {
	CreateMessage(ctx context.Context, receiveIDType, receiveID, msgType, content, dedupeKey string) (*larkim.CreateMessageResp, error)
}

type larkMessageCreator struct {
	client *lark.Client
}

func (c *larkMessageCreator) CreateMessage(ctx context.Context, receiveIDType, receiveID, msgType, content, dedupeKey string) (*larkim.CreateMessageResp, error) {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiveID).
			MsgType(msgType).
			Content(content).
			Uuid(dedupeKey).
			Build()).
		Build()
	return c.client.Im.V1.Message.Create(ctx, req)
}

// Sender delivers outbound messages for resolved accounts.
type Sender struct {
	logger  *slog.Logger
	clients *ClientManager
	section func() *config.Section

	// creatorFor overrides the message API in tests.
	creatorFor func(client *lark.Client) messageCreator
}

// NewSender creates a Sender over the shared client cache. section supplies
// the current channel section on every call so configuration edits are
// picked up without restarting.
func NewSender(log *slog.Logger, clients *ClientManager, section func() *config.Section) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{
		logger:  log.With(slog.String("component", "feishu_sender")),
		clients: clients,
		section: section,
		creatorFor: func(client *lark.Client) messageCreator {
			return &larkMessageCreator{client: client}
		},
	}
}

// ResolveReceiveID infers the receive id type from the target format.
// Feishu open ids start with "ou", chat ids with "oc".
func ResolveReceiveID(target string) (receiveID, receiveIDType string) {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "ou") {
		return target, larkim.ReceiveIdTypeOpenId
	}
	return target, larkim.ReceiveIdTypeChatId
}

// SendText delivers a plain text message to the target chat or user.
func (s *Sender) SendText(ctx context.Context, accountID, target, text string) (plugin.SendResult, error) {
	account := config.ResolveAccount(s.section(), accountID)
	client, err := s.clients.GetClient(account)
	if err != nil {
		return plugin.SendResult{}, err
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return plugin.SendResult{}, fmt.Errorf("feishu target is required")
	}
	receiveID, receiveIDType := ResolveReceiveID(target)

	content, err := BuildTextContent(text)
	if err != nil {
		return plugin.SendResult{}, err
	}

	resp, err := s.creatorFor(client).CreateMessage(ctx, receiveIDType, receiveID, larkim.MsgTypeText, content, uuid.NewString())
	if err != nil {
		s.logger.Error("send failed", slog.String("account_id", account.AccountID), slog.Any("error", err))
		return plugin.SendResult{}, err
	}
	if resp == nil || !resp.Success() || resp.Data == nil {
		code := 0
		msg := ""
		if resp != nil {
			code = resp.Code
			msg = resp.Msg
		}
		if msg == "" && resp != nil && resp.Success() {
			msg = "missing message data"
		}
		s.logger.Error("send failed", slog.String("account_id", account.AccountID), slog.Int("code", code), slog.String("msg", msg))
		return plugin.SendResult{}, fmt.Errorf("%w: %s (code: %d)", ErrSendFailed, msg, code)
	}

	messageID := ""
	if resp.Data.MessageId != nil {
		messageID = strings.TrimSpace(*resp.Data.MessageId)
	}
	s.logger.Info("send success",
		slog.String("account_id", account.AccountID),
		slog.String("receive_id_type", receiveIDType),
		slog.String("message_id", messageID),
	)
	return plugin.SendResult{Channel: ChannelID, ChannelID: target, MessageID: messageID}, nil
}

// SendMedia delivers a message that carries a media reference. Upload to
// Feishu is not implemented yet; the media URL is appended to the text.
// TODO: upload media via im/v1/images and im/v1/files instead of linking.
func (s *Sender) SendMedia(ctx context.Context, accountID, target, text string, media plugin.Media) (plugin.SendResult, error) {
	message := text
	if url := strings.TrimSpace(media.URL); url != "" {
		if message == "" {
			message = url
		} else {
			message = message + "\n\n" + url
		}
	}
	return s.SendText(ctx, accountID, target, message)
}
