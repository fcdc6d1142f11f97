package feishu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

const reconnectDelay = 3 * time.Second

// Monitor runs the inbound listeners. Accounts without an event URL hold a
// websocket long connection; accounts with one receive callbacks through
// the host's webhook registry instead.
type Monitor struct {
	logger   *slog.Logger
	intake   plugin.MessageIntake
	webhooks *plugin.WebhookRegistry
	status   *statusTracker
}

func newMonitor(log *slog.Logger, intake plugin.MessageIntake, webhooks *plugin.WebhookRegistry, status *statusTracker) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		logger:   log.With(slog.String("component", "feishu_monitor")),
		intake:   intake,
		webhooks: webhooks,
		status:   status,
	}
}

// StartAccount brings up the listener for one account and returns its stop
// function. Teardown problems are logged, never returned.
func (m *Monitor) StartAccount(ctx context.Context, account config.ResolvedAccount) (plugin.StopFunc, error) {
	if !account.HasCredentials() {
		return nil, fmt.Errorf("account %s: %w", account.AccountID, ErrCredentialsMissing)
	}
	m.logger.Info("starting feishu provider",
		slog.String("account_id", account.AccountID),
		slog.Bool("webhook_mode", account.ConnectsViaWebhook()),
	)

	var stop plugin.StopFunc
	var err error
	if account.ConnectsViaWebhook() {
		stop, err = m.startWebhook(account)
	} else {
		stop, err = m.startWebsocket(ctx, account)
	}
	if err != nil {
		m.status.markStopped(account.AccountID, err)
		return nil, err
	}
	m.status.markStarted(account.AccountID)
	return stop, nil
}

func (m *Monitor) startWebhook(account config.ResolvedAccount) (plugin.StopFunc, error) {
	handler := m.webhookHandler(account)
	if err := m.webhooks.Register(WebhookPath, handler); err != nil {
		return nil, fmt.Errorf("account %s: %w", account.AccountID, err)
	}
	m.logger.Info("webhook registered",
		slog.String("account_id", account.AccountID),
		slog.String("path", WebhookPath),
	)
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			m.webhooks.Unregister(WebhookPath)
			m.status.markStopped(account.AccountID, nil)
			m.logger.Info("webhook unregistered", slog.String("account_id", account.AccountID))
		})
		return nil
	}, nil
}

func (m *Monitor) startWebsocket(ctx context.Context, account config.ResolvedAccount) (plugin.StopFunc, error) {
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	newClient := func() *larkws.Client {
		eventDispatcher := m.eventDispatcher(connCtx, account)
		return larkws.NewClient(
			account.AppID,
			account.AppSecret,
			larkws.WithEventHandler(eventDispatcher),
			larkws.WithLogLevel(larkcore.LogLevelInfo),
		)
	}

	go func() {
		for {
			if connCtx.Err() != nil {
				return
			}
			client := newClient()
			err := client.Start(connCtx)
			if connCtx.Err() != nil {
				return
			}
			if err != nil {
				m.logger.Error("websocket start failed", slog.String("account_id", account.AccountID), slog.Any("error", err))
			} else {
				m.logger.Warn("websocket exited without error; reconnecting", slog.String("account_id", account.AccountID))
			}
			timer := time.NewTimer(reconnectDelay)
			select {
			case <-connCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			cancel()
			m.status.markStopped(account.AccountID, nil)
			m.logger.Info("websocket stopped", slog.String("account_id", account.AccountID))
		})
		return nil
	}, nil
}

// eventDispatcher builds a dispatcher that normalizes message events and
// forwards them to the host intake. Non-message events are acknowledged to
// keep the SDK from logging missing-handler noise.
func (m *Monitor) eventDispatcher(ctx context.Context, account config.ResolvedAccount) *dispatcher.EventDispatcher {
	eventDispatcher := dispatcher.NewEventDispatcher(account.VerificationToken, account.EncryptKey)
	eventDispatcher.OnP2MessageReceiveV1(func(_ context.Context, event *larkim.P2MessageReceiveV1) error {
		if ctx.Err() != nil {
			return nil
		}
		msg, ok := NormalizeEvent(account.AccountID, event)
		if !ok {
			m.logger.Debug("inbound ignored", slog.String("account_id", account.AccountID))
			return nil
		}
		m.status.markInbound(account.AccountID)
		m.logger.Info("inbound received",
			slog.String("account_id", account.AccountID),
			slog.String("message_id", msg.MessageID),
			slog.String("chat_type", string(msg.ChatType)),
			slog.String("channel_id", msg.ChannelID),
		)
		go func() {
			if err := m.intake.Incoming(ctx, msg); err != nil {
				m.logger.Error("handle inbound failed", slog.String("account_id", account.AccountID), slog.Any("error", err))
			}
		}()
		return nil
	})
	eventDispatcher.OnP2MessageReadV1(func(_ context.Context, _ *larkim.P2MessageReadV1) error {
		return nil
	})
	return eventDispatcher
}
