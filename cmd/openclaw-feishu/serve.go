package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/openclaw/openclaw-feishu/internal/config"
	"github.com/openclaw/openclaw-feishu/internal/feishu"
	"github.com/openclaw/openclaw-feishu/internal/logger"
	"github.com/openclaw/openclaw-feishu/internal/plugin"
	"github.com/openclaw/openclaw-feishu/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway: start enabled accounts and serve webhooks",
	RunE: func(*cobra.Command, []string) error {
		runServe()
		return nil
	},
}

func runServe() {
	fx.New(
		fx.Provide(
			loadConfig,
			provideLogger,
			plugin.NewWebhookRegistry,
			provideIntake,
			provideRuntime,
			feishu.New,
			provideServer,
		),
		fx.Invoke(
			startAccounts,
			startHeartbeat,
			startServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideLogger(*config.Tree) *slog.Logger {
	// loadConfig already initialized the handler from tree.Log.
	return logger.L
}

func provideIntake(log *slog.Logger) plugin.MessageIntake {
	return &loggingIntake{logger: log.With(slog.String("component", "intake"))}
}

func provideRuntime(tree *config.Tree, log *slog.Logger, intake plugin.MessageIntake, webhooks *plugin.WebhookRegistry) plugin.Runtime {
	return plugin.Runtime{
		Logger:   log,
		Config:   plugin.NewStaticConfig(tree),
		Messages: intake,
		Webhooks: webhooks,
	}
}

func provideServer(tree *config.Tree, log *slog.Logger, webhooks *plugin.WebhookRegistry, p *feishu.Plugin) *server.Server {
	return server.NewServer(tree.Server.Addr, log, webhooks, p.AccountSnapshots)
}

func startAccounts(lc fx.Lifecycle, log *slog.Logger, p *feishu.Plugin) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			started := p.StartEnabledAccounts(ctx)
			log.Info("accounts started", slog.Int("count", started))
			return nil
		},
		OnStop: p.Stop,
	})
}

func startHeartbeat(lc fx.Lifecycle, tree *config.Tree, p *feishu.Plugin) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return p.StartHeartbeat(tree.Status.ProbeSchedule)
		},
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, tree *config.Tree) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", slog.String("addr", tree.Server.Addr))
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server failed", slog.Any("error", err))
				}
			}()
			return nil
		},
		OnStop: srv.Shutdown,
	})
}

// loggingIntake is the gateway's stand-in for the host message router: it
// logs normalized inbound messages instead of routing them to an agent.
type loggingIntake struct {
	logger *slog.Logger
}

func (l *loggingIntake) Incoming(_ context.Context, msg plugin.IncomingMessage) error {
	l.logger.Info("inbound message",
		slog.String("account_id", msg.AccountID),
		slog.String("channel_id", msg.ChannelID),
		slog.String("chat_type", string(msg.ChatType)),
		slog.String("user_id", msg.UserID),
		slog.String("message_id", msg.MessageID),
		slog.Int("text_len", len(msg.Text)),
	)
	return nil
}
