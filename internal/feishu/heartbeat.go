package feishu

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openclaw/openclaw-feishu/internal/config"
)

const heartbeatProbeTimeout = 10 * time.Second

// Heartbeat probes enabled accounts on a cron schedule and feeds the
// results into the status tracker.
type Heartbeat struct {
	logger  *slog.Logger
	prober  *Prober
	status  *statusTracker
	section func() *config.Section
	cron    *cron.Cron
}

func newHeartbeat(log *slog.Logger, prober *Prober, status *statusTracker, section func() *config.Section) *Heartbeat {
	if log == nil {
		log = slog.Default()
	}
	return &Heartbeat{
		logger:  log.With(slog.String("component", "feishu_heartbeat")),
		prober:  prober,
		status:  status,
		section: section,
	}
}

// Start schedules the probe. An empty schedule disables the heartbeat.
func (h *Heartbeat) Start(schedule string) error {
	if schedule == "" {
		return nil
	}
	h.cron = cron.New()
	if _, err := h.cron.AddFunc(schedule, h.run); err != nil {
		return err
	}
	h.cron.Start()
	h.logger.Info("heartbeat scheduled", slog.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running probe to finish.
func (h *Heartbeat) Stop(ctx context.Context) error {
	if h.cron == nil {
		return nil
	}
	stopped := h.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Heartbeat) run() {
	ctx := context.Background()
	for _, account := range config.ResolveEnabledAccounts(h.section()) {
		result := h.prober.ProbeAccount(ctx, account, heartbeatProbeTimeout)
		h.status.setProbe(account.AccountID, result)
		h.logger.Debug("probe recorded",
			slog.String("account_id", account.AccountID),
			slog.Bool("ok", result.OK),
		)
	}
}
