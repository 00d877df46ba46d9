package watcher

import (
	"context"
	"fmt"
	"time"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/security"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/service/common"
	"github.com/oshokin/catpoint/internal/service/hook"
)

// Options controls the watcher polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval overrides watcher.interval from the settings file.
	PollInterval time.Duration
	// DryRun logs alarms without starting the on-alarm hook.
	DryRun bool
}

// StatusSource returns the current security status.
type StatusSource interface {
	GetStatus(ctx context.Context) (*api.Snapshot, error)
}

// Run polls the security server and starts the on-alarm hook on every transition into ALARM.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "catpoint-watcher")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	interval := cfg.Watcher.Interval
	if opts.PollInterval > 0 {
		interval = opts.PollInterval
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	var runner hook.Runner = hook.Nop{}

	if len(cfg.Watcher.OnAlarm) > 0 && !opts.DryRun {
		runner, err = hook.NewCommand(cfg.Watcher.OnAlarm)
		if err != nil {
			return fmt.Errorf("on-alarm hook: %w", err)
		}
	}

	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Watching security status", "server_address", serverAddress, "interval", interval.String())

	return New(client, runner).Watch(ctx, interval)
}

// Watcher remembers the last observed alarm status between polls.
type Watcher struct {
	source StatusSource
	hook   hook.Runner
	last   domain.AlarmStatus
	seen   bool
}

// New creates a watcher reading from source and starting hook on alarms.
func New(source StatusSource, runner hook.Runner) *Watcher {
	if runner == nil {
		runner = hook.Nop{}
	}

	return &Watcher{
		source: source,
		hook:   runner,
	}
}

// Watch polls every interval until ctx is canceled. Poll errors are logged, not returned.
func (w *Watcher) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = config.DefaultWatcherInterval
	}

	if err := w.Poll(ctx); err != nil {
		logger.ErrorKV(ctx, "Poll failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			if err := w.Poll(ctx); err != nil {
				logger.ErrorKV(ctx, "Poll failed", "error", err)
			}
		}
	}
}

// Poll fetches the status once and reacts to a change of alarm status.
func (w *Watcher) Poll(ctx context.Context) error {
	snapshot, err := w.source.GetStatus(ctx)
	if err != nil {
		return err
	}

	current := snapshot.Status.AlarmStatus
	changed := !w.seen || current != w.last
	previous := w.last
	w.last, w.seen = current, true

	if !changed {
		return nil
	}

	logger.InfoKV(ctx, "Alarm status observed",
		"alarm_status", current.String(),
		"arming_status", snapshot.Status.ArmingStatus.String(),
		"cat_detected", snapshot.CatDetected,
		"sensors", len(snapshot.Status.Sensors))

	if current != domain.Alarm {
		return nil
	}

	logger.WarnKV(ctx, "Alarm is ringing, starting hook", "previous", previous.String())

	if err = w.hook.Run(ctx, hookEnv(snapshot)); err != nil {
		return fmt.Errorf("on-alarm hook: %w", err)
	}

	return nil
}

func hookEnv(snapshot *api.Snapshot) []string {
	active := 0

	for _, sensor := range snapshot.Status.Sensors {
		if sensor.Active {
			active++
		}
	}

	return []string{
		"CATPOINT_ALARM_STATUS=" + snapshot.Status.AlarmStatus.String(),
		"CATPOINT_ARMING_STATUS=" + snapshot.Status.ArmingStatus.String(),
		fmt.Sprintf("CATPOINT_CAT_DETECTED=%t", snapshot.CatDetected),
		fmt.Sprintf("CATPOINT_ACTIVE_SENSORS=%d", active),
	}
}
