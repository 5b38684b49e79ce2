package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/open-acs/acsd/pkg/acs"
	"github.com/open-acs/acsd/pkg/api"
	"github.com/open-acs/acsd/pkg/audit"
	"github.com/open-acs/acsd/pkg/fallback"
	"github.com/open-acs/acsd/pkg/logx"
	"github.com/open-acs/acsd/pkg/metrics"
	"github.com/open-acs/acsd/pkg/mqtt"
	"github.com/open-acs/acsd/pkg/pidfile"
	"github.com/open-acs/acsd/pkg/radio"
	"github.com/open-acs/acsd/pkg/trend"
	"github.com/open-acs/acsd/pkg/uci"
)

var (
	configPath = flag.String("config", "/etc/config/acsd", "Path to UCI configuration file")
	pidPath    = flag.String("pid-file", "/tmp/acsd.pid", "Path to PID file")
	logLevel   = flag.String("log-level", "", "Override log level (trace|debug|info|warn|error)")
	version    = flag.Bool("version", false, "Show version information")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (equivalent to trace level)")
	dryRun     = flag.Bool("dry-run", false, "Exercise the decision engine against a scripted driver instead of the real radio")
	force      = flag.Bool("force", false, "Force start by removing a stale PID file")
	runOnce    = flag.Bool("once", false, "Run a single invocation at startup and exit instead of serving the control API")
)

const (
	AppName    = "acsd"
	AppVersion = "1.0.0"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", AppName, AppVersion)
		os.Exit(0)
	}

	effectiveLevel := uci.DefaultLogLevel
	if *verbose {
		effectiveLevel = "trace"
	}
	logger := logx.NewLogger(effectiveLevel, AppName)

	pf := pidfile.New(*pidPath)
	if running, pid, err := pf.CheckRunning(); err != nil {
		logger.Error("failed to check pid file", "error", err)
		os.Exit(1)
	} else if running {
		if !*force {
			logger.Error("acsd already running", "pid", pid)
			os.Exit(1)
		}
		logger.Warn("removing stale pid file", "pid", pid)
		if err := pf.ForceRemove(); err != nil {
			logger.Error("failed to remove stale pid file", "error", err)
			os.Exit(1)
		}
	}
	if err := pf.Create(); err != nil {
		logger.Error("failed to create pid file", "error", err)
		os.Exit(1)
	}
	defer pf.Remove()

	cfg, err := uci.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err, "path", *configPath)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *verbose {
		cfg.LogLevel = "trace"
	}
	logger = logx.NewLogger(cfg.LogLevel, AppName)

	if *dryRun {
		logger.Info("dry-run mode: channel decisions will not be applied to the wireless config")
	}

	d := newDaemon(cfg, logger, *dryRun)
	defer d.Close()

	if *runOnce {
		ctx := context.Background()
		status, err := d.RunSweep(ctx)
		logger.Info("sweep finished", "status", status.String(), "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsListener {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.MetricsPort)
			if err := d.metrics.ListenAndServe(addr); err != nil {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
	}

	if cfg.APIListener {
		apiServer := api.NewServer(d.ctrl, d.auditLog, d.RunSweep, &api.Config{
			Enabled:  true,
			Host:     "localhost",
			Port:     cfg.APIPort,
			AuthHash: cfg.APIAuthHash,
		}, logger)
		if err := apiServer.Start(); err != nil {
			logger.Error("failed to start control api", "error", err)
			os.Exit(1)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("acsd started", "interface", cfg.Interface, "channels", cfg.Channels)

	sig := <-sigChan
	logger.Info("received shutdown signal", "signal", sig)
	cancel()
}

// daemon owns the wiring between the ACS controller and its surrounding
// collaborators (radio driver, bring-up, telemetry, audit trail).
type daemon struct {
	cfg      *uci.Config
	logger   *logx.Logger
	ctrl     *acs.Controller
	bringUp  acs.BringUp
	metrics  *metrics.Collector
	auditLog *audit.DecisionLogger
	mqttCli  *mqtt.Client
	fallbk   *fallback.Store

	invocationSeq int
	trendSamples  map[int][]trend.Sample
}

func newDaemon(cfg *uci.Config, logger *logx.Logger, dryRun bool) *daemon {
	channels := radio.BuildChannels(cfg.Channels, disabledSet(cfg.DisabledChannels))

	var driver acs.Driver
	var bringUp acs.BringUp
	if dryRun {
		driver = radio.NewFake(nil)
		bringUp = dryRunBringUp{logger: logger}
	} else {
		driver = radio.New(cfg.Interface, logger)
		bringUp = uci.NewClient(logger, cfg.Interface)
	}

	ctrl := acs.NewController(logger, driver, bringUp, channels, acs.Config{
		NumReqSurveys: cfg.NumReqSurveys,
		ROCDurationMS: cfg.ROCDurationMS,
	})

	metricsCollector := metrics.NewCollector(logger)

	auditLog, err := audit.NewDecisionLogger(logger, cfg.AuditDBPath)
	if err != nil {
		logger.Warn("decision audit trail disabled", "error", err)
		auditLog, _ = audit.NewDecisionLogger(logger, ":memory:")
		auditLog.Disable()
	}

	fallbackStore, err := fallback.Open(cfg.FallbackDBPath, logger)
	if err != nil {
		logger.Warn("fallback store disabled", "error", err)
		fallbackStore = nil
	}

	mqttCli := mqtt.NewClient(&mqtt.Config{
		BrokerURL: cfg.MQTTBrokerURL,
		ClientID:  cfg.MQTTClientID,
		Username:  cfg.MQTTUsername,
		Password:  cfg.MQTTPassword,
		Topic:     cfg.MQTTTopic,
		QoS:       0,
		Retain:    true,
		Enabled:   cfg.MQTTEnabled,
	}, logger)
	if err := mqttCli.Connect(); err != nil {
		logger.Warn("mqtt connect failed, telemetry disabled for this run", "error", err)
	}

	return &daemon{
		cfg:          cfg,
		logger:       logger,
		ctrl:         ctrl,
		bringUp:      bringUp,
		metrics:      metricsCollector,
		auditLog:     auditLog,
		mqttCli:      mqttCli,
		fallbk:       fallbackStore,
		trendSamples: make(map[int][]trend.Sample),
	}
}

func (d *daemon) Close() {
	if d.auditLog != nil {
		d.auditLog.Close()
	}
	if d.fallbk != nil {
		d.fallbk.Close()
	}
	if d.mqttCli != nil {
		d.mqttCli.Disconnect()
	}
}

// RunSweep drives one full ACS invocation synchronously: Init, the initial
// scan completion, then a driving loop over ROC-started/ROC-cancelled
// events. The radio driver's calls already block until the underlying
// command finishes, so by the time Advance has issued a dwell the dwell
// has already happened; RunSweep simply reports that completion back to
// the controller rather than waiting on a separate asynchronous event.
func (d *daemon) RunSweep(ctx context.Context) (acs.Status, error) {
	start := time.Now()
	status, err := d.runSweepLocked(ctx)
	duration := time.Since(start)

	d.metrics.ObserveSweep(statusLabel(status), duration.Seconds())

	channel, _ := d.ctrl.ChosenChannel()
	lowestNF := d.ctrl.LowestNF()
	record := audit.DecisionRecord{
		Timestamp:     start,
		Status:        statusLabel(status),
		Channel:       channel,
		LowestNF:      lowestNF,
		ExecutionTime: duration,
	}
	if err != nil {
		record.Error = err.Error()
	}
	if logErr := d.auditLog.LogDecision(record); logErr != nil {
		d.logger.Warn("failed to record decision audit entry", "error", logErr)
	}

	if d.mqttCli != nil {
		decision := mqtt.Decision{Timestamp: start, Status: statusLabel(status), Channel: channel, LowestNF: lowestNF}
		if err != nil {
			decision.Error = err.Error()
		}
		if pubErr := d.mqttCli.PublishDecision(decision); pubErr != nil {
			d.logger.Warn("failed to publish decision telemetry", "error", pubErr)
		}
	}

	d.invocationSeq++
	for ch, factor := range d.ctrl.ChannelFactors() {
		d.metrics.SetChannelInterference(ch, factor)

		samples := append(d.trendSamples[ch], trend.Sample{X: float64(d.invocationSeq), Y: factor})
		d.trendSamples[ch] = samples
		if len(samples) >= 2 {
			if _, fitErr := trend.FitChannel(d.logger, ch, samples); fitErr != nil {
				d.logger.Warn("channel trend fit failed", "channel", ch, "error", fitErr)
			}
		}
	}

	if status == acs.Valid {
		d.metrics.SetDecision(channel, lowestNF)
		if d.fallbk != nil {
			if recErr := d.fallbk.Record(d.cfg.Interface, channel); recErr != nil {
				d.logger.Warn("failed to record fallback channel", "error", recErr)
			}
		}
	} else if d.fallbk != nil {
		entry, found, lookupErr := d.fallbk.Lookup(d.cfg.Interface)
		if lookupErr != nil {
			d.logger.Warn("fallback lookup failed", "error", lookupErr)
		} else if found {
			d.logger.Warn("acs invocation failed, falling back to last known good channel",
				"interface", d.cfg.Interface, "channel", entry.Channel)
			if _, applyErr := d.bringUp.Apply(ctx, entry.Channel); applyErr != nil {
				d.logger.Error("fallback channel apply failed", "channel", entry.Channel, "error", applyErr)
			}
		}
	}

	return status, err
}

func (d *daemon) runSweepLocked(ctx context.Context) (acs.Status, error) {
	status, err := d.ctrl.Init(ctx)
	if err != nil || status != acs.ACS {
		return status, err
	}

	status, err = d.ctrl.NotifyScanComplete(ctx)
	for {
		if err != nil || status != acs.ACS {
			return status, err
		}

		channels := d.ctrl.Channels()
		cursor := d.ctrl.Cursor()
		if cursor < 0 || cursor >= len(channels) {
			return acs.Invalid, fmt.Errorf("acsd: cursor %d out of range over %d channels", cursor, len(channels))
		}
		freq := channels[cursor].FreqM

		d.metrics.ObserveROCRequest()
		status, err = d.ctrl.NotifyROCStarted(ctx, freq, d.cfg.ROCDurationMS, 0)
		if err != nil || status != acs.ACS {
			return status, err
		}
		status, err = d.ctrl.NotifyROCCancelled(ctx, freq, d.cfg.ROCDurationMS, 0)
	}
}

func statusLabel(s acs.Status) string {
	switch s {
	case acs.Valid:
		return "valid"
	case acs.Invalid:
		return "invalid"
	default:
		return "acs"
	}
}

func disabledSet(nums []int) map[int]bool {
	set := make(map[int]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set
}

// dryRunBringUp logs the channel that would have been applied instead of
// touching the wireless config, for --dry-run.
type dryRunBringUp struct {
	logger *logx.Logger
}

func (d dryRunBringUp) Apply(ctx context.Context, channel int) (acs.Status, error) {
	d.logger.Info("dry-run: would apply channel", "channel", channel)
	return acs.Valid, nil
}
