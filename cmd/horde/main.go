package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/zombiearmy/horde/internal/cache"
	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/dispatcher"
	"github.com/zombiearmy/horde/internal/game"
	"github.com/zombiearmy/horde/internal/influx"
	"github.com/zombiearmy/horde/internal/logging"
	"github.com/zombiearmy/horde/internal/monitor"
	"github.com/zombiearmy/horde/internal/notify"
	intOtel "github.com/zombiearmy/horde/internal/otel"
	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/internal/worker"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	AppName string = "horde"
)

// options holds the process-level inputs to newApp.
type options struct {
	// Console receives colored log output. Replies never go here.
	Console io.Writer
	// LogFile overrides the session log file under logsDir.
	LogFile io.Writer
	// MetricsWriter overrides otel.metricsFile.
	MetricsWriter io.Writer
}

// app wires config, logging, telemetry, storage and the worker behind one
// dispatcher.
type app struct {
	Logger           zerolog.Logger
	LogFilePath      string
	SessionStartTime time.Time

	logFile      *os.File
	metricsFile  *os.File
	otelProvider *intOtel.Provider
	influx       *influx.Manager
	publisher    *notify.Publisher
	backend      storage.Backend
	dispatcher   *dispatcher.Dispatcher
	manager      *worker.Manager
	monitor      *monitor.Service
}

func newApp(opts options) (*app, error) {
	a := &app{SessionStartTime: time.Now()}

	if err := a.setupLogging(opts); err != nil {
		return nil, err
	}
	if err := a.setupTelemetry(opts); err != nil {
		a.close()
		return nil, err
	}

	backend, err := initStorage(config.GetStorageConfig(), a.Logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.backend = backend

	a.setupSinks()

	if err := a.setupDispatcher(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) setupLogging(opts options) error {
	logFile := opts.LogFile
	if logFile == nil {
		logsDir := config.GetString("logsDir")
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs dir: %w", err)
		}
		a.LogFilePath = logging.LogFilePath(logsDir, AppName, a.SessionStartTime)

		// keep the previous session's file if the timestamp collides
		if _, err := os.Stat(a.LogFilePath); err == nil {
			_ = os.Rename(a.LogFilePath, a.LogFilePath+".old")
		}
		f, err := os.OpenFile(a.LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		logFile = f
	}

	graylogAddress := ""
	if gl := config.GetGraylogConfig(); gl.Enabled {
		graylogAddress = gl.Address
	}

	logger, err := logging.Setup(logging.Options{
		Level:          config.GetString("logLevel"),
		Console:        opts.Console,
		File:           logFile,
		GraylogAddress: graylogAddress,
	})
	if err != nil {
		return err
	}
	a.Logger = logger
	if a.LogFilePath != "" {
		a.Logger.Info().Str("path", a.LogFilePath).Msg("Begin logging in logs directory")
	}
	return nil
}

func (a *app) setupTelemetry(opts options) error {
	otelCfg := config.GetOTelConfig()
	metricsWriter := opts.MetricsWriter
	if otelCfg.Enabled && metricsWriter == nil {
		if otelCfg.MetricsFile != "" {
			f, err := os.OpenFile(otelCfg.MetricsFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				return fmt.Errorf("failed to open metrics file: %w", err)
			}
			a.metricsFile = f
			metricsWriter = f
		} else if a.logFile != nil {
			metricsWriter = a.logFile
		} else {
			metricsWriter = io.Discard
		}
	}

	provider, err := intOtel.New(intOtel.Config{
		Enabled:       otelCfg.Enabled,
		ServiceName:   otelCfg.ServiceName,
		Interval:      otelCfg.Interval,
		MetricsWriter: metricsWriter,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("Failed to initialize OTel provider")
		return err
	}
	a.otelProvider = provider
	if provider.Enabled() {
		a.Logger.Info().Str("service", otelCfg.ServiceName).Msg("OTel provider initialized")
	}
	return nil
}

// setupSinks connects the optional battle sinks. Failures are logged and the
// sink stays off.
func (a *app) setupSinks() {
	influxCfg := config.GetInfluxConfig()
	if influxCfg.Enabled {
		m := influx.NewManager(influxCfg, a.Logger)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := m.Connect(ctx)
		cancel()
		if err != nil {
			a.Logger.Error().Err(err).Msg("Failed to set up InfluxDB, battle metrics disabled")
		} else {
			a.influx = m
		}
	}

	natsCfg := config.GetNatsConfig()
	if natsCfg.Enabled {
		p, err := notify.Connect(natsCfg)
		if err != nil {
			a.Logger.Error().Err(err).Msg("Failed to connect to NATS, notifications disabled")
		} else {
			a.publisher = p
			a.Logger.Info().Str("url", natsCfg.URL).Msg("NATS publisher connected")
		}
	}
}

func (a *app) setupDispatcher() error {
	d, err := dispatcher.New(logging.NewDispatcherLogger(a.Logger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	a.dispatcher = d

	armies := cache.NewArmyCache()
	deps := worker.Dependencies{
		Backend: a.backend,
		Cache:   armies,
		Logger:  a.Logger,
		Game:    game.Options{Atomic: config.GetGameConfig().AtomicBattles},
	}
	// nil pointers must not become non-nil interfaces
	if a.influx != nil {
		deps.Metrics = a.influx
	}
	if a.publisher != nil {
		deps.Notifier = a.publisher
	}

	a.manager, err = worker.NewManager(deps)
	if err != nil {
		return err
	}

	a.setupMonitor(armies)

	a.registerLifecycleHandlers(d)
	a.Logger.Debug().Msg("Registering worker handlers with dispatcher")
	a.manager.RegisterHandlers(d)
	a.Logger.Info().Strs("commands", d.Commands()).Msg("Worker handlers registered with dispatcher")
	return nil
}

func (a *app) setupMonitor(armies *cache.ArmyCache) {
	monitorCfg := config.GetMonitorConfig()
	statusPath := monitorCfg.StatusFile
	if statusPath == "" && a.LogFilePath != "" {
		statusPath = filepath.Join(filepath.Dir(a.LogFilePath), "status.json")
	}

	a.monitor = monitor.NewService(monitor.Dependencies{
		Logger:      a.Logger,
		Cache:       armies,
		Backend:     a.backend,
		StorageType: config.GetStorageConfig().Type,
		StatusPath:  statusPath,
		Interval:    monitorCfg.Interval,
	})
	if monitorCfg.Enabled {
		a.monitor.Start()
	}
}

// dumper is a backend that can write a point-in-time copy on demand.
type dumper interface {
	storage.Exporter
	Dump() error
}

// registerLifecycleHandlers registers system command handlers with the dispatcher
func (a *app) registerLifecycleHandlers(d *dispatcher.Dispatcher) {
	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{CurrentVersion, BuildDate}, nil
	})

	d.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return a.LogFilePath, nil
	})

	d.Register(":STATUS:", func(e dispatcher.Event) (any, error) {
		return a.monitor.GetStatus(), nil
	})

	d.Register(":COMMANDS:", func(e dispatcher.Event) (any, error) {
		return d.Commands(), nil
	})

	d.Register(":SAVE:", func(e dispatcher.Event) (any, error) {
		a.Logger.Info().Msg("Received :SAVE: command, flushing")
		if dm, ok := a.backend.(dumper); ok && dm.ExportedFilePath() != "" {
			if err := dm.Dump(); err != nil {
				a.Logger.Error().Err(err).Msg("Failed to dump storage")
				return nil, err
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelProvider.Flush(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to flush OTel data")
		}
		return "ok", nil
	})
}

// handleLine dispatches one input line. ok is false for blank and comment lines.
func (a *app) handleLine(line string) (reply Reply, ok bool) {
	command, args, ok := parseLine(line)
	if !ok {
		return Reply{}, false
	}
	result, err := a.dispatcher.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return newReply(command, result, err), true
}

// serve reads commands from in until EOF or ctx is cancelled.
func (a *app) serve(ctx context.Context, in io.Reader, out *replyWriter) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, open := <-lines:
			if !open {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			reply, ok := a.handleLine(line)
			if !ok {
				continue
			}
			if err := out.Write(reply); err != nil {
				return fmt.Errorf("failed to write reply: %w", err)
			}
		}
	}
}

// close releases everything in reverse setup order. Buffered side effects
// drain before the sinks they write to are closed.
func (a *app) close() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage backend")
		}
		if exp, ok := a.backend.(storage.Exporter); ok && exp.ExportedFilePath() != "" {
			a.Logger.Info().Str("path", exp.ExportedFilePath()).Msg("Storage exported")
		}
	}
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close InfluxDB manager")
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to drain NATS connection")
		}
	}
	if a.otelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelProvider.Shutdown(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to shut down OTel provider")
		}
		cancel()
	}
	if a.metricsFile != nil {
		_ = a.metricsFile.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// configDir resolves the config directory: HORDE_CONFIG_DIR, else the
// executable's folder.
func configDir() string {
	if dir := os.Getenv("HORDE_CONFIG_DIR"); dir != "" {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	configErr := config.Load(configDir())

	a, err := newApp(options{Console: os.Stderr})
	if err != nil {
		return err
	}
	defer a.close()

	if configErr != nil {
		a.Logger.Warn().Err(configErr).Msg("Failed to load config, using defaults!")
	} else {
		a.Logger.Info().Msg("Loaded config")
	}

	out, err := newReplyWriter(stdout, config.GetString("output.format"))
	if err != nil {
		return err
	}

	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "exec":
			// one-shot: exec <COMMAND> [args...]
			if len(args) < 2 {
				return errors.New("exec needs a command")
			}
			reply, _ := a.handleLine(strings.Join(args[1:], " "))
			if err := out.Write(reply); err != nil {
				return err
			}
			if !reply.OK {
				return errors.New(reply.Error)
			}
			return nil
		case "version":
			fmt.Fprintln(stdout, CurrentVersion, BuildDate)
			return nil
		default:
			return fmt.Errorf("unknown argument %q", args[0])
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.Info().Str("version", CurrentVersion).Msg("Starting up...")
	return a.serve(ctx, stdin, out)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
