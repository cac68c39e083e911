package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ryan-gang/smtp-to-kindle/internal/config"
	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

// Daemon watches the spool folder and delivers new HTML files on a fixed interval
type Daemon struct {
	processor *SpoolProcessor
	cfg       config.ConfigProvider
	logger    logger.LoggerInterface
}

func NewDaemon(cfg config.ConfigProvider, deliverer Deliverer, log logger.LoggerInterface) (*Daemon, error) {
	processor, err := NewSpoolProcessor(cfg, deliverer, log)
	if err != nil {
		return nil, util.Wrap(util.DaemonError, "creating spool processor", err)
	}
	return &Daemon{processor: processor, cfg: cfg, logger: log}, nil
}

// Start blocks until ctx is cancelled or the process receives SIGINT or SIGTERM.
// The pid file exists for exactly as long as Start runs.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.validateConfiguration(); err != nil {
		return util.Wrap(util.DaemonError, "validating configuration", err)
	}
	if err := d.writePidFile(); err != nil {
		return util.Wrap(util.DaemonError, "writing pid file", err)
	}
	defer d.cleanup()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.logStartupInfo()
	return d.run(ctx, d.interval())
}

func (d *Daemon) interval() time.Duration {
	return time.Duration(d.cfg.GetCheckInterval()) * time.Minute
}

func (d *Daemon) validateConfiguration() error {
	if d.cfg == nil {
		return fmt.Errorf("configuration not provided")
	}
	if !d.cfg.IsDaemonEnabled() {
		return fmt.Errorf("daemon is not enabled in configuration")
	}
	if d.cfg.GetSpoolPath() == "" {
		return fmt.Errorf("spool path is not configured")
	}
	if err := d.cfg.Validate(); err != nil {
		return err
	}
	if d.IsRunning() {
		return fmt.Errorf("daemon is already running")
	}
	return nil
}

func (d *Daemon) logStartupInfo() {
	util.GreenBold.Printf("smtp-to-kindle daemon started, checking spool every %d minutes\n", d.cfg.GetCheckInterval())
	util.Cyan.Printf("Spool path: %s\n", d.cfg.GetSpoolPath())
	util.Cyan.Printf("PID file: %s\n", d.cfg.GetPidFile())
	util.Cyan.Printf("Log file: %s\n", d.cfg.GetLogPath())

	d.logger.With(
		"pid", os.Getpid(),
		"spool_path", d.cfg.GetSpoolPath(),
		"interval_minutes", d.cfg.GetCheckInterval(),
	).Info("Daemon started")
}

// run checks the spool once right away, then on every tick
func (d *Daemon) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.processSpool(ctx)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping daemon")
			util.Green.Println("Daemon stopped successfully")
			return nil
		case <-ticker.C:
			d.processSpool(ctx)
		}
	}
}

// StopRunning signals the daemon recorded in the pid file to stop
func (d *Daemon) StopRunning() error {
	pid, err := d.readPid()
	if err != nil {
		return util.Wrap(util.DaemonError, "reading pid file", err)
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return util.Wrap(util.DaemonError, "finding daemon process", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return util.Wrap(util.DaemonError, "signalling daemon", err)
	}
	util.Green.Printf("Sent stop signal to daemon (PID: %d)\n", pid)
	return nil
}

// RunOnce performs a single spool check
func (d *Daemon) RunOnce(ctx context.Context) ([]string, error) {
	documents, err := d.processor.ReadDocuments()
	if err != nil {
		return nil, err
	}
	return d.processor.ProcessDocuments(ctx, documents)
}

func (d *Daemon) processSpool(ctx context.Context) {
	delivered, err := d.RunOnce(ctx)
	switch {
	case err != nil:
		d.logger.Errorf("Error processing spool: %v", err)
	case len(delivered) == 0:
		d.logger.Debug("No new documents delivered")
	default:
		d.logger.Infof("Delivered %d documents", len(delivered))
		util.GreenBold.Printf("Delivered %d documents\n", len(delivered))
	}
}

func (d *Daemon) readPid() (int, error) {
	if d.cfg.GetPidFile() == "" {
		return 0, fmt.Errorf("pid file is not configured")
	}
	pidData, err := os.ReadFile(d.cfg.GetPidFile())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(pidData)))
}

// IsRunning reports whether the process in the pid file is alive
func (d *Daemon) IsRunning() bool {
	pid, err := d.readPid()
	if err != nil {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 only checks that the process exists
	return process.Signal(syscall.Signal(0)) == nil
}

func (d *Daemon) writePidFile() error {
	return os.WriteFile(d.cfg.GetPidFile(), []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (d *Daemon) cleanup() {
	if d.cfg.GetPidFile() != "" {
		os.Remove(d.cfg.GetPidFile())
	}
}

func (d *Daemon) Status() error {
	if !d.IsRunning() {
		util.Red.Println("Daemon is not running")
		return fmt.Errorf("daemon is not running")
	}

	pid, _ := d.readPid()
	util.Green.Printf("Daemon is running (PID: %d)\n", pid)
	util.Cyan.Printf("Spool path: %s\n", d.cfg.GetSpoolPath())
	util.Cyan.Printf("Check interval: %d minutes\n", d.cfg.GetCheckInterval())

	state := d.processor.State()
	if !state.LastCheck.IsZero() {
		util.Cyan.Printf("Last check: %s\n", state.LastCheck.Format(time.RFC1123))
	}
	util.Cyan.Printf("Documents delivered: %d\n", len(state.Documents))
	return nil
}
