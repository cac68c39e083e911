package cmd

import (
	"context"
	"os"
	"time"

	"github.com/ryan-gang/smtp-to-kindle/internal/cmdutil"
	"github.com/ryan-gang/smtp-to-kindle/internal/config"
	"github.com/ryan-gang/smtp-to-kindle/internal/daemon"
	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonRestartCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Daemon management commands",
	Long:  `Manage the smtp-to-kindle background daemon that watches a spool folder and mails new HTML files to your Kindle.`,
}

// newDaemonOrExit builds a daemon backed by the real SMTP component
func newDaemonOrExit(cfg config.ConfigProvider, log logger.LoggerInterface) *daemon.Daemon {
	d, err := daemon.NewDaemon(cfg, cmdutil.NewComponent(cfg, log, false), log)
	if err != nil {
		util.LogError(util.DaemonError, "creating daemon", err)
		os.Exit(1)
	}
	return d
}

func startDaemon(ctx context.Context, cfg config.ConfigProvider) {
	log := cmdutil.NewLoggerOrExit(cfg)
	defer log.Close()

	d := newDaemonOrExit(cfg, log)
	if err := d.Start(ctx); err != nil {
		util.LogError(util.DaemonError, "starting daemon", err)
		log.Close()
		os.Exit(1)
	}
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the smtp-to-kindle daemon",
	Long:  `Start the background daemon that will watch the configured spool folder and mail new HTML files every configured interval.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		cmdutil.CheckDaemonEnabledOrExit(cfg)
		startDaemon(cmd.Context(), cfg)
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the smtp-to-kindle daemon",
	Long:  `Stop the running background daemon.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		d := newDaemonOrExit(cfg, logger.Nop())

		if err := d.Status(); err != nil {
			return
		}
		if err := d.StopRunning(); err != nil {
			util.LogError(util.DaemonError, "stopping daemon", err)
			os.Exit(1)
		}
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	Long:  `Check if the smtp-to-kindle daemon is currently running and display its configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		d := newDaemonOrExit(cfg, logger.Nop())
		if err := d.Status(); err != nil {
			os.Exit(1)
		}
	},
}

var daemonRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the smtp-to-kindle daemon",
	Long:  `Stop and then start the smtp-to-kindle daemon.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		cmdutil.CheckDaemonEnabledOrExit(cfg)
		d := newDaemonOrExit(cfg, logger.Nop())

		if d.IsRunning() {
			util.Cyan.Println("Stopping existing daemon...")
			if err := d.StopRunning(); err != nil {
				util.LogError(util.DaemonError, "stopping daemon", err)
				os.Exit(1)
			}
			// give the old process time to remove its pid file
			for i := 0; i < 50 && d.IsRunning(); i++ {
				time.Sleep(100 * time.Millisecond)
			}
		}

		util.Cyan.Println("Starting daemon...")
		startDaemon(cmd.Context(), cfg)
	},
}
