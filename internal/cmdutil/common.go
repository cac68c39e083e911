package cmdutil

import (
	"os"

	"github.com/ryan-gang/smtp-to-kindle/internal/config"
	"github.com/ryan-gang/smtp-to-kindle/internal/epubgen"
	"github.com/ryan-gang/smtp-to-kindle/internal/kindle"
	"github.com/ryan-gang/smtp-to-kindle/internal/logger"
	"github.com/ryan-gang/smtp-to-kindle/internal/mail"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/spf13/cobra"
)

// LoadConfigFromFlags loads configuration using the config flag from the command
func LoadConfigFromFlags(cmd *cobra.Command) (config.ConfigProvider, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	return config.LoadProvider(configPath)
}

// LoadConfigOrExit loads configuration and exits with error message if it fails
func LoadConfigOrExit(cmd *cobra.Command) config.ConfigProvider {
	cfg, err := LoadConfigFromFlags(cmd)
	if err != nil {
		util.LogError(util.ConfigError, "loading configuration", err)
		os.Exit(1)
	}
	return cfg
}

// CheckDaemonEnabledOrExit checks if daemon is enabled and exits with message if not
func CheckDaemonEnabledOrExit(cfg config.ConfigProvider) {
	if !cfg.IsDaemonEnabled() {
		util.Red.Println("Daemon is not enabled in configuration")
		util.Cyan.Println("Run 'smtp-to-kindle configure' to set a spool folder")
		os.Exit(1)
	}
}

// NewLoggerOrExit creates the logger configured for this run
func NewLoggerOrExit(cfg config.ConfigProvider) logger.LoggerInterface {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		util.LogError(util.ConfigError, "creating logger", err)
		os.Exit(1)
	}
	return log
}

// NewComponent wires the EPUB builder and the SMTP sender into a component.
// With dryRun set, mail is logged instead of sent.
func NewComponent(cfg config.ConfigProvider, log logger.LoggerInterface, dryRun bool) *kindle.Component {
	var sender mail.MailSender = mail.NewSMTPMailSender(log)
	if dryRun {
		sender = mail.NewLogSender(log)
	}
	component := kindle.NewComponent(epubgen.NewBuilder(), sender, log)
	component.SetMailTimeout(cfg.GetMailTimeout())
	return component
}
