package cmd

import (
	"os"
	"strconv"

	"github.com/ryan-gang/smtp-to-kindle/internal/config"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configureCmd)
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure smtp-to-kindle settings",
	Long: `Configure the Kindle address, the sender account and SMTP server,
and the optional spool folder watched by the daemon.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		daemonEnabled := false

		if _, err := os.Stat(configPath); err != nil {
			util.CyanBold.Println("Creating new configuration...")
			cfg, err := config.CreateConfig()
			if err != nil {
				util.LogError(util.ConfigError, "creating configuration", err)
				os.Exit(1)
			}
			if err := config.Save(*cfg, configPath); err != nil {
				util.LogError(util.ConfigError, "saving configuration", err)
				os.Exit(1)
			}
			daemonEnabled = cfg.DaemonEnabled
			util.Green.Printf("Configuration saved to %s, you can directly edit it later on\n", configPath)
		} else {
			util.CyanBold.Println("Updating existing configuration...")
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				util.LogError(util.ConfigError, "loading configuration", err)
				os.Exit(1)
			}

			util.Cyan.Println("\nCurrent settings:")
			util.Cyan.Printf("Kindle email: %s\n", cfg.Receiver)
			util.Cyan.Printf("Sender email: %s\n", cfg.Sender)
			util.Cyan.Printf("SMTP server: %s:%d\n", cfg.Server, cfg.Port)
			util.Cyan.Printf("Daemon enabled: %t\n", cfg.DaemonEnabled)
			util.Cyan.Printf("Spool path: %s\n", cfg.SpoolPath)
			util.Cyan.Printf("Check interval: %d minutes\n", cfg.CheckInterval)

			util.CyanBold.Println("\nUpdate daemon configuration? (y/n):")
			response := util.ScanlineTrim()

			if response == "y" || response == "Y" || response == "yes" {
				util.Cyan.Printf("Spool folder to watch for HTML files (current: %s, empty to disable): ", cfg.SpoolPath)
				newPath := util.ScanlineTrim()

				if newPath == "" {
					cfg.DaemonEnabled = false
					cfg.SpoolPath = ""
				} else {
					cfg.DaemonEnabled = true
					cfg.SpoolPath = newPath

					util.Cyan.Printf("Check interval in minutes (current: %d): ", cfg.CheckInterval)
					intervalStr := util.ScanlineTrim()
					if intervalStr != "" {
						if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
							cfg.CheckInterval = interval
						}
					}
				}

				if err := config.Save(cfg, configPath); err != nil {
					util.LogError(util.ConfigError, "saving configuration", err)
					os.Exit(1)
				}

				util.Green.Println("Configuration updated successfully!")
			}
			daemonEnabled = cfg.DaemonEnabled
		}

		util.CyanBold.Println("\nNext steps:")
		util.Cyan.Println("- Run 'smtp-to-kindle send --content-file page.html' to send a document")
		if daemonEnabled {
			util.Cyan.Println("- Run 'smtp-to-kindle daemon start' to start the background daemon")
			util.Cyan.Println("- Run 'smtp-to-kindle daemon status' to check daemon status")
		} else {
			util.Cyan.Println("- Run 'smtp-to-kindle configure' again to enable daemon mode")
		}
	},
}
