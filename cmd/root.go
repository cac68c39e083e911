package cmd

import (
	"fmt"
	"os"

	"github.com/ryan-gang/smtp-to-kindle/internal/config"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/spf13/cobra"
)

func init() {
	configPath, err := config.DefaultConfigPath()
	if err != nil {
		util.Red.Println("Error setting default config path: ", err)
		os.Exit(1)
	}
	rootCmd.PersistentFlags().StringP("config", "c", configPath, "Path to config file")
}

var rootCmd = &cobra.Command{
	Use:   "smtp-to-kindle",
	Short: "Send HTML to your Kindle as an EPUB over SMTP",
	Long: `smtp-to-kindle wraps HTML content into a single chapter EPUB and mails it
to your Kindle address through any SMTP server that supports STARTTLS.

It can be used:
- once from the command line with 'send'
- as an HTTP tool endpoint with 'serve'
- as a background daemon that delivers HTML files dropped into a spool folder

Every delivery reports a single status line, either
"Successfully sent '<title>.epub' to <kindle email>" or
"Failed to send to Kindle: <reason>".`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help if no command is provided
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
