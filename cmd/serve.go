package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/dedent"
	"github.com/ryan-gang/smtp-to-kindle/internal/cmdutil"
	"github.com/ryan-gang/smtp-to-kindle/internal/server"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Address to listen on (overrides config, default :8080)")
	serveCmd.Flags().Bool("dry-run", false, "Log deliveries instead of sending mail")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the delivery component over HTTP",
	Long: `Exposes the component as an HTTP tool endpoint.
Every request carries all inputs; the server holds no account settings of its own.`,
	Example: dedent.Dedent(`
		smtp-to-kindle serve --listen :8080

		curl -s localhost:8080/api/inputs
		curl -s -X POST localhost:8080/api/deliveries -d '{
		  "title": "Weekly Digest", "author": "Bot", "content": "<p>Hello</p>",
		  "kindle_email": "x@kindle.com", "sender_email": "me@proton.me",
		  "app_password": "token"
		}'`,
	),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		log := cmdutil.NewLoggerOrExit(cfg)
		defer log.Close()

		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = cfg.GetListenAddr()
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		gin.SetMode(gin.ReleaseMode)
		srv := server.NewServer(cmdutil.NewComponent(cfg, log, dryRun), log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		util.GreenBold.Printf("Serving on %s\n", addr)
		if err := srv.Start(ctx, addr); err != nil {
			util.LogError(util.NetworkError, "serving", err)
			log.Close()
			os.Exit(1)
		}
	},
}
