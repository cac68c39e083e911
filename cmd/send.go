package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/lithammer/dedent"
	"github.com/ryan-gang/smtp-to-kindle/internal/cmdutil"
	"github.com/ryan-gang/smtp-to-kindle/internal/config"
	"github.com/ryan-gang/smtp-to-kindle/internal/epubgen"
	"github.com/ryan-gang/smtp-to-kindle/internal/kindle"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const fetchTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(sendCmd)
	addContentFlags(sendCmd.Flags())

	sendCmd.Flags().String("kindle-email", "", "Kindle address to deliver to (overrides config)")
	sendCmd.Flags().String("sender-email", "", "Sender address approved for your Kindle (overrides config)")
	sendCmd.Flags().String("password", "", "Password or app token of the sender account (overrides config)")
	sendCmd.Flags().String("smtp-server", "", "SMTP server (overrides config, default "+kindle.DefaultSMTPServer+")")
	sendCmd.Flags().String("smtp-port", "", "SMTP port, STARTTLS is used (overrides config, default "+kindle.DefaultSMTPPort+")")
	sendCmd.Flags().IntP("mail-timeout", "m", config.DefaultTimeout, "Mail timeout in seconds")
	sendCmd.Flags().Bool("dry-run", false, "Build the book and log the mail instead of sending it")
}

var (
	helpLong = `Wraps HTML into a single chapter EPUB and mails it to your Kindle.
Content can be given inline, read from an HTML file or fetched from a web page.
Account settings come from the config file and environment and can be
overridden with flags.`

	helpExample = dedent.Dedent(`
		# Send an inline HTML snippet
		smtp-to-kindle send --title "Weekly Digest" --author Bot --content "<p>Hello</p>"

		# Send an HTML file, title and author are taken from the document when present
		smtp-to-kindle send --content-file digest.html

		# Send a web page reduced to its readable article
		smtp-to-kindle send --url "http://paulgraham.com/alien.html"`,
	)
)

var sendCmd = &cobra.Command{
	Use:     "send",
	Short:   "Send HTML to your Kindle",
	Long:    helpLong,
	Example: helpExample,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)
		log := cmdutil.NewLoggerOrExit(cfg)

		doc, err := loadDocument(cmd.Flags())
		if err != nil {
			util.LogError(util.FileError, "loading content", err)
			log.Close()
			os.Exit(1)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		component := cmdutil.NewComponent(cfg, log, dryRun)
		if cmd.Flags().Changed("mail-timeout") {
			seconds, _ := cmd.Flags().GetInt("mail-timeout")
			component.SetMailTimeout(time.Duration(seconds) * time.Second)
		}

		res := component.Deliver(cmd.Context(), buildRequest(cmd.Flags(), cfg, doc))
		log.Close()
		if !res.OK {
			util.Red.Println(res.Message)
			os.Exit(1)
		}
		util.GreenBold.Println(res.Message)
	},
}

func addContentFlags(flags *pflag.FlagSet) {
	flags.StringP("title", "t", "", "Book title, also the email subject and file name")
	flags.StringP("author", "a", "", "Book author")
	flags.String("content", "", "HTML content, embedded verbatim")
	flags.StringP("content-file", "f", "", "Read HTML content from a file")
	flags.StringP("url", "u", "", "Fetch a web page and send its readable article")
}

// loadDocument reads content from --url, --content-file or --content, in that order
func loadDocument(flags *pflag.FlagSet) (epubgen.Document, error) {
	if pageURL, _ := flags.GetString("url"); pageURL != "" {
		util.Cyan.Printf("Fetching %s\n", pageURL)
		return epubgen.FromURL(pageURL, fetchTimeout)
	}
	if filename, _ := flags.GetString("content-file"); filename != "" {
		content, err := util.ReadContent(filename)
		if err != nil {
			return epubgen.Document{}, err
		}
		doc, err := epubgen.ExtractDocument(content)
		if err != nil {
			return epubgen.Document{}, err
		}
		if doc.Title == "" {
			doc.Title = util.FileStem(filename)
		}
		return doc, nil
	}
	content, _ := flags.GetString("content")
	return epubgen.Document{Content: content}, nil
}

func flagOr(flags *pflag.FlagSet, name, fallback string) string {
	if v, _ := flags.GetString(name); v != "" {
		return v
	}
	return fallback
}

// buildRequest layers flags over the loaded document over the configuration
func buildRequest(flags *pflag.FlagSet, cfg config.ConfigProvider, doc epubgen.Document) kindle.Request {
	author := doc.Author
	if author == "" {
		author = cfg.GetAuthor()
	}
	port := ""
	if cfg.GetPort() != 0 {
		port = strconv.Itoa(cfg.GetPort())
	}

	return kindle.Request{
		Author:      flagOr(flags, "author", author),
		Title:       flagOr(flags, "title", doc.Title),
		Content:     doc.Content,
		KindleEmail: flagOr(flags, "kindle-email", cfg.GetReceiver()),
		SenderEmail: flagOr(flags, "sender-email", cfg.GetSender()),
		AppPassword: flagOr(flags, "password", cfg.GetPassword()),
		SMTPServer:  flagOr(flags, "smtp-server", cfg.GetServer()),
		SMTPPort:    flagOr(flags, "smtp-port", port),
	}.WithDefaults()
}
