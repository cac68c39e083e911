package cmd

import (
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/lithammer/dedent"
	"github.com/ryan-gang/smtp-to-kindle/internal/cmdutil"
	"github.com/ryan-gang/smtp-to-kindle/internal/epubgen"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
	addContentFlags(buildCmd.Flags())
	buildCmd.Flags().StringP("output", "o", "", "Output file (default <store path>/<title slug>.epub)")
}

var (
	helpBuild = `Builds the EPUB exactly as 'send' would and saves it locally instead of mailing it.
The file is written to the configured store path, or the current directory.`

	exampleBuild = dedent.Dedent(`
		# Build a book from an HTML file
		smtp-to-kindle build --content-file digest.html

		# Build a book from a web page into a chosen file
		smtp-to-kindle build --url "http://paulgraham.com/alien.html" -o alien.epub`,
	)
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Short:   "Build the EPUB and save it locally",
	Long:    helpBuild,
	Example: exampleBuild,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadConfigOrExit(cmd)

		doc, err := loadDocument(cmd.Flags())
		if err != nil {
			util.LogError(util.FileError, "loading content", err)
			os.Exit(1)
		}
		req := buildRequest(cmd.Flags(), cfg, doc)
		if req.Title == "" || req.Content == "" {
			util.LogErrorf(util.ValidationError, "building book", "title and content are required")
			os.Exit(1)
		}

		data, err := epubgen.NewBuilder().Build(epubgen.Book{Title: req.Title, Author: req.Author, Content: req.Content})
		if err != nil {
			util.LogError(util.EpubError, "building book", err)
			os.Exit(1)
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = defaultOutputPath(cfg.GetStorePath(), req.Title)
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			util.LogError(util.FileError, "saving book", err)
			os.Exit(1)
		}
		util.GreenBold.Printf("Saved %s (%d KB)\n", output, len(data)/1024)
	},
}

func defaultOutputPath(storeDir, title string) string {
	if storeDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			util.Red.Println("Error getting current directory, trying fallback")
			wd = "./"
		}
		storeDir = wd
	}

	titleSlug := slug.Make(title)
	if len(titleSlug) == 0 {
		titleSlug = "smtp-to-kindle-doc"
	}
	return filepath.Join(storeDir, titleSlug+".epub")
}
