package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ryan-gang/smtp-to-kindle/internal/kindle"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inputsCmd)
	inputsCmd.Flags().Bool("json", false, "Print the schema as JSON")
}

var inputsCmd = &cobra.Command{
	Use:   "inputs",
	Short: "Show the input schema of the delivery component",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(kindle.Inputs())
		}
		printInputs(kindle.Inputs())
		return nil
	},
}

func printInputs(inputs []kindle.Input) {
	util.CyanBold.Println("INPUTS")
	for _, in := range inputs {
		util.Green.Printf("  %-14s", in.Name)
		fmt.Printf(" %-10s %s", in.Kind, in.DisplayName)
		if in.ToolMode {
			util.Magenta.Print(" [tool]")
		}
		if in.Value != "" {
			fmt.Printf(" (default %s)", in.Value)
		}
		fmt.Println()
		fmt.Printf("  %-14s %s\n", "", in.Info)
	}
	util.CyanBold.Println("\nOUTPUT")
	util.Green.Printf("  %-14s", kindle.StatusOutput.Name)
	fmt.Printf(" %s\n", kindle.StatusOutput.DisplayName)
}
