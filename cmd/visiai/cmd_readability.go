package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/visiai/internal/domain/readability"
)

var readabilityCmd = &cobra.Command{
	Use:   "readability [file]",
	Short: "Score the readability of a text file or stdin",
	Example: `  visiai readability README.md
  curl -s https://example.com/terms.txt | visiai readability`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReadability,
}

func init() {
	rootCmd.AddCommand(readabilityCmd)
}

func runReadability(cmd *cobra.Command, args []string) error {
	var (
		text []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		text, err = os.ReadFile(args[0])
	} else {
		text, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(readability.Analyze(string(text)))
}
