package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	appscans "github.com/bryanwahyu/visiai/internal/application/scans"
	"github.com/bryanwahyu/visiai/internal/bootstrap"
	"github.com/bryanwahyu/visiai/internal/config"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze one page and print the scan record as JSON",
	Long: `Runs the full analysis pipeline for one URL without persisting the result.
Nothing is written to the database or object storage.`,
	Example: `  # Analyze with providers from ./config.yaml
  visiai analyze https://example.com

  # Supply your own screenshot instead of the captured one
  visiai analyze https://example.com --screenshot shot.png --config prod.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeScreenshot string

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeScreenshot, "screenshot", "", "Image file to use as the page screenshot")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := bootstrap.ConfigureLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	shot := ""
	if analyzeScreenshot != "" {
		if shot, err = readScreenshot(analyzeScreenshot); err != nil {
			return err
		}
	}

	ctx := context.Background()
	svc, rdb := bootstrap.Analyzers(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	scan, err := svc.Evaluate(ctx, appscans.AnalyzeCommand{URL: args[0], Screenshot: shot})
	if err != nil {
		return err
	}
	// base64 screenshots would drown the printed record
	scan.Screenshot = ""

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(scan)
}

// loadConfig reads --config, then $CONFIG_PATH, then ./config.yaml. Only an
// explicitly named file has to exist.
func loadConfig() (*config.Config, error) {
	path, explicit := configPath, configPath != ""
	if !explicit {
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path, explicit = v, true
		} else {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logrus.Debugf("no %s, using defaults", path)
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func readScreenshot(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read screenshot: %w", err)
	}
	ct := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", ct, base64.StdEncoding.EncodeToString(data)), nil
}
