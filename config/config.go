package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Config captures all command-line options required to run the converter.
type Config struct {
	InputDir      string
	OutputDir     string
	Concurrency   int
	NoBrowser     bool
	RenderTimeout time.Duration
	StateDir      string
	DryRun        bool
	LogLevel      string
	LogDir        string
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) error {
	defaultStateDir, err := defaultStateDir()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	flags.String("input", "", "Directory containing .eml and .msg files to convert")
	flags.String("output", "", "Directory for generated PDFs (default: <input>/PDFs)")
	flags.Int("concurrency", 50, "Maximum number of files converted at the same time")
	flags.Bool("no-browser", false, "Skip headless Chrome and always use the text fallback")
	flags.Duration("render-timeout", 30*time.Second, "Timeout for a single HTML-to-PDF render")
	flags.String("state-dir", defaultStateDir, "Directory for conversion state files")
	flags.Bool("dry-run", false, "Resolve output names without writing PDFs or state")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (logs to stdout only when empty)")
	flags.StringArray("include-header", nil, "Regex allow-list applied to message headers (mutually exclusive with exclude flags)")
	flags.StringArray("include-body", nil, "Regex allow-list applied to message bodies (mutually exclusive with exclude flags)")
	flags.StringArray("exclude-header", nil, "Regex block-list applied to message headers (mutually exclusive with include flags)")
	flags.StringArray("exclude-body", nil, "Regex block-list applied to message bodies (mutually exclusive with include flags)")

	return cmd.MarkFlagRequired("input")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	inputDir, err := flags.GetString("input")
	if err != nil {
		return Config{}, err
	}
	outputDir, err := flags.GetString("output")
	if err != nil {
		return Config{}, err
	}
	concurrency, err := flags.GetInt("concurrency")
	if err != nil {
		return Config{}, err
	}
	noBrowser, err := flags.GetBool("no-browser")
	if err != nil {
		return Config{}, err
	}
	renderTimeout, err := flags.GetDuration("render-timeout")
	if err != nil {
		return Config{}, err
	}
	stateDir, err := flags.GetString("state-dir")
	if err != nil {
		return Config{}, err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	includeHeader, err := flags.GetStringArray("include-header")
	if err != nil {
		return Config{}, err
	}
	includeBody, err := flags.GetStringArray("include-body")
	if err != nil {
		return Config{}, err
	}
	excludeHeader, err := flags.GetStringArray("exclude-header")
	if err != nil {
		return Config{}, err
	}
	excludeBody, err := flags.GetStringArray("exclude-body")
	if err != nil {
		return Config{}, err
	}

	if outputDir == "" {
		outputDir = filepath.Join(inputDir, "PDFs")
	}

	if stateDir == "" {
		stateDir, err = defaultStateDir()
		if err != nil {
			return Config{}, err
		}
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	cfg := Config{
		InputDir:      filepath.Clean(inputDir),
		OutputDir:     filepath.Clean(outputDir),
		Concurrency:   concurrency,
		NoBrowser:     noBrowser,
		RenderTimeout: renderTimeout,
		StateDir:      filepath.Clean(stateDir),
		DryRun:        dryRun,
		LogLevel:      logLevel,
		LogDir:        logDir,
		IncludeHeader: includeHeader,
		IncludeBody:   includeBody,
		ExcludeHeader: excludeHeader,
		ExcludeBody:   excludeBody,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.InputDir == "" {
		return fmt.Errorf("--input is required")
	}
	info, err := os.Stat(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path %s is not a directory", cfg.InputDir)
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive")
	}
	if cfg.RenderTimeout <= 0 {
		return fmt.Errorf("--render-timeout must be positive")
	}
	includeActive := len(cfg.IncludeHeader) > 0 || len(cfg.IncludeBody) > 0
	excludeActive := len(cfg.ExcludeHeader) > 0 || len(cfg.ExcludeBody) > 0
	if includeActive && excludeActive {
		return fmt.Errorf("include and exclude flags are mutually exclusive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

func defaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".eml-to-pdf", "state"), nil
}
