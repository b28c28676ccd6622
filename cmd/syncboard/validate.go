package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/syncboard/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a SyncBoard configuration file without starting the server.

This command loads a .env file if present, parses the YAML, expands
environment variables, and validates all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  syncboard validate -c config.yaml
  syncboard validate --config /etc/syncboard/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	// a missing .env is fine; variables may come from the environment
	_ = godotenv.Load()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	charts := config.BuildCharts(cfg)
	directCharts := len(cfg.Charts)
	gridCharts := len(charts) - directCharts

	seen := make(map[string]bool, len(charts))
	reference := "none"
	for _, c := range charts {
		if seen[c.Name] {
			return fmt.Errorf("invalid config: duplicate chart name %q", c.Name)
		}
		seen[c.Name] = true
		if c.Reference {
			reference = c.Name
		}
	}

	follow := "off"
	if cfg.Follow != nil {
		if !seen[cfg.Follow.Chart] {
			return fmt.Errorf("invalid config: follow chart %q is not configured", cfg.Follow.Chart)
		}
		follow = fmt.Sprintf("%s every %s", cfg.Follow.Chart, cfg.Follow.Interval.Duration())
	}

	window := "14 days ending at startup"
	if cfg.Window.Lookback != 0 {
		window = fmt.Sprintf("%s ending at startup", cfg.Window.Lookback.Duration())
	} else if r, ok := cfg.Window.Range(time.Now()); ok {
		window = r.String()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:      %d\n", cfg.Port)
	fmt.Fprintf(out, "  Window:    %s\n", window)
	fmt.Fprintf(out, "  Reference: %s\n", reference)
	fmt.Fprintf(out, "  Follow:    %s\n", follow)
	fmt.Fprintf(out, "  Charts:    %d direct + %d from grids = %d total\n",
		directCharts, gridCharts, len(charts))

	return nil
}
