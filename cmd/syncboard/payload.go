package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/syncboard"
)

// newPayloadCmd returns the command that normalizes a date-range form read
// from a JSON document.
func newPayloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Build a submission payload from a JSON form",
		Long: `Build a normalized submission payload from a JSON form document.

The start and end fields are converted to epoch milliseconds. Each --field
is copied into the payload data unchanged. Field names are JSON paths, so
nested values can be addressed as "range.start".

Use "-f -" to read the form from stdin.

Example:
  syncboard payload -f form.json --start from --end to --field metric --field host
  echo '{"from":"2024-03-01","to":"2024-03-02"}' | syncboard payload -f - --start from --end to`,
		RunE: runPayload,
	}

	cmd.Flags().StringP("form", "f", "", `path to JSON form, or "-" for stdin (required)`)
	cmd.Flags().String("start", "start", "name of the start date field")
	cmd.Flags().String("end", "end", "name of the end date field")
	cmd.Flags().StringSlice("field", nil, "name of a data field to copy (repeatable)")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func init() {
	rootCmd.AddCommand(newPayloadCmd())
}

func runPayload(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("form")
	startField, _ := cmd.Flags().GetString("start")
	endField, _ := cmd.Flags().GetString("end")
	fields, _ := cmd.Flags().GetStringSlice("field")

	raw, err := readForm(cmd, path)
	if err != nil {
		return fmt.Errorf("failed to read form: %w", err)
	}

	form, err := syncboard.NewJSONForm(raw)
	if err != nil {
		return err
	}

	payload, err := syncboard.BuildPayload(form, [2]string{startField, endField}, fields)
	if err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func readForm(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
