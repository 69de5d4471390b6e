// Package cli implements the csvparse command, which converts a CSV file to
// JSON on the terminal using the same resolver and converter as the server.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arturomorarioja/csv-parser-api/internal/config"
	"github.com/arturomorarioja/csv-parser-api/internal/core"
)

var (
	baseDir     string
	compact     bool
	maxFileSize int64
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "csvparse [file]",
	Short: "Convert a CSV file to a JSON array of records",
	Long: `Reads a comma-separated file whose first non-blank row is the header and
prints one JSON object per data row, keyed by header name.

Relative paths are resolved under --base-dir and may not leave it.
Absolute paths are used as given.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runParse,
}

func init() {
	rootCmd.Flags().StringVarP(&baseDir, "base-dir", "b", "", "directory relative paths resolve under (default: working directory)")
	rootCmd.Flags().BoolVarP(&compact, "compact", "c", false, "print JSON on a single line")
	rootCmd.Flags().Int64Var(&maxFileSize, "max-size", core.DefaultMaxFileSize, "largest file to parse in bytes, 0 for no limit")
	rootCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "abort parsing after this long")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "csvparse: %v\n", cliMessage(err))
		return 1
	}
	return 0
}

func runParse(cmd *cobra.Command, args []string) error {
	dir := baseDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		dir = wd
	}

	svc, err := core.NewService(&config.Config{
		Files: config.FilesConfig{
			BaseDir:       dir,
			MaxFileSize:   maxFileSize,
			MaxConcurrent: 1,
			MaxWaitTime:   time.Second,
		},
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := svc.Parse(ctx, args[0])
	if err != nil {
		return err
	}
	return writeRecords(cmd, result.Records)
}

func writeRecords(cmd *cobra.Command, records core.RecordSequence) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

// cliMessage prefers the client-facing message and support code for core
// errors so the terminal output matches what the API would return.
func cliMessage(err error) string {
	if core.KindOf(err) == nil {
		return err.Error()
	}
	msg := core.MapError(err)
	return msg.Message + " (" + msg.Code + ")"
}
