package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	mboxlib "github.com/emersion/go-mbox"
	"github.com/spf13/cobra"
)

// newMboxExtractCmd builds the subcommand that splits an .mbox archive
// into individual .eml files, so mailbox exports can feed the converter.
func newMboxExtractCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "mbox-extract [mbox file]",
		Short: "Split an mbox archive into .eml files for conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := extractMbox(args[0], outputDir)
			if err != nil {
				return err
			}
			fmt.Printf("Extracted %d messages to %s\n", count, outputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory for extracted .eml files")
	return cmd
}

func extractMbox(mboxPath, outputDir string) (int, error) {
	file, err := os.Open(mboxPath)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	reader := mboxlib.NewReader(file)
	count := 0
	for idx := 0; ; idx++ {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, fmt.Errorf("message %d: %w", idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return count, fmt.Errorf("message %d read: %w", idx, err)
		}

		name := filepath.Join(outputDir, fmt.Sprintf("message_%06d.eml", idx))
		if err := os.WriteFile(name, raw, 0o644); err != nil {
			return count, fmt.Errorf("write %s: %w", name, err)
		}
		count++
	}
}
