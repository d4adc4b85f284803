package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mdmend"
)

func newRestoreCommand(configFlag *string) *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "restore <markdown>",
		Short: "Repair an existing raw page-by-page transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := args[0]

			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			cfg.DisableCache = true // restore never transcribes

			conv, err := mdmend.New(cfg)
			if err != nil {
				return err
			}
			defer conv.Close()

			raw, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			restored, err := conv.Restore(string(raw))
			if err != nil {
				return err
			}

			outPath := outFlag
			if outPath == "" {
				outPath = basePath(inPath) + ".clean.md"
			}
			if err := os.WriteFile(outPath, []byte(restored), 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "restored %s -> %s\n", inPath, outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "output", "o", "", "Output path (default <input>.clean.md)")

	return cmd
}
