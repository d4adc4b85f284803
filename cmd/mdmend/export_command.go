package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mdmend"
)

func newExportCommand(configFlag *string) *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "export <markdown>",
		Short: "Export the document's tables to an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := args[0]

			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			cfg.DisableCache = true

			conv, err := mdmend.New(cfg)
			if err != nil {
				return err
			}
			defer conv.Close()

			md, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			outPath := outFlag
			if outPath == "" {
				outPath = basePath(inPath) + ".xlsx"
			}

			n, err := conv.ExportTables(string(md), outPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d tables to %s\n", n, outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "output", "o", "", "Output path (default <input>.xlsx)")

	return cmd
}
