package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mdmend"
)

func newConvertCommand(configFlag *string) *cobra.Command {
	var outFlag string
	var rawOutFlag string
	var modelFlag string
	var dpiFlag int
	var noCacheFlag bool
	var freshFlag bool
	var pagesDirFlag string

	cmd := &cobra.Command{
		Use:   "convert <pdf>",
		Short: "Render, transcribe, and restore a scanned PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdfPath := args[0]

			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			if modelFlag != "" {
				cfg.Vision.Model = modelFlag
			}
			if dpiFlag > 0 {
				cfg.DPI = dpiFlag
			}
			if noCacheFlag {
				cfg.DisableCache = true
			}

			conv, err := mdmend.New(cfg)
			if err != nil {
				return err
			}
			defer conv.Close()

			var opts []mdmend.ConvertOption
			if freshFlag {
				opts = append(opts, mdmend.WithFreshTranscription())
			}
			if pagesDirFlag != "" {
				opts = append(opts, mdmend.WithPageDir(pagesDirFlag))
			}

			res, err := conv.Convert(cmd.Context(), pdfPath, opts...)
			if err != nil {
				return err
			}

			rawPath := rawOutFlag
			if rawPath == "" {
				rawPath = basePath(pdfPath) + ".md"
			}
			cleanPath := outFlag
			if cleanPath == "" {
				cleanPath = basePath(pdfPath) + ".clean.md"
			}

			if err := os.WriteFile(rawPath, []byte(res.Raw), 0o644); err != nil {
				return fmt.Errorf("writing raw markdown: %w", err)
			}
			if err := os.WriteFile(cleanPath, []byte(res.Markdown), 0o644); err != nil {
				return fmt.Errorf("writing restored markdown: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(res, rawPath, cleanPath))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "output", "o", "", "Restored markdown output path (default <pdf>.clean.md)")
	cmd.Flags().StringVar(&rawOutFlag, "raw-output", "", "Raw transcription output path (default <pdf>.md)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Vision model override")
	cmd.Flags().IntVar(&dpiFlag, "dpi", 0, "Render resolution override")
	cmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "Disable the transcription cache")
	cmd.Flags().BoolVar(&freshFlag, "fresh", false, "Ignore cached transcriptions (still writes the cache)")
	cmd.Flags().StringVar(&pagesDirFlag, "pages-dir", "", "Keep rendered page images in this directory")

	return cmd
}

// basePath strips the extension from a file path.
func basePath(path string) string {
	if idx := strings.LastIndex(path, "."); idx > strings.LastIndexAny(path, "/\\") {
		return path[:idx]
	}
	return path
}
