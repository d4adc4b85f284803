package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"mdmend"
)

// renderSummary renders the post-convert summary table.
func renderSummary(res *mdmend.Result, rawPath, cleanPath string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	tw.AppendRow(table.Row{"Pages", res.Pages})
	tw.AppendRow(table.Row{"From cache", res.CachedPages})
	tw.AppendRow(table.Row{"Failed pages", formatFailedPages(res.FailedPages)})
	tw.AppendRow(table.Row{"Elapsed", res.Elapsed.Round(100 * time.Millisecond)})
	tw.AppendRow(table.Row{"Raw output", rawPath})
	tw.AppendRow(table.Row{"Restored output", cleanPath})
	if res.HasTextLayer {
		tw.AppendRow(table.Row{"Note", "PDF already has a text layer"})
	}

	return tw.Render()
}

func formatFailedPages(pages []int) string {
	if len(pages) == 0 {
		return "none"
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("%d (%s)", len(pages), strings.Join(parts, ", "))
}
