package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"bgg-go-crawler/internal/ioformats"
)

func categoriesCmd(flags *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Crawl game summaries per category into a CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			crawler, _, err := newCrawler(flags)
			if err != nil {
				return err
			}

			rows, stats, err := crawler.Run(cmd.Context())
			if err != nil && len(rows) == 0 {
				return err
			}
			if err != nil {
				// interrupted mid-run; keep what was collected
				slog.Warn("crawl ended early", "err", err)
			}

			w, closeOut, err := outputWriter(output)
			if err != nil {
				return err
			}
			defer closeOut()
			if err := ioformats.WriteSummaries(w, rows); err != nil {
				return err
			}
			slog.Info("summary CSV written", "rows", len(rows), "dropped", stats.Dropped())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file (default stdout)")
	return cmd
}
