package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"bgg-go-crawler/internal/ioformats"
)

func detailsCmd(flags *rootFlags) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "details",
		Short: "Fetch per-game details for urls from a summary CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			urls, err := ioformats.ReadURLs(input)
			if err != nil {
				return err
			}
			slog.Info("urls loaded", "count", len(urls))

			crawler, _, err := newCrawler(flags)
			if err != nil {
				return err
			}
			rows := crawler.Details(cmd.Context(), urls)

			w, closeOut, err := outputWriter(output)
			if err != nil {
				return err
			}
			defer closeOut()
			if err := ioformats.WriteDetails(w, rows); err != nil {
				return err
			}
			slog.Info("detail CSV written", "rows", len(rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input CSV/NDJSON with a url column (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file (default stdout)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
