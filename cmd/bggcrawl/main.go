package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bgg-go-crawler/internal/catalog"
	"bgg-go-crawler/internal/config"
	"bgg-go-crawler/internal/fetch"
	"bgg-go-crawler/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	verbose    bool
}

func rootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "bggcrawl",
		Short:         "Crawl the BoardGameGeek catalog into CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.Setup(flags.verbose)
		},
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "TOML config file (optional, defaults built in)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(categoriesCmd(flags), detailsCmd(flags))
	return cmd
}

// newCrawler wires config, transport and orchestrator for a subcommand run.
func newCrawler(flags *rootFlags) (*catalog.Crawler, config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, cfg, err
	}
	client := fetch.New(fetch.Options{
		UserAgent:         cfg.UserAgent,
		Timeout:           time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.Fetch.MaxRetries,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
		SiteRoot:          cfg.SiteRoot,
		APIBase:           cfg.APIBase,
	})
	return catalog.New(client, cfg), cfg, nil
}

// outputWriter opens path for writing, or stdout when path is empty.
func outputWriter(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
