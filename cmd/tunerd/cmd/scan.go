package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ottkit/tunerd/internal/database"
	"github.com/ottkit/tunerd/internal/ingestor"
	"github.com/ottkit/tunerd/internal/observability"
	"github.com/ottkit/tunerd/internal/repository"
)

var scanDryRun bool

// scanCmd scans recorded transport stream files into the channel database.
var scanCmd = &cobra.Command{
	Use:   "scan FILE...",
	Short: "Scan transport stream files into the channel database",
	Long: `Scan demuxes the signaling tables out of one or more recorded MPEG
transport stream files, builds a channel record for every program found, and
stores the records in the channel database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "scan and print channels without storing them")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := observability.WithComponent(slog.Default(), "scan")

	db, err := database.New(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("opening channel database: %w", err)
	}
	defer db.Close()

	repo := repository.NewChannelRepository(db.DB, log)
	scanner := ingestor.NewScanner(cfg.Scanner, log)

	total := 0
	for _, path := range args {
		ctx := cmd.Context()
		var cancel context.CancelFunc
		if cfg.Scanner.Timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, cfg.Scanner.Timeout)
		}
		channels, err := scanner.ScanFile(ctx, path)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}

		for _, c := range channels {
			if scanDryRun {
				fmt.Printf("%-8s %s\n", c.DisplayNumber(true), c)
				continue
			}
			if err := repo.Save(cmd.Context(), c); err != nil {
				return fmt.Errorf("saving channel %s: %w", c.DisplayNumber(true), err)
			}
		}
		total += len(channels)
		log.Info("file scanned",
			slog.String("file", path),
			slog.Int("channels", len(channels)),
		)
	}

	if !scanDryRun {
		fmt.Printf("stored %d channel(s)\n", total)
	}
	return nil
}
