package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ottkit/tunerd/internal/database"
	"github.com/ottkit/tunerd/internal/observability"
	"github.com/ottkit/tunerd/internal/repository"
	"github.com/ottkit/tunerd/internal/tuner"
)

// listCmd prints the stored channel records.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored channels",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := observability.WithComponent(slog.Default(), "list")

	db, err := database.New(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("opening channel database: %w", err)
	}
	defer db.Close()

	repo := repository.NewChannelRepository(db.DB, log)
	channels, err := repo.GetAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing channels: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tNAME\tSERVICE\tVIDEO\tAUDIO\tLOCKED")
	for _, c := range channels {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%t\n",
			c.ChannelID(),
			c.DisplayNumber(true),
			c.Name(),
			c.ServiceTypeName(),
			formatPID(c.VideoPID()),
			formatPID(c.AudioPID()),
			c.IsLocked(),
		)
	}
	return w.Flush()
}

// formatPID renders a PID, with "-" for the invalid sentinel.
func formatPID(pid int) string {
	if pid == tuner.InvalidPID {
		return "-"
	}
	return fmt.Sprintf("%d", pid)
}
