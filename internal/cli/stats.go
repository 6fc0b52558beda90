package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
	"github.com/raphaelgruber/estatehub/internal/service"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show marketplace statistics",
	Long: `Show listing counts and the timings of the backend calls made to
compute them.

Examples:
  estatehub stats`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	var props []models.Property
	err := withProgress(cmd.Context(), "Loading listings", svc.Latency().Delay(metrics.OpListProperties), func(ctx context.Context) error {
		var err error
		props, err = svc.ListProperties(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("list properties: %w", err)
	}
	appState.SetProperties(props)

	all := appState.Properties()
	sale := service.FilterProperties(all, models.PropertyFilter{Type: models.ListingSale})
	rent := service.FilterProperties(all, models.PropertyFilter{Type: models.ListingRent})

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Marketplace")
	fmt.Fprintln(w, "═══════════════════════════════════════")
	fmt.Fprintf(w, "Listings:  %d\n", len(all))
	fmt.Fprintf(w, "For sale:  %d\n", len(sale))
	fmt.Fprintf(w, "For rent:  %d\n", len(rent))
	fmt.Fprintf(w, "Featured:  %d\n", len(service.FeaturedProperties(all, 0)))
	if user := appState.Session(); user != nil {
		fmt.Fprintf(w, "Yours:     %d\n", len(service.PropertiesByOwner(all, user.ID)))
	}
	fmt.Fprintf(w, "Storage:   %s\n\n", cfg.Storage)

	if !showStats {
		printStats(w, svc.Metrics().Snapshot())
	}
	return nil
}
