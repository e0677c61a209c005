package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store and cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.store.Stats(ctx, a.dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Store:        %s\n", a.dbPath)
		fmt.Printf("Size:         %s\n", formatBytes(st.SizeBytes))
		fmt.Printf("Postings:     %d (%d hidden, %d bookmarked)\n", st.Postings, st.Hidden, st.Bookmarked)
		fmt.Printf("Ghosts:       %d likely\n", st.Ghosts)
		fmt.Printf("Repost keys:  %d\n", st.RepostKeys)
		if st.LastCycle.IsZero() {
			fmt.Println("Last cycle:   never")
		} else {
			fmt.Printf("Last cycle:   %s (%s ago)\n", st.LastCycle.Local().Format(time.DateTime),
				formatDuration(time.Since(st.LastCycle)))
		}
		cs := a.engine.Cache().Stats()
		fmt.Printf("Score cache:  capacity %d, freshness %s\n", cs.Capacity, a.cfg.CacheFreshness())
		return nil
	},
}

func formatDuration(d time.Duration) string {
	h := d.Hours()
	if days := int(h / 24); days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	if hours := int(h); hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
