package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagMerge bool

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "Find postings that look like the same job",
	Long: `Group visible postings by normalized title and company. The primary of each
group is its best-scoring member. With --merge every other member is hidden.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		groups, err := a.store.FindDuplicateGroups(ctx)
		if err != nil {
			return fmt.Errorf("finding duplicates: %w", err)
		}
		if len(groups) == 0 {
			fmt.Println("No duplicates found.")
			return nil
		}

		hidden := 0
		for _, g := range groups {
			fmt.Println(titleStyle.Render(g.Primary.Title) + dimStyle.Render(fmt.Sprintf(" (%d postings)", len(g.Members))))
			fmt.Println("  keep " + postingLine(g.Primary))
			for _, o := range g.Others() {
				fmt.Println("  dup  " + postingLine(o))
			}
			if flagMerge {
				n, err := a.store.MergeGroup(ctx, g)
				if err != nil {
					return fmt.Errorf("merging %q: %w", g.Key, err)
				}
				hidden += n
			}
		}

		if flagMerge {
			fmt.Printf("\nHid %d duplicate(s) across %d group(s).\n", hidden, len(groups))
		} else {
			fmt.Printf("\n%d group(s). Run with --merge to hide the duplicates.\n", len(groups))
		}
		return nil
	},
}

func init() {
	dupesCmd.Flags().BoolVar(&flagMerge, "merge", false, "hide every non-primary member")
}
