package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/jobradar/internal/classify"
	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/store"
)

var (
	flagListLimit      int
	flagListMinScore   float64
	flagListBookmarked bool
	flagListHidden     bool
	flagListOrder      string
	flagListSource     []string
	flagListSearch     string
	flagListRole       string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored postings",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := sinceFlag()
		if err != nil {
			return err
		}
		switch flagListOrder {
		case store.OrderScore, store.OrderRecent, store.OrderGhost:
		default:
			return fmt.Errorf("invalid --order %q (want score, recent or ghost)", flagListOrder)
		}

		var role classify.Role
		if flagListRole != "" {
			if role, err = classify.ResolveAlias(flagListRole); err != nil {
				return err
			}
		}
		limit := flagListLimit
		if role != "" {
			// roles are derived, so filter after a wide query
			limit = 5000
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		postings, err := a.store.List(ctx, store.QueryOpts{
			Since:          since,
			Sources:        flagListSource,
			Search:         flagListSearch,
			MinScore:       flagListMinScore,
			IncludeHidden:  flagListHidden,
			BookmarkedOnly: flagListBookmarked,
			OrderBy:        flagListOrder,
			Limit:          limit,
		})
		if err != nil {
			return fmt.Errorf("listing postings: %w", err)
		}
		if role != "" {
			postings = slices.DeleteFunc(postings, func(p job.Posting) bool {
				return classify.Classify(p.Title, p.Description) != role
			})
			if flagListLimit > 0 && len(postings) > flagListLimit {
				postings = postings[:flagListLimit]
			}
		}
		if len(postings) == 0 {
			fmt.Println("No postings found.")
			return nil
		}
		for _, p := range postings {
			fmt.Println(postingLine(p))
		}
		return nil
	},
}

func init() {
	f := listCmd.Flags()
	f.IntVarP(&flagListLimit, "limit", "n", 20, "maximum postings to print")
	f.Float64Var(&flagListMinScore, "min-score", 0, "only postings scoring at least this (0-1)")
	f.BoolVar(&flagListBookmarked, "bookmarked", false, "only bookmarked postings")
	f.BoolVar(&flagListHidden, "all", false, "include hidden postings")
	f.StringVar(&flagListOrder, "order", store.OrderScore, "sort by score, recent or ghost")
	f.StringSliceVar(&flagListSource, "source", nil, "only these sources")
	f.StringVar(&flagListSearch, "search", "", "match title, company or description")
	f.StringVar(&flagListRole, "role", "", "only one role: backend, frontend, data, infra, security, mobile, manager, other")
	f.StringVar(&flagSince, "since", "", "only postings seen in the last duration (e.g., 7d, 24h)")
}
