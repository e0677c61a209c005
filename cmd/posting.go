package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/jobradar/internal/score"
)

var postingCmd = &cobra.Command{
	Use:   "posting",
	Short: "Inspect or flag a single posting by hash prefix",
}

var postingShowCmd = &cobra.Command{
	Use:   "show <hash>",
	Short: "Print everything stored about a posting",
	Args:  cobra.ExactArgs(1),
	RunE: withPosting(func(ctx context.Context, a *app, hash string, _ []string) error {
		p, err := a.store.Get(ctx, hash)
		if err != nil {
			return err
		}

		fmt.Println(titleStyle.Render(p.Title))
		fmt.Println(dimStyle.Render(strings.Join(nonEmpty(p.Company, p.Location, p.Source), " · ")))
		fmt.Printf("\nhash        %s\n", p.Hash)
		fmt.Printf("score       %.2f\n", p.Score)
		b := p.Breakdown
		fmt.Printf("breakdown   skills %.2f · salary %.2f · location %.2f · company %.2f · recency %.2f\n",
			b.Skills, b.Salary, b.Location, b.Company, b.Recency)
		fmt.Printf("seen        %d times, first %s, last %s\n", p.TimesSeen,
			p.FirstSeen.Local().Format("Jan 2 15:04"), p.LastSeen.Local().Format("Jan 2 15:04"))
		fmt.Printf("ghost       %.2f (%s)\n", p.GhostScore, score.Level(p.GhostScore))
		for _, r := range p.GhostReasons {
			fmt.Printf("            - %s\n", r)
		}
		fmt.Printf("flags       hidden=%t bookmarked=%t\n", p.Hidden, p.Bookmarked)
		if p.Notes != "" {
			fmt.Printf("notes       %s\n", p.Notes)
		}
		fmt.Printf("url         %s\n", p.URL)
		return nil
	}),
}

func flagCommand(use, short, done string, set func(ctx context.Context, a *app, hash string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <hash>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withPosting(func(ctx context.Context, a *app, hash string, _ []string) error {
			if err := set(ctx, a, hash); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", done, hash[:min(8, len(hash))])
			return nil
		}),
	}
}

var postingNoteCmd = &cobra.Command{
	Use:   "note <hash> [text...]",
	Short: "Set the notes on a posting; no text clears them",
	Args:  cobra.MinimumNArgs(1),
	RunE: withPosting(func(ctx context.Context, a *app, hash string, rest []string) error {
		notes := strings.TrimSpace(strings.Join(rest, " "))
		if err := a.store.SetNotes(ctx, hash, notes); err != nil {
			return err
		}
		if notes == "" {
			fmt.Println("Notes cleared.")
		} else {
			fmt.Println("Notes saved.")
		}
		return nil
	}),
}

func init() {
	postingCmd.AddCommand(
		postingShowCmd,
		flagCommand("hide", "Hide a posting from lists and alerts", "Hid", func(ctx context.Context, a *app, h string) error {
			return a.store.SetHidden(ctx, h, true)
		}),
		flagCommand("unhide", "Show a hidden posting again", "Unhid", func(ctx context.Context, a *app, h string) error {
			return a.store.SetHidden(ctx, h, false)
		}),
		flagCommand("bookmark", "Bookmark a posting", "Bookmarked", func(ctx context.Context, a *app, h string) error {
			return a.store.SetBookmarked(ctx, h, true)
		}),
		flagCommand("unbookmark", "Remove a bookmark", "Unbookmarked", func(ctx context.Context, a *app, h string) error {
			return a.store.SetBookmarked(ctx, h, false)
		}),
		postingNoteCmd,
	)
}

// withPosting opens the app and resolves args[0] before calling fn.
func withPosting(fn func(ctx context.Context, a *app, hash string, rest []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		hash, err := a.resolve(ctx, args[0])
		if err != nil {
			return err
		}
		return fn(ctx, a, hash, args[1:])
	}
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
