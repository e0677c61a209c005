package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/jobradar/internal/score"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show or change the scoring weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showWeights(cmd)
	},
}

var weightsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active scoring weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showWeights(cmd)
	},
}

var weightsSetCmd = &cobra.Command{
	Use:   "set name=value...",
	Short: "Change scoring weights",
	Long: `Change one or more weights, e.g.

  jobradar weights set skills=0.5 recency=0.0 company=0.05

Unnamed weights keep their current value. The five weights must sum to 1.0
(within 0.01). The result is stored and overrides the config file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		w, err := parseWeightArgs(a.engine.Weights(), args)
		if err != nil {
			return err
		}
		if err := a.engine.SetWeights(w); err != nil {
			return err
		}
		if err := a.store.SaveWeights(ctx, w); err != nil {
			return fmt.Errorf("saving weights: %w", err)
		}
		fmt.Println("Weights saved.")
		printWeights(w, "stored")
		return nil
	},
}

var weightsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Store the config file weights again",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		w := a.cfg.Weights()
		if err := a.store.SaveWeights(ctx, w); err != nil {
			return fmt.Errorf("saving weights: %w", err)
		}
		printWeights(w, "config")
		return nil
	},
}

func init() {
	weightsCmd.AddCommand(weightsShowCmd, weightsSetCmd, weightsResetCmd)
}

func showWeights(cmd *cobra.Command) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	origin := "config"
	if a.savedWeights {
		origin = "stored"
	}
	printWeights(a.engine.Weights(), origin)
	return nil
}

func printWeights(w score.Weights, origin string) {
	rows := []struct {
		name string
		v    float64
	}{
		{"skills", w.Skills},
		{"salary", w.Salary},
		{"location", w.Location},
		{"company", w.Company},
		{"recency", w.Recency},
	}
	for _, r := range rows {
		fmt.Printf("  %-9s %.2f  %s\n", r.name, r.v, dimStyle.Render(strings.Repeat("█", int(r.v*40+0.5))))
	}
	fmt.Println(dimStyle.Render(fmt.Sprintf("  sum %.2f (%s)", w.Sum(), origin)))
}

// parseWeightArgs applies name=value pairs on top of base.
func parseWeightArgs(base score.Weights, args []string) (score.Weights, error) {
	w := base
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return w, fmt.Errorf("expected name=value, got %q", arg)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return w, fmt.Errorf("weight %s: %w", name, err)
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "skills":
			w.Skills = v
		case "salary":
			w.Salary = v
		case "location":
			w.Location = v
		case "company":
			w.Company = v
		case "recency":
			w.Recency = v
		default:
			return w, fmt.Errorf("unknown weight %q (want skills, salary, location, company or recency)", name)
		}
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}
