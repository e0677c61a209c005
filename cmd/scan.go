package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scrape, score and persist cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		orch, err := a.orchestrator()
		if err != nil {
			return err
		}

		res, err := orch.Run(ctx)
		if res != nil {
			fmt.Println(renderSummary(res))
		}
		if err != nil {
			return fmt.Errorf("running cycle: %w", err)
		}
		return nil
	},
}
