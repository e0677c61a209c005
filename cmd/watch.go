package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/jobradar/internal/cycle"
	"github.com/matheuskafuri/jobradar/internal/schedule"
)

var (
	flagSchedule string
	flagNoRunNow bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run cycles on a schedule until interrupted",
	Long: `Run a cycle immediately and then on the configured cron schedule
(default "@every 2h"). A tick that fires while a cycle is still running is skipped.`,
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

		spec := a.cfg.ScheduleSpec()
		if flagSchedule != "" {
			spec = flagSchedule
		}
		opts := []schedule.Option{
			schedule.WithLogger(a.logger),
			schedule.OnResult(func(res *cycle.Result) {
				fmt.Println(renderSummary(res))
			}),
		}
		if !flagNoRunNow {
			opts = append(opts, schedule.Immediately())
		}

		s, err := schedule.New(spec, orch, opts...)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&flagSchedule, "schedule", "", `cron spec overriding the config (e.g. "@every 30m", "0 9 * * 1-5")`)
	watchCmd.Flags().BoolVar(&flagNoRunNow, "no-run-now", false, "wait for the first scheduled tick")
}
