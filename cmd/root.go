package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/jobradar/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagSince   string
	flagRefresh bool
	flagConfig  string
	flagVerbose bool
	flagCheck   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Job posting radar",
	Long: `jobradar polls job boards and feeds, scores every posting against your
preferences, flags likely ghost postings and keeps a deduplicated local history.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetDefault(newLogger(os.Stderr))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), false)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&flagSince, "since", "", "only show postings seen in the last duration (e.g., 7d, 24h)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "force a scan before launching")
	browseCmd.Flags().AddFlagSet(rootCmd.Flags())

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(postingCmd)
	rootCmd.AddCommand(statsCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch straight into the postings browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), true)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jobradar %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		if r := update.NewChecker("").Check(cmd.Context(), version); r != nil {
			fmt.Printf("Update available: v%s %s\n", r.LatestVersion, r.URL)
		} else {
			fmt.Println("You are up to date.")
		}
	},
}

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	if flagVerbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
