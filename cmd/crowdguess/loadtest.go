package main

import (
	"context"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/okian/crowdguess/internal/loadtest"
)

func loadtestCmd() *cobra.Command {
	cfg := loadtest.Config{}
	var logFile string

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Play concurrent simulated players against a server and verify totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadtest(cmd.Context(), &cfg, logFile)
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", loadtest.DefaultBaseURL, "base URL of the service")
	cmd.Flags().IntVar(&cfg.Players, "players", loadtest.DefaultPlayers, "number of simulated players")
	cmd.Flags().IntVar(&cfg.Rounds, "rounds", loadtest.DefaultRounds, "rounds per player")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "concurrent players (default: CPU cores * 2)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", loadtest.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().StringVar(&cfg.OutputFile, "output", "", "write per-player results as JSON")
	cmd.Flags().StringVar(&logFile, "log", "", "log file (default: loadtest_TIMESTAMP.log)")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "log every round")
	return cmd
}

func runLoadtest(ctx context.Context, cfg *loadtest.Config, logFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := loadtest.SetupLogging(logFile); err != nil {
		return err
	}

	stats, runErr := loadtest.Run(ctx, cfg)
	if stats != nil {
		_ = pterm.DefaultTable.WithHasHeader().WithData(statsTable(stats)).Render()
		if len(stats.Mismatches) > 0 {
			rows := pterm.TableData{{"Player", "Awarded", "Leaderboard"}}
			for _, m := range stats.Mismatches {
				rows = append(rows, []string{m.PlayerID, strconv.FormatInt(m.Expected, 10), strconv.FormatInt(m.Actual, 10)})
			}
			_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		}
	}
	if runErr != nil {
		pterm.Error.Println(runErr.Error())
		return runErr
	}
	pterm.Success.Println("every leaderboard total matches the points awarded")
	return nil
}

func statsTable(s *loadtest.Stats) pterm.TableData {
	return pterm.TableData{
		{"Metric", "Value"},
		{"Players", strconv.Itoa(s.Players)},
		{"Rounds played", strconv.Itoa(s.RoundsPlayed)},
		{"Matches", strconv.Itoa(s.Matches)},
		{"Failed players", strconv.Itoa(s.Failures)},
		{"Points awarded", strconv.FormatInt(s.PointsAwarded, 10)},
		{"Players verified", strconv.Itoa(s.Verified)},
		{"Duration", s.Duration.String()},
	}
}
