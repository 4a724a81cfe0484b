package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crowdguess",
		Short:         "Guess what the crowd answered and climb the leaderboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $CROWDGUESS_CONFIG)")

	root.AddCommand(serveCmd())
	root.AddCommand(playCmd())
	root.AddCommand(leaderboardCmd())
	root.AddCommand(loadtestCmd())

	return root
}
