package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/crowdguess/internal/adapters/repository"
	"github.com/okian/crowdguess/internal/config"
	"github.com/okian/crowdguess/internal/domain/leaderboard"
	"github.com/okian/crowdguess/pkg/logger"
)

// errEphemeralStore is returned when the leaderboard command is pointed at
// the in-memory store, which holds nothing outside a running server.
var errEphemeralStore = errors.New("the memory store does not outlive the server; set store to sqlite")

func leaderboardCmd() *cobra.Command {
	var (
		limit  int
		player string
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard from the configured SQLite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(cmd.Context(), limit, player)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", boardSize, "number of players to show")
	cmd.Flags().StringVar(&player, "player", "", "also show this player's standing")
	return cmd
}

func runLeaderboard(ctx context.Context, limit int, player string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	_ = logger.SetLevelString("error")
	return printLeaderboard(ctx, cfg, os.Stdout, limit, player)
}

// printLeaderboard reads the persisted store directly. No feed or service
// is built.
func printLeaderboard(ctx context.Context, cfg *config.Config, w io.Writer, limit int, player string) error {
	if cfg.Store != config.StoreSQLite {
		return errEphemeralStore
	}
	db, err := repository.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer db.Close()

	if limit > cfg.MaxLeaderboardLimit {
		limit = cfg.MaxLeaderboardLimit
	}
	view, err := leaderboard.New(db).View(ctx, player, limit)
	if err != nil {
		return err
	}
	return renderLeaderboard(w, view)
}
