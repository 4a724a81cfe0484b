package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	app "github.com/okian/crowdguess/internal/app"
	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/okian/crowdguess/internal/domain/round"
	"github.com/okian/crowdguess/internal/domain/types"
	"github.com/okian/crowdguess/pkg/logger"
)

const boardSize = 10

func playCmd() *cobra.Command {
	var player string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play rounds in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), player)
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "player name (prompted when empty)")
	return cmd
}

func runPlay(ctx context.Context, player string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	// Keep the terminal clean for the game.
	_ = logger.SetLevelString("error")

	svc, err := buildService(cfg, logger.Get())
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	if strings.TrimSpace(player) == "" {
		player, err = pterm.DefaultInteractiveTextInput.Show("Your name")
		if err != nil {
			return err
		}
	}

	pterm.DefaultHeader.Println("crowdguess")
	snap, err := svc.StartSession(ctx, strings.TrimSpace(player))
	if errors.Is(err, model.ErrNoCorpusAvailable) {
		pterm.Info.Println("You have played every question. Come back later!")
		return nil
	}
	if err != nil {
		return err
	}

	for {
		renderRound(snap)
		if snap.Round == nil {
			break
		}

		for !snap.Round.Resolved {
			guess, err := pterm.DefaultInteractiveTextInput.Show("Your guess")
			if err != nil {
				return err
			}
			next, err := svc.Guess(ctx, snap.SessionID, guess)
			if errors.Is(err, round.ErrEmptyGuess) {
				pterm.Warning.Println("Type a word or two.")
				continue
			}
			if err != nil {
				return err
			}
			snap = next
			renderFeedback(snap)
		}

		more, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(true).Show("Next question?")
		if err != nil {
			return err
		}
		if !more {
			break
		}
		next, err := svc.NextRound(ctx, snap.SessionID)
		if errors.Is(err, model.ErrNoCorpusAvailable) {
			pterm.Info.Println("That was the last question.")
			break
		}
		if err != nil {
			return err
		}
		snap = next
	}

	return showBoard(ctx, svc, snap)
}

func showBoard(ctx context.Context, svc *app.Service, snap types.SessionSnapshot) error {
	view, err := svc.Leaderboard(ctx, snap.PlayerID, boardSize)
	if err != nil {
		return err
	}
	pterm.DefaultSection.Println("Leaderboard")
	return renderLeaderboard(os.Stdout, view)
}
