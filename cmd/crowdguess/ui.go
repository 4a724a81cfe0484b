package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/okian/crowdguess/internal/domain/round"
	"github.com/okian/crowdguess/internal/domain/types"
)

// renderRound prints the current question and round status.
func renderRound(snap types.SessionSnapshot) {
	if snap.Round == nil {
		pterm.Info.Println("No more questions. Thanks for playing!")
		return
	}
	r := snap.Round
	pterm.DefaultSection.Println(r.Question)
	pterm.Printf("Attempts left: %d    Total score: %d\n", r.AttemptsLeft, snap.TotalScore)
}

// renderFeedback prints the outcome of the last guess.
func renderFeedback(snap types.SessionSnapshot) {
	if snap.Round == nil || snap.Round.Feedback == "" {
		return
	}
	switch snap.Round.Status {
	case round.StatusSuccess:
		pterm.Success.Println(snap.Round.Feedback)
		if snap.Round.Matched != nil {
			pterm.Printf("The crowd said: %q (%d upvotes)\n", snap.Round.Matched.Text, snap.Round.Matched.Popularity)
		}
	case round.StatusFailure:
		pterm.Error.Println(snap.Round.Feedback)
	default:
		pterm.Warning.Println(snap.Round.Feedback)
	}
}

// leaderboardTable builds table rows for a leaderboard view, highlighting
// the requesting player when it sits outside the top.
func leaderboardTable(view types.LeaderboardView) pterm.TableData {
	data := pterm.TableData{{"Rank", "Player", "Score"}}
	for _, st := range view.Top {
		data = append(data, standingRow(st))
	}
	if view.Player != nil && view.Player.Rank >= len(view.Top) {
		data = append(data, []string{"...", "", ""}, standingRow(*view.Player))
	}
	return data
}

func standingRow(st types.Standing) []string {
	return []string{strconv.Itoa(st.Rank + 1), st.PlayerID, strconv.FormatInt(st.Score, 10)}
}

func renderLeaderboard(w io.Writer, view types.LeaderboardView) error {
	if len(view.Top) == 0 {
		_, err := fmt.Fprintln(w, "The leaderboard is empty.")
		return err
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(leaderboardTable(view)).Render()
}
