package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/okian/crowdguess/internal/domain/round"
	"github.com/okian/crowdguess/internal/domain/types"
	"github.com/okian/crowdguess/pkg/logger"
)

// playOne runs a single player through up to rounds rounds and totals
// the points the server reported for each resolved round.
func playOne(ctx context.Context, client *HTTPClient, playerID string, rounds int, seed uint64, verbose bool) PlayerResult {
	res := PlayerResult{PlayerID: playerID}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	var snap types.SessionSnapshot
	if err := client.post(ctx, "/sessions", map[string]string{"player_id": playerID}, &snap); err != nil {
		if isExhausted(err) {
			res.Exhausted = true
			return res
		}
		res.Err = err.Error()
		return res
	}
	sessionPath := "/sessions/" + snap.SessionID

	for res.Rounds < rounds {
		if snap.Round == nil {
			res.Exhausted = true
			return res
		}

		for !snap.Round.Resolved {
			var next types.SessionSnapshot
			err := client.post(ctx, sessionPath+"/guesses", map[string]string{"guess": guessFor(rng, snap.Round.Question)}, &next)
			if err != nil {
				res.Err = err.Error()
				return res
			}
			snap = next
		}

		res.Rounds++
		if snap.Round.Status == round.StatusSuccess && snap.Round.Score != nil {
			res.Matches++
			res.Awarded += int64(*snap.Round.Score)
		}
		if verbose {
			logger.Get().Debug(ctx, "round resolved",
				logger.String("player_id", playerID),
				logger.String("question_id", snap.Round.QuestionID),
				logger.String("status", string(snap.Round.Status)),
			)
		}

		if res.Rounds == rounds {
			break
		}
		var next types.SessionSnapshot
		if err := client.post(ctx, sessionPath+"/next", nil, &next); err != nil {
			if isExhausted(err) {
				res.Exhausted = true
				return res
			}
			res.Err = err.Error()
			return res
		}
		snap = next
	}
	return res
}

func isExhausted(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.Status == http.StatusGone
}

// fetchStanding reads a player's server-side standing. A player who never
// scored is reported with a zero total.
func fetchStanding(ctx context.Context, client *HTTPClient, playerID string) (types.Standing, error) {
	var st types.Standing
	err := client.get(ctx, "/rank/"+playerID, &st)
	var se *statusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return types.Standing{PlayerID: playerID}, nil
	}
	if err != nil {
		return types.Standing{}, fmt.Errorf("rank %s: %w", playerID, err)
	}
	return st, nil
}
