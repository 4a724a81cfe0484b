package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/crowdguess/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// Run executes the complete load test and returns its statistics. A
// non-nil error is returned when the server is unreachable or when any
// player's leaderboard total differs from the points it was awarded.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	cfg = withDefaults(cfg)
	stats := &Stats{StartTime: time.Now(), Players: cfg.Players}
	log := logger.Get().Named("loadtest")

	log.Info(ctx, "starting crowdguess load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.get(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Play concurrently
	results := playAll(ctx, cfg, client, generatePlayerIDs(cfg.Players))
	for _, r := range results {
		stats.RoundsPlayed += r.Rounds
		stats.Matches += r.Matches
		stats.PointsAwarded += r.Awarded
		if r.Err != "" {
			stats.Failures++
		}
	}

	// Step 3: Verify totals
	mismatches, verified, err := verifyTotals(ctx, client, results)
	if err != nil {
		return nil, fmt.Errorf("result verification failed: %w", err)
	}
	stats.Mismatches = mismatches
	stats.Verified = verified

	if err := verifyLeaderboardOrder(ctx, client); err != nil {
		return nil, fmt.Errorf("leaderboard verification failed: %w", err)
	}

	// Step 4: Save results to file
	if cfg.OutputFile != "" {
		if err := saveResults(cfg.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if len(mismatches) > 0 {
		return stats, fmt.Errorf("%w: %d players", ErrLostUpdates, len(mismatches))
	}
	log.Info(ctx, "load test completed successfully")
	return stats, nil
}

func withDefaults(cfg *Config) *Config {
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Players < 1 {
		c.Players = DefaultPlayers
	}
	if c.Rounds < 1 {
		c.Rounds = DefaultRounds
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU() * WorkerChannelMultiplier
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return &c
}

// playAll runs every player through the worker pool.
func playAll(ctx context.Context, cfg *Config, client *HTTPClient, players []string) []PlayerResult {
	results := make([]PlayerResult, len(players))
	var done int64

	indexChan := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				results[i] = playOne(ctx, client, players[i], cfg.Rounds, uint64(i)+1, cfg.Verbose)
				atomic.AddInt64(&done, 1)
			}
		}()
	}

	stop := make(chan struct{})
	go reportProgress(ctx, stop, &done, len(players))

	go func() {
		defer close(indexChan)
		for i := range players {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()
	close(stop)
	return results
}

func reportProgress(ctx context.Context, stop <-chan struct{}, done *int64, total int) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Get().Info(ctx, "progress",
				logger.Int64("players_done", atomic.LoadInt64(done)),
				logger.Int("players", total))
		}
	}
}

// saveResults writes per-player results as a JSON array.
func saveResults(filename string, results []PlayerResult) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, raw, reportPermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var matchRate, roundsPerSecond float64
	if stats.RoundsPlayed > 0 {
		matchRate = float64(stats.Matches) / float64(stats.RoundsPlayed) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		roundsPerSecond = float64(stats.RoundsPlayed) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("players", stats.Players),
		logger.Int("roundsPlayed", stats.RoundsPlayed),
		logger.Int("matches", stats.Matches),
		logger.Int("failures", stats.Failures),
		logger.Int64("pointsAwarded", stats.PointsAwarded),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatches", len(stats.Mismatches)),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("matchRate", matchRate),
		logger.Float64("roundsPerSecond", roundsPerSecond))
}
