package loadtest

import "time"

// Defaults used when a Config field is unset.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultPlayers = 50
	DefaultRounds  = 5
	DefaultTimeout = 30 * time.Second
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
	progressInterval        = time.Second
)
