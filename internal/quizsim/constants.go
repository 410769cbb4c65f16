package quizsim

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	persistPollInterval  = 20 * time.Millisecond
	directoryPermission  = 0o750
	logFilePermission    = 0o600
)
