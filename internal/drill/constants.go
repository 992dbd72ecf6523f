package drill

import "time"

// HTTP status codes the drill expects.
const (
	StatusOK              = 200
	StatusCreated         = 201
	StatusNoContent       = 204
	StatusTooManyRequests = 429
)

// Timing constants.
const (
	// SettleDelay is added to the prompt duration before counting timeouts.
	SettleDelay   = 250 * time.Millisecond
	retryDelay    = 50 * time.Millisecond
	maxRetries    = 40
	workerBacklog = 2
)
