package utils

import "time"

// FixedRetry runs an operation under the process-wide resilience policy:
// never give up, retry after a fixed delay. There is no backoff, no jitter
// and no attempt limit; operators rely on the self-healing behaviour.
type FixedRetry struct {
	Interval time.Duration
	Logger   *Logger
}

// DoForever executes fn until it succeeds, sleeping Interval between
// attempts.
func (r *FixedRetry) DoForever(operationName string, fn func() error) {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return
		}
		r.Logger.Error("[retry] %s failed (attempt %d): %v — retrying in %v",
			operationName, attempt, err, r.Interval)
		time.Sleep(r.Interval)
	}
}
