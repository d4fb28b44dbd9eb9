package domain

import "time"

// SyncPassResult summarises one synchronization pass. It is never persisted.
type SyncPassResult struct {
	StartedAt    time.Time
	Duration     time.Duration
	SuccessCount int
	TotalPairs   int
	Errors       []string
}

// SuccessRate returns the percentage of attempted pairs that produced an observation.
func (r SyncPassResult) SuccessRate() float64 {
	if r.TotalPairs == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.TotalPairs) * 100
}

// FirstErrors returns at most n error messages, in the order they were recorded.
func (r SyncPassResult) FirstErrors(n int) []string {
	if len(r.Errors) <= n {
		return r.Errors
	}
	return r.Errors[:n]
}

// SyncStatus describes the freshness and completeness of the rate log.
type SyncStatus struct {
	TotalRecords        int64
	LastSyncTime        *time.Time
	SupportedCurrencies int
	ExpectedRecords     int64
	DataCompleteness    float64
	DataAge             *time.Duration
}

// ExpectedPairs returns the number of ordered pairs excluding self-pairs for n currencies.
func ExpectedPairs(n int) int {
	if n <= 1 {
		return 0
	}
	return n * (n - 1)
}
