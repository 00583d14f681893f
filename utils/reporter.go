package utils

import (
	"fmt"
	"sync"
	"time"
)

// Reporter rate-limits progress logging for hot loops. Add returns a
// formatted report line once the count threshold or interval is reached.
// Safe for concurrent use; worker loops and cron tickers share one instance.
type Reporter struct {
	countThreshold int
	interval       time.Duration
	format         string

	mu              sync.Mutex
	count           int
	lastReportTime  time.Time
	lastReportCount int
}

func NewReporter(countThreshold int, interval time.Duration, format string) *Reporter {
	return &Reporter{
		countThreshold: countThreshold,
		interval:       interval,
		format:         format,
		lastReportTime: time.Now(),
	}
}

func (r *Reporter) Add(count int) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.count += count

	increment := r.count - r.lastReportCount
	elapsed := time.Since(r.lastReportTime).Seconds()
	if (r.countThreshold != 0 && increment >= r.countThreshold) || elapsed >= r.interval.Seconds() {
		report := fmt.Sprintf(r.format, increment, elapsed)
		r.lastReportTime = time.Now()
		r.lastReportCount = r.count
		return true, report
	}
	return false, ""
}
