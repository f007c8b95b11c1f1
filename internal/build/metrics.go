package build

import (
	"sync"
	"time"
)

// Metrics tracks build pipeline performance across a run.
type Metrics struct {
	TotalBlocks   int64
	Compiled      int64
	Skipped       int64
	Failed        int64
	TotalDuration time.Duration
	mutex         sync.RWMutex
}

func (m *Metrics) record(res Result) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalBlocks++
	m.TotalDuration += res.Duration
	switch {
	case res.Err != nil:
		m.Failed++
	case res.Skipped:
		m.Skipped++
	default:
		m.Compiled++
	}
}

// Snapshot returns a consistent copy of the metrics.
func (m *Metrics) Snapshot() Metrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Metrics{
		TotalBlocks:   m.TotalBlocks,
		Compiled:      m.Compiled,
		Skipped:       m.Skipped,
		Failed:        m.Failed,
		TotalDuration: m.TotalDuration,
	}
}

// AverageDuration returns the mean per-block build time.
func (m *Metrics) AverageDuration() time.Duration {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalBlocks == 0 {
		return 0
	}
	return m.TotalDuration / time.Duration(m.TotalBlocks)
}
