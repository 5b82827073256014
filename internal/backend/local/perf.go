package local

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"vanta/internal/domain"
	"vanta/internal/logging"
)

// perfCounter accumulates call timings for one operation
type perfCounter struct {
	name    string
	calls   atomic.Uint64
	totalUs atomic.Uint64
	maxUs   atomic.Uint64
	report  rate.Sometimes
}

func newPerfCounter(name string) *perfCounter {
	return &perfCounter{name: name, report: rate.Sometimes{Every: 50}}
}

// record adds one call that started at start
func (p *perfCounter) record(start time.Time) {
	us := uint64(time.Since(start).Microseconds())
	p.calls.Add(1)
	p.totalUs.Add(us)
	for {
		cur := p.maxUs.Load()
		if us <= cur || p.maxUs.CompareAndSwap(cur, us) {
			break
		}
	}
	p.report.Do(func() {
		s := p.snapshot()
		logging.Info("perf", "op", p.name, "calls", s.Calls, "avg_ms", s.AvgMs, "max_ms", s.MaxMs)
	})
}

func (p *perfCounter) snapshot() domain.PerfStats {
	calls := p.calls.Load()
	total := float64(p.totalUs.Load()) / 1000
	s := domain.PerfStats{
		Calls:   calls,
		TotalMs: total,
		MaxMs:   float64(p.maxUs.Load()) / 1000,
	}
	if calls > 0 {
		s.AvgMs = total / float64(calls)
	}
	return s
}
