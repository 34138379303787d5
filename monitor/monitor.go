// Package monitor implements the dedicated stack-observer thread: a
// loop that periodically walks every registered goroutine's shadow
// stack without ever touching its state. The monitor holds no ring:
// finished-call samples are handed to the push callback given to Run.
package monitor

import (
	"context"
	"time"

	"github.com/ldb-go/ldb/internal/logx"
	"github.com/ldb-go/ldb/registry"
	"github.com/ldb-go/ldb/ring"
)

// Config controls the monitor's scan cadence and CPU placement.
type Config struct {
	// Period is the target time between scan cycles. Zero (the
	// default) means scan as fast as possible.
	Period time.Duration
	// PinCPU, if >= 0, pins the monitor's OS thread to that CPU. -1
	// leaves placement to the Go scheduler.
	PinCPU int
}

// Monitor owns the scan loop's per-goroutine bookkeeping.
type Monitor struct {
	reg *registry.Registry
	cfg Config

	track map[int32]*goroutineTrack
}

// New returns a Monitor that will scan reg.
func New(reg *registry.Registry, cfg Config) *Monitor {
	return &Monitor{reg: reg, cfg: cfg, track: make(map[int32]*goroutineTrack)}
}

// Run scans until ctx is canceled. push is called once per finished
// call sample discovered during a scan; the root ldb package wires it
// to the logger, which writes the record straight to the event log. A
// CPU pin that fails is logged and the monitor runs unpinned.
func (m *Monitor) Run(ctx context.Context, push func(tid uint32, rec ring.Record)) error {
	if err := lockAndPin(m.cfg.PinCPU); err != nil {
		logx.Warn("monitor: cpu pin failed, running unpinned", "cpu", m.cfg.PinCPU, "err", err)
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := time.Now()
		elapsed := now.Sub(last)
		m.scanAllRecovered(now, elapsed, push)
		last = now

		if m.cfg.Period > 0 && elapsed < m.cfg.Period {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.cfg.Period - elapsed):
			}
		}
	}
}

// scanAllRecovered runs scanAll, recovering a panic from any single
// scan cycle rather than letting it propagate out of Run and take the
// host process down with it. The monitor reads other goroutines' live
// shadow stacks every cycle; a torn read that
// slips past the sequence-lock check is exactly the kind of transient
// bug this guards against. A recovered cycle just means this scan's
// samples are lost — the next cycle resumes normally.
func (m *Monitor) scanAllRecovered(now time.Time, elapsed time.Duration, push func(uint32, ring.Record)) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error("monitor: recovered panic during scan", "panic", r)
		}
	}()
	m.scanAll(now, elapsed, push)
}

func (m *Monitor) scanAll(now time.Time, elapsed time.Duration, push func(uint32, ring.Record)) {
	maxIdx := m.reg.MaxIndex()
	for tidx := int32(0); tidx <= maxIdx; tidx++ {
		slot := m.reg.Slot(tidx)
		tls := slot.TLS()
		if tls == nil {
			delete(m.track, tidx)
			continue
		}

		track := m.track[tidx]
		if track == nil {
			track = &goroutineTrack{}
			m.track[tidx] = track
		}

		tid := uint32(slot.Tid())
		scanOne(tls, track, elapsed, now, tid, func(rec ring.Record) {
			push(tid, rec)
		})
	}
}
