// Package logger implements the drain thread: periodically drains
// every tracked goroutine's event ring to a single append-only file,
// dumps a /proc/self/maps sidecar once at startup, and supports a
// Reset that archives the current log before truncating it.
package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ldb-go/ldb/internal/logx"
	"github.com/ldb-go/ldb/ring"
)

// RingSource is the subset of shim.Runtime the logger needs: a
// snapshot of every live goroutine's ring to drain this cycle.
type RingSource interface {
	Rings() []*ring.Ring
}

// Config controls where the logger writes and how often it drains.
type Config struct {
	// DataPath is the event log file, conventionally named ldb.data.
	DataPath string
	// MapsPath is the /proc/self/maps sidecar dump (maps.data).
	MapsPath string
	// DrainPeriod is the time between drain cycles.
	DrainPeriod time.Duration
}

// Logger owns the output file and reset/archive state.
type Logger struct {
	cfg Config
	src RingSource

	mu     sync.Mutex
	f      *os.File
	reset  chan struct{}
	totalW uint64

	tags *TagIndex // optional; nil if not configured
}

// New opens cfg.DataPath for writing and returns a Logger draining
// src's rings.
func New(cfg Config, src RingSource) (*Logger, error) {
	f, err := os.Create(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", cfg.DataPath, err)
	}
	return &Logger{cfg: cfg, src: src, f: f, reset: make(chan struct{}, 1)}, nil
}

// WithTagIndex attaches an optional tag->offset index the drain loop
// updates as it writes tag-mutation records.
func (l *Logger) WithTagIndex(t *TagIndex) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tags = t
	return l
}

// Run drains rings on cfg.DrainPeriod until ctx is canceled, dumping
// the maps sidecar once before the first drain.
func (l *Logger) Run(ctx context.Context) error {
	if err := dumpMaps(l.cfg.MapsPath); err != nil {
		// A failed maps dump is diagnostic, not fatal.
		fmt.Fprintf(os.Stderr, "logger: maps dump failed: %v\n", err)
	}

	ticker := time.NewTicker(periodOrDefault(l.cfg.DrainPeriod))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.drainOnceRecovered()
			return l.Close()
		case <-l.reset:
			if err := l.doReset(); err != nil {
				fmt.Fprintf(os.Stderr, "logger: reset failed: %v\n", err)
			}
		case <-ticker.C:
			l.drainOnceRecovered()
		}
	}
}

func periodOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Millisecond
	}
	return d
}

// Reset requests the drain loop archive and truncate the log file, by
// setting a flag the drain loop polls on its next cycle.
func (l *Logger) Reset() {
	select {
	case l.reset <- struct{}{}:
	default:
	}
}

// drainOnceRecovered runs drainOnce, recovering any panic so a bad
// record or a closed underlying file can't take the host process down
// with it; the next cycle resumes normally.
func (l *Logger) drainOnceRecovered() {
	defer func() {
		if r := recover(); r != nil {
			logx.Error("logger: recovered panic during drain", "panic", r)
		}
	}()
	l.drainOnce()
}

func (l *Logger) drainOnce() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rg := range l.src.Rings() {
		rg.ConsumeRuns(func(batch []ring.Record) {
			for _, rec := range batch {
				l.writeLocked(rec)
			}
		})
	}
	l.f.Sync()
}

// writeLocked appends rec to the log file and, if it's a tag-mutation
// record, updates the optional tag index. Callers must hold l.mu.
func (l *Logger) writeLocked(rec ring.Record) {
	offset := int64(l.totalW)
	buf, _ := rec.MarshalBinary()
	n, err := l.f.Write(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: write failed: %v\n", err)
		return
	}
	l.totalW += uint64(n)

	if isTagKind(rec.Kind) {
		if err := l.tags.Record(uint32(rec.Arg1), offset); err != nil {
			fmt.Fprintf(os.Stderr, "logger: tag index update failed: %v\n", err)
		}
	}
}

// RecordMonitorSample appends a single record sourced directly from
// the monitor's scan loop rather than drained from a per-goroutine
// ring — the monitor never holds a ring of its own, staying strictly
// read-only toward every goroutine it observes.
func (l *Logger) RecordMonitorSample(rec ring.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeLocked(rec)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
