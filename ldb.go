// Package ldb wires the profiler's components together into a single
// process lifecycle: the thread registry, the interposition runtime,
// the monitor, the logger, the tag API, and the control surface. Its
// config/lock/cancel-and-errgroup shape and New/Start/Stop method set follow
// the conventions used elsewhere in this codebase for long-running
// service lifecycles.
package ldb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ldb-go/ldb/internal/config"
	"github.com/ldb-go/ldb/internal/control"
	"github.com/ldb-go/ldb/internal/logx"
	"github.com/ldb-go/ldb/logger"
	"github.com/ldb-go/ldb/monitor"
	"github.com/ldb-go/ldb/registry"
	"github.com/ldb-go/ldb/ring"
	"github.com/ldb-go/ldb/shim"
	"github.com/ldb-go/ldb/tag"
)

// LDB is the top-level handle a host process embeds: one per process,
// created once at startup.
type LDB struct {
	config config.Config
	lock   sync.RWMutex

	reg     *registry.Registry
	runtime *shim.Runtime
	monitor *monitor.Monitor
	logger  *logger.Logger
	ctrl    *control.Server
	tags    *tag.API

	cancel context.CancelFunc
	group  *errgroup.Group
	seq    uint64
}

// New builds an LDB instance from cfg. Nothing runs until Start is
// called.
func New(cfg config.Config) (*LDB, error) {
	reg := registry.New()
	rt := shim.NewRuntime(reg, cfg.RingCapacity)

	lg, err := logger.New(logger.Config{
		DataPath:    cfg.DataDir + "/ldb.data",
		MapsPath:    cfg.DataDir + "/maps.data",
		DrainPeriod: 0,
	}, rt)
	if err != nil {
		return nil, fmt.Errorf("ldb: init logger: %w", err)
	}

	l := &LDB{
		config:  cfg,
		reg:     reg,
		runtime: rt,
		monitor: monitor.New(reg, monitor.Config{Period: time.Duration(cfg.MonitorPeriodMicros) * time.Microsecond, PinCPU: cfg.MonitorPinCPU}),
		logger:  lg,
		tags:    tag.New(rt),
	}

	if cfg.TagIndexEnabled {
		idx, err := logger.OpenTagIndex(cfg.DataDir + "/tags.ldb")
		if err != nil {
			return nil, fmt.Errorf("ldb: init tag index: %w", err)
		}
		lg.WithTagIndex(idx)
	}

	if cfg.ControlAddr != "" {
		ctrl, err := control.New(l, lg.Reset, 256)
		if err != nil {
			return nil, fmt.Errorf("ldb: init control surface: %w", err)
		}
		l.ctrl = ctrl
	}

	return l, nil
}

// Go launches fn as a tracked goroutine — the entry point application
// code instruments call sites through.
func (l *LDB) Go(fn func()) { l.runtime.Go(fn) }

// Enter publishes a new augmented frame for the current call, tagged
// with tag. Instrumented functions call this on entry and defer the
// returned closure on return — without it the monitor only ever sees
// a goroutine's seeded outermost frame, never the nested calls inside
// it.
func (l *LDB) Enter(tag uint32) (exit func()) { return l.runtime.Enter(tag) }

// Tags returns the tag API for annotating the current call.
func (l *LDB) Tags() *tag.API { return l.tags }

// NewMutex returns an instrumented mutex backed by this LDB instance.
func (l *LDB) NewMutex() *shim.Mutex { return shim.NewMutex(l.runtime) }

// Start launches the monitor, logger, and (if configured) control
// surface goroutines, coordinated through an errgroup — Stop cancels
// the shared context and Start's caller can wait on the returned error
// via the group that Stop joins.
func (l *LDB) Start() error {
	l.lock.Lock()
	defer l.lock.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	l.group = g

	g.Go(func() error {
		return l.monitor.Run(gctx, func(tid uint32, rec ring.Record) {
			// The monitor itself holds no ring; samples are handed to
			// the logger for direct serialization instead of TryPush,
			// keeping the monitor strictly read-only toward
			// application memory.
			l.logger.RecordMonitorSample(rec)
			if l.ctrl != nil {
				l.seq++
				l.ctrl.PushRecent(l.seq, rec)
			}
		})
	})
	g.Go(func() error {
		return l.logger.Run(gctx)
	})
	if l.ctrl != nil {
		g.Go(func() error {
			return l.ctrl.Listen(l.config.ControlAddr)
		})
	}

	logx.Info("ldb: started", "control_addr", l.config.ControlAddr)
	return nil
}

// Stop cancels every running component and waits for them to exit.
func (l *LDB) Stop() error {
	l.lock.Lock()
	cancel := l.cancel
	g := l.group
	ctrl := l.ctrl
	l.lock.Unlock()

	if ctrl != nil {
		ctrl.Stop()
	}
	if cancel != nil {
		cancel()
	}
	if g == nil {
		return nil
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	logx.Info("ldb: stopped")
	return nil
}

// Stats implements control.StatsSource.
func (l *LDB) Stats() map[string]interface{} {
	return map[string]interface{}{
		"max_registry_index": l.reg.MaxIndex(),
		"blocked_tags":       l.tags.BlockedTags(),
	}
}
