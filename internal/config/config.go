// Package config loads LDB's TOML configuration and watches it for
// changes, the Go-native analogue of reloading a running profiler's
// knobs without a restart.
package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/naoina/toml"
	"github.com/rjeczalik/notify"

	"github.com/ldb-go/ldb/internal/logx"
)

// Config is LDB's full set of runtime knobs: a small exported struct
// passed to New.
type Config struct {
	// DataDir is where ldb.data, maps.data, and archives are written.
	DataDir string `toml:"data_dir"`
	// MonitorPeriodMicros is the target time between monitor scan
	// cycles; 0 means scan continuously.
	MonitorPeriodMicros int64 `toml:"monitor_period_us"`
	// MonitorPinCPU, if >= 0, pins the monitor thread to that CPU.
	MonitorPinCPU int `toml:"monitor_pin_cpu"`
	// RingCapacity is the per-goroutine event ring capacity.
	RingCapacity int `toml:"ring_capacity"`
	// MutexEventThresholdNanos is parsed from the file but not read by
	// the runtime: shim.Mutex gates mutex event emission on the fixed
	// shim.MutexEventThreshold constant (1000 ns) whatever this holds.
	MutexEventThresholdNanos int64 `toml:"mutex_event_threshold_ns"`
	// ControlAddr is the local HTTP control surface's listen address
	// ("" disables it).
	ControlAddr string `toml:"control_addr"`
	// TagIndexEnabled turns on the optional LevelDB tag->offset index.
	TagIndexEnabled bool `toml:"tag_index_enabled"`
}

// Default returns the configuration LDB starts with absent a file.
func Default() Config {
	return Config{
		DataDir:                  ".",
		MonitorPeriodMicros:      0,
		MonitorPinCPU:            -1,
		RingCapacity:             1 << 15,
		MutexEventThresholdNanos: 1000,
		ControlAddr:              "127.0.0.1:6699",
		TagIndexEnabled:          false,
	}
}

// Load reads and parses a TOML config file at path, starting from
// Default() so an incomplete file still yields sane values for
// whatever it omits.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Watcher reloads Config from a file whenever it changes on disk and
// makes the newly parsed value available through Current.
type Watcher struct {
	path string

	mu  sync.RWMutex
	cur Config

	events chan notify.EventInfo
	stop   chan struct{}
}

// WatchFile starts watching path for changes, parsing an initial
// Config immediately.
func WatchFile(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	events := make(chan notify.EventInfo, 4)
	if err := notify.Watch(path, events, notify.Write); err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{path: path, cur: cfg, events: events, stop: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stop:
			notify.Stop(w.events)
			return
		case <-w.events:
			cfg, err := Load(w.path)
			if err != nil {
				logx.Warn("config: reload failed", "path", w.path, "err", err)
				continue
			}
			w.mu.Lock()
			w.cur = cfg
			w.mu.Unlock()
			logx.Info("config: reloaded", "path", w.path)
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Close stops watching.
func (w *Watcher) Close() {
	close(w.stop)
}
