package control

import (
	"os"

	"github.com/fjl/memsize"
	"github.com/shirou/gopsutil/process"
)

// ProcessStats reports this process's memory and CPU usage, the
// ambient half of /stats that sits alongside the LDB-specific counts
// StatsSource.Stats supplies.
type ProcessStats struct {
	RSSBytes     uint64  `json:"rss_bytes"`
	CPUPercent   float64 `json:"cpu_percent"`
	GoroutineMem string  `json:"goroutine_mem_report,omitempty"`
}

// CollectProcessStats gathers current RSS/CPU via shirou/gopsutil. If
// v is non-nil, its in-memory size is additionally reported via
// fjl/memsize — useful for sizing a large StatsSource snapshot before
// serializing it.
func CollectProcessStats(v interface{}) ProcessStats {
	out := ProcessStats{}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if mi, err := p.MemoryInfo(); err == nil && mi != nil {
			out.RSSBytes = mi.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			out.CPUPercent = pct
		}
	}
	if v != nil {
		out.GoroutineMem = memsize.Scan(v).Report()
	}
	return out
}
