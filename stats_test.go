package dockhand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.llib.dev/dockhand"
)

func TestStats_derivedHelpers(t *testing.T) {
	t.Run("used memory subtracts the page cache", func(t *testing.T) {
		s := dockhand.Stats{MemoryStats: dockhand.MemoryStats{
			Usage: 4096,
			Stats: map[string]uint64{"cache": 1024},
		}}
		assert.Equal(t, uint64(3072), s.UsedMemory())
	})

	t.Run("cache exceeding usage clamps to zero instead of wrapping", func(t *testing.T) {
		// seen transiently on cgroup v1 hosts
		s := dockhand.Stats{MemoryStats: dockhand.MemoryStats{
			Usage: 1024,
			Stats: map[string]uint64{"cache": 4096},
		}}
		assert.Equal(t, uint64(0), s.UsedMemory())
		assert.Equal(t, float64(0), s.MemoryUsagePercent())
	})

	t.Run("cpu deltas going backwards clamp to zero instead of wrapping", func(t *testing.T) {
		// a daemon restart resets the counters between two samples
		s := dockhand.Stats{
			CPUStats: dockhand.CPUStats{
				CPUUsage:       dockhand.CPUUsage{TotalUsage: 100},
				SystemCPUUsage: 500,
			},
			PreCPUStats: dockhand.CPUStats{
				CPUUsage:       dockhand.CPUUsage{TotalUsage: 900},
				SystemCPUUsage: 9000,
			},
		}
		assert.Equal(t, uint64(0), s.CPUDelta())
		assert.Equal(t, uint64(0), s.SystemCPUDelta())
		assert.Equal(t, float64(0), s.CPUUsagePercent())
	})

	t.Run("missing host counters read as zero deltas", func(t *testing.T) {
		s := dockhand.Stats{
			CPUStats:    dockhand.CPUStats{CPUUsage: dockhand.CPUUsage{TotalUsage: 200}},
			PreCPUStats: dockhand.CPUStats{CPUUsage: dockhand.CPUUsage{TotalUsage: 100}},
		}
		assert.Equal(t, uint64(100), s.CPUDelta())
		assert.Equal(t, uint64(0), s.SystemCPUDelta())
		assert.Equal(t, float64(0), s.CPUUsagePercent())
	})

	t.Run("older daemons without online_cpus fall back to the percpu list", func(t *testing.T) {
		s := dockhand.Stats{CPUStats: dockhand.CPUStats{
			CPUUsage: dockhand.CPUUsage{PercpuUsage: []uint64{1, 2, 3, 4}},
		}}
		assert.Equal(t, uint64(4), s.NumberCPUs())
	})
}
