package dockhand

// Stats is one resource usage sample of a container.
// The daemon emits these once per second on the stats endpoint.
type Stats struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Read        string                  `json:"read"`
	PreRead     string                  `json:"preread"`
	Networks    map[string]NetworkStats `json:"networks,omitempty"`
	MemoryStats MemoryStats             `json:"memory_stats"`
	CPUStats    CPUStats                `json:"cpu_stats"`
	PreCPUStats CPUStats                `json:"precpu_stats"`
	BlkioStats  BlkioStats              `json:"blkio_stats"`
	PidsStats   PidsStats               `json:"pids_stats"`
}

// NetworkStats is the per-interface traffic counter set of a sample.
type NetworkStats struct {
	RxBytes   uint64 `json:"rx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	RxErrors  uint64 `json:"rx_errors"`
	RxDropped uint64 `json:"rx_dropped"`
	TxBytes   uint64 `json:"tx_bytes"`
	TxPackets uint64 `json:"tx_packets"`
	TxErrors  uint64 `json:"tx_errors"`
	TxDropped uint64 `json:"tx_dropped"`
}

// MemoryStats is the memory accounting of a sample.
type MemoryStats struct {
	Usage    uint64            `json:"usage"`
	MaxUsage uint64            `json:"max_usage"`
	Failcnt  uint64            `json:"failcnt,omitempty"`
	Limit    uint64            `json:"limit"`
	Stats    map[string]uint64 `json:"stats"`
}

// CPUStats is the cpu accounting of a sample.
type CPUStats struct {
	CPUUsage       CPUUsage       `json:"cpu_usage"`
	SystemCPUUsage uint64         `json:"system_cpu_usage,omitempty"`
	OnlineCPUs     uint64         `json:"online_cpus,omitempty"`
	ThrottlingData ThrottlingData `json:"throttling_data"`
}

// CPUUsage is the inner counter set of CPUStats.
type CPUUsage struct {
	TotalUsage        uint64   `json:"total_usage"`
	PercpuUsage       []uint64 `json:"percpu_usage,omitempty"`
	UsageInKernelmode uint64   `json:"usage_in_kernelmode"`
	UsageInUsermode   uint64   `json:"usage_in_usermode"`
}

// ThrottlingData counts cpu quota throttling of a container.
type ThrottlingData struct {
	Periods          uint64 `json:"periods"`
	ThrottledPeriods uint64 `json:"throttled_periods"`
	ThrottledTime    uint64 `json:"throttled_time"`
}

// BlkioStats is the block io accounting of a sample.
type BlkioStats struct {
	IoServiceBytesRecursive []BlkioStatEntry `json:"io_service_bytes_recursive,omitempty"`
	IoServicedRecursive     []BlkioStatEntry `json:"io_serviced_recursive,omitempty"`
	IoQueueRecursive        []BlkioStatEntry `json:"io_queue_recursive,omitempty"`
	IoServiceTimeRecursive  []BlkioStatEntry `json:"io_service_time_recursive,omitempty"`
	IoWaitTimeRecursive     []BlkioStatEntry `json:"io_wait_time_recursive,omitempty"`
	IoMergedRecursive       []BlkioStatEntry `json:"io_merged_recursive,omitempty"`
	IoTimeRecursive         []BlkioStatEntry `json:"io_time_recursive,omitempty"`
	SectorsRecursive        []BlkioStatEntry `json:"sectors_recursive,omitempty"`
}

// BlkioStatEntry is one device/operation counter of BlkioStats.
type BlkioStatEntry struct {
	Major uint64 `json:"major"`
	Minor uint64 `json:"minor"`
	Op    string `json:"op"`
	Value uint64 `json:"value"`
}

// PidsStats counts the processes of a container.
type PidsStats struct {
	Current uint64 `json:"current,omitempty"`
	Limit   uint64 `json:"limit,omitempty"`
}

// UsedMemory is the container's memory usage without the page cache,
// matching what docker stats displays.
// On cgroup v1 the cache counter can transiently exceed usage,
// the result is clamped to zero then.
func (s Stats) UsedMemory() uint64 {
	cache := s.MemoryStats.Stats["cache"]
	if cache > s.MemoryStats.Usage {
		return 0
	}
	return s.MemoryStats.Usage - cache
}

// AvailableMemory is the memory limit of the container.
func (s Stats) AvailableMemory() uint64 {
	return s.MemoryStats.Limit
}

// MemoryUsagePercent is the used memory relative to the limit, in percent.
// Zero when the sample carries no limit.
func (s Stats) MemoryUsagePercent() float64 {
	if s.MemoryStats.Limit == 0 {
		return 0
	}
	return float64(s.UsedMemory()) / float64(s.MemoryStats.Limit) * 100
}

// CPUDelta is the container cpu time spent since the previous sample.
// The counters reset when the daemon restarts, a sample straddling such a
// reset reports zero instead of an underflowed delta.
func (s Stats) CPUDelta() uint64 {
	if s.PreCPUStats.CPUUsage.TotalUsage > s.CPUStats.CPUUsage.TotalUsage {
		return 0
	}
	return s.CPUStats.CPUUsage.TotalUsage - s.PreCPUStats.CPUUsage.TotalUsage
}

// SystemCPUDelta is the host cpu time spent since the previous sample.
// Zero when either sample lacks the host counter or the counters went backwards.
func (s Stats) SystemCPUDelta() uint64 {
	if s.CPUStats.SystemCPUUsage == 0 || s.PreCPUStats.SystemCPUUsage == 0 {
		return 0
	}
	if s.PreCPUStats.SystemCPUUsage > s.CPUStats.SystemCPUUsage {
		return 0
	}
	return s.CPUStats.SystemCPUUsage - s.PreCPUStats.SystemCPUUsage
}

// NumberCPUs is the cpu count of the sample. Older daemons lack the
// online_cpus field, then the per-cpu usage list length is used instead.
func (s Stats) NumberCPUs() uint64 {
	if s.CPUStats.OnlineCPUs > 0 {
		return s.CPUStats.OnlineCPUs
	}
	return uint64(len(s.CPUStats.CPUUsage.PercpuUsage))
}

// CPUUsagePercent is the container's cpu usage relative to the host,
// in percent, scaled by the cpu count the way docker stats does it.
// Zero when the host counters are missing.
func (s Stats) CPUUsagePercent() float64 {
	systemDelta := s.SystemCPUDelta()
	if systemDelta == 0 {
		return 0
	}
	return float64(s.CPUDelta()) / float64(systemDelta) * float64(s.NumberCPUs()) * 100
}
