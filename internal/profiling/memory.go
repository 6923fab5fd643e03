package profiling

import (
	"runtime"
	"time"
)

// MemorySample is a point-in-time reading of the Go runtime.
type MemorySample struct {
	Time       time.Time
	HeapAlloc  uint64
	HeapSys    uint64
	Goroutines int
	NumGC      uint32
}

// Sample reads the runtime memory statistics.
func Sample() MemorySample {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return MemorySample{
		Time:       time.Now(),
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.HeapSys,
		Goroutines: runtime.NumGoroutine(),
		NumGC:      ms.NumGC,
	}
}

// HeapGrowthRate returns the heap growth between two samples in bytes per
// second. It is 0 when the samples are not in order.
func HeapGrowthRate(first, last MemorySample) float64 {
	d := last.Time.Sub(first.Time)
	if d <= 0 {
		return 0
	}
	return (float64(last.HeapAlloc) - float64(first.HeapAlloc)) / d.Seconds()
}
