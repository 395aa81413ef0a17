package health

import (
	"context"
	"runtime"
)

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// MaxAlloc is the heap budget in bytes, typically sized for the value
	// cache. Zero uses the memory obtained from the OS.
	MaxAlloc uint64

	// WarningThreshold is the fraction of MaxAlloc that degrades.
	// Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the fraction of MaxAlloc that fails.
	// Default: 0.95
	CriticalThreshold float64
}

// MemoryChecker flags heap growth, as cached dataset values are never
// released until evicted.
type MemoryChecker struct {
	config  MemoryCheckerConfig
	readMem func(*runtime.MemStats)
}

// NewMemoryChecker creates a memory checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= config.WarningThreshold || config.CriticalThreshold > 1 {
		config.CriticalThreshold = max(0.95, config.WarningThreshold)
	}
	return &MemoryChecker{config: config, readMem: runtime.ReadMemStats}
}

// Name returns "memory".
func (m *MemoryChecker) Name() string { return "memory" }

// Check compares the live heap to the budget.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy(err, "context done")
	}

	var stats runtime.MemStats
	m.readMem(&stats)

	budget := m.config.MaxAlloc
	if budget == 0 {
		budget = stats.Sys
	}
	details := map[string]any{
		"heap_alloc_mb": float64(stats.HeapAlloc) / (1 << 20),
		"budget_mb":     float64(budget) / (1 << 20),
		"num_gc":        stats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}
	if budget == 0 {
		return Healthy("memory stats unavailable").WithDetails(details)
	}

	ratio := float64(stats.HeapAlloc) / float64(budget)
	details["usage_percent"] = ratio * 100

	switch {
	case ratio >= m.config.CriticalThreshold:
		return Unhealthy(ErrCheckFailed, "heap at %.1f%% of budget", ratio*100).WithDetails(details)
	case ratio >= m.config.WarningThreshold:
		return Degraded("heap at %.1f%% of budget", ratio*100).WithDetails(details)
	default:
		return Healthy("heap at %.1f%% of budget", ratio*100).WithDetails(details)
	}
}
