// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Request size (ingredients or items per call), only for sized operations
	TotalItems int64
	MinItems   int64
	MaxItems   int64
	sized      bool
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`

	// Size stats (nil if not applicable)
	AvgItems *float64 `json:"avg_items,omitempty"`
	MinItems *int64   `json:"min_items,omitempty"`
	MaxItems *int64   `json:"max_items,omitempty"`
}

// Snapshot represents the collected statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	ConflictCheck *OperationSnapshot `json:"conflict_check,omitempty"`
	RoutineBuild  *OperationSnapshot `json:"routine_build,omitempty"`
	Recommend     *OperationSnapshot `json:"recommend,omitempty"`
	Fallback      *OperationSnapshot `json:"fallback,omitempty"`
	SnapshotLoad  *OperationSnapshot `json:"snapshot_load,omitempty"`
}

// Operation names for the collector.
const (
	OpConflictCheck = "conflict_check"
	OpRoutineBuild  = "routine_build"
	OpRecommend     = "recommend"
	OpFallback      = "fallback"
	OpSnapshotLoad  = "snapshot_load"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime:  time.Duration(math.MaxInt64),
			MinItems: math.MaxInt64,
		}
		c.ops[op] = m
	}
	return m
}

func (m *OperationMetrics) addTiming(d time.Duration) {
	m.Count++
	m.TotalTime += d
	m.MinTime = min(m.MinTime, d)
	m.MaxTime = max(m.MaxTime, d)
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.getOrCreate(op).addTiming(duration)
}

// RecordRequest records timing and request size for an operation.
func (c *Collector) RecordRequest(op string, duration time.Duration, items int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.addTiming(duration)
	m.sized = true
	n := int64(items)
	m.TotalItems += n
	m.MinItems = min(m.MinItems, n)
	m.MaxItems = max(m.MaxItems, n)
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if m.sized {
		avg := float64(m.TotalItems) / float64(m.Count)
		lo, hi := m.MinItems, m.MaxItems
		snap.AvgItems = &avg
		snap.MinItems = &lo
		snap.MaxItems = &hi
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		ConflictCheck: snapshotOp(c.ops[OpConflictCheck]),
		RoutineBuild:  snapshotOp(c.ops[OpRoutineBuild]),
		Recommend:     snapshotOp(c.ops[OpRecommend]),
		Fallback:      snapshotOp(c.ops[OpFallback]),
		SnapshotLoad:  snapshotOp(c.ops[OpSnapshotLoad]),
	}
}
