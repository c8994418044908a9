package cli

import "github.com/raphaelgruber/mixmyroutine/internal/metrics"

// printMetrics displays runtime statistics for this invocation.
func printMetrics(p printer, s metrics.Snapshot) {
	p.heading("Statistics")
	p.printf("Uptime: %.2f seconds\n", s.UptimeSeconds)

	ops := []struct {
		title string
		op    *metrics.OperationSnapshot
	}{
		{"Snapshot load", s.SnapshotLoad},
		{"Conflict check", s.ConflictCheck},
		{"Routine build", s.RoutineBuild},
		{"Recommend", s.Recommend},
		{"Fallback", s.Fallback},
	}
	for _, o := range ops {
		if o.op == nil {
			continue
		}
		p.printf("\n%s:\n", o.title)
		printOpStats(p, o.op)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(p printer, op *metrics.OperationSnapshot) {
	p.printf("  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	p.printf("  Time: avg %.1fms, min %dms, max %dms\n", op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	if op.AvgItems != nil {
		p.printf("  Items: avg %.1f, min %d, max %d\n", *op.AvgItems, *op.MinItems, *op.MaxItems)
	}
}
