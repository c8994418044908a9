// Package knowledge bundles the immutable reasoning state (graph, rule
// store, case base, fallback table and the components built on them) into
// snapshots, and swaps snapshots atomically on reload.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raphaelgruber/mixmyroutine/internal/cbr"
	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/diagnostic"
	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/raphaelgruber/mixmyroutine/internal/routine"
	"github.com/raphaelgruber/mixmyroutine/internal/rules"
)

// Source supplies every record a snapshot needs.
type Source interface {
	rules.Source
	cbr.Source
	LoadConcernTable(ctx context.Context) (diagnostic.Table, error)
}

// Config carries the per-component settings used when building.
type Config struct {
	Detector conflict.Config
	Routine  routine.Config
	CBR      cbr.Config
}

// DefaultConfig returns default settings for every component.
func DefaultConfig() Config {
	return Config{
		Detector: conflict.DefaultConfig(),
		Routine:  routine.DefaultConfig(),
		CBR:      cbr.DefaultConfig(),
	}
}

// Snapshot is one consistent, read-only view of the knowledge base.
// Every field is safe for concurrent use and never mutated.
type Snapshot struct {
	Version  uint64
	LoadedAt time.Time

	Rules     *rules.Store
	Graph     *graph.Graph
	Detector  *conflict.Detector
	Sequencer *routine.Sequencer
	Cases     *cbr.CaseBase
	Engine    *cbr.Engine
	Fallback  *diagnostic.Fallback
}

// Build loads every record from src and assembles a snapshot. Any bad
// record fails the whole build.
func Build(ctx context.Context, src Source, cfg Config) (*Snapshot, error) {
	store, err := rules.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	g, err := store.Graph()
	if err != nil {
		return nil, err
	}
	cases, err := cbr.Load(ctx, src, g)
	if err != nil {
		return nil, fmt.Errorf("build case base: %w", err)
	}
	table, err := src.LoadConcernTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load concern table: %w", err)
	}
	fallback, err := diagnostic.New(table)
	if err != nil {
		return nil, fmt.Errorf("build fallback: %w", err)
	}

	detector := conflict.NewDetector(g, cfg.Detector)
	return &Snapshot{
		LoadedAt:  time.Now(),
		Rules:     store,
		Graph:     g,
		Detector:  detector,
		Sequencer: routine.NewSequencer(detector, cfg.Routine),
		Cases:     cases,
		Engine:    cbr.NewEngine(cases, detector, cfg.CBR),
		Fallback:  fallback,
	}, nil
}

// withCases returns a copy of s serving cases, with an engine rebuilt on
// the same detector and settings.
func (s *Snapshot) withCases(cases *cbr.CaseBase) *Snapshot {
	next := *s
	next.LoadedAt = time.Now()
	next.Cases = cases
	next.Engine = cbr.NewEngine(cases, s.Detector, s.Engine.Config())
	return &next
}

// Holder publishes the current snapshot. Readers call Current once per
// request and keep using that snapshot; a concurrent swap never changes
// what an in-flight request sees.
type Holder struct {
	mu      sync.Mutex // serializes Curate against Swap
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	logger  *slog.Logger
}

// NewHolder creates a holder publishing s.
func NewHolder(s *Snapshot, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Holder{logger: logger}
	h.Swap(s)
	return h
}

// Current returns the published snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap publishes s with the next version number and returns the previous snapshot.
func (h *Holder) Swap(s *Snapshot) *Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.swap(s)
}

func (h *Holder) swap(s *Snapshot) *Snapshot {
	s.Version = h.version.Add(1)
	return h.current.Swap(s)
}

// Curate adds c to the current case base and publishes the result as a new
// snapshot. The curated case lives until the next reload replaces the case
// base. It returns the stored case, with its id filled in when empty.
func (h *Holder) Curate(c models.Case) (models.Case, *Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur := h.current.Load()
	cases, stored, err := cur.Cases.Curate(c, cur.Graph)
	if err != nil {
		return models.Case{}, nil, err
	}
	next := cur.withCases(cases)
	h.swap(next)
	h.logger.Info("case curated", "case", stored.ID, "outcome", stored.Outcome, "version", next.Version, "cases", cases.Len())
	return stored, next, nil
}

// Reload builds a fresh snapshot from src and publishes it. On failure the
// current snapshot stays published and the error is returned.
func (h *Holder) Reload(ctx context.Context, src Source, cfg Config) (*Snapshot, error) {
	start := time.Now()
	next, err := Build(ctx, src, cfg)
	if err != nil {
		h.logger.Error("reload failed, keeping current snapshot", "error", err, "version", h.Current().Version)
		return nil, err
	}
	h.Swap(next)
	st := next.Rules.Stats()
	h.logger.Info("knowledge snapshot reloaded",
		"version", next.Version,
		"ingredients", st.Ingredients,
		"conflicts", st.Conflicts,
		"cautions", st.Cautions,
		"synergies", st.Synergies,
		"cases", next.Cases.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return next, nil
}
