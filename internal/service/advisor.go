// Package service composes the reasoning components into the operations a
// caller needs: lookup with suggestions, compatibility checks, routine
// building and profile recommendations with the case-to-fallback policy.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/knowledge"
	"github.com/raphaelgruber/mixmyroutine/internal/metrics"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/raphaelgruber/mixmyroutine/internal/parser"
	"github.com/raphaelgruber/mixmyroutine/internal/routine"
)

// ErrInvalidProfile indicates a skin profile with unknown or out-of-range values.
var ErrInvalidProfile = errors.New("invalid skin profile")

// DefaultSuggestionLimit caps "did you mean" suggestions per unknown input.
const DefaultSuggestionLimit = 3

// Options configures an Advisor. Zero values select defaults.
type Options struct {
	SuggestionLimit int
	Metrics         *metrics.Collector
	Logger          *slog.Logger
}

// Advisor answers requests against the snapshot published by a holder.
// Each request reads one snapshot, so a concurrent reload never mixes two
// versions of the data in one answer.
type Advisor struct {
	holder      *knowledge.Holder
	metrics     *metrics.Collector
	logger      *slog.Logger
	suggestions int
}

// NewAdvisor creates an advisor over h.
func NewAdvisor(h *knowledge.Holder, opts Options) *Advisor {
	if opts.SuggestionLimit == 0 {
		opts.SuggestionLimit = DefaultSuggestionLimit
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCollector()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Advisor{
		holder:      h,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		suggestions: max(opts.SuggestionLimit, 0),
	}
}

// Snapshot returns the currently published snapshot.
func (a *Advisor) Snapshot() *knowledge.Snapshot { return a.holder.Current() }

// Metrics returns the advisor's collector.
func (a *Advisor) Metrics() *metrics.Collector { return a.metrics }

// Reload rebuilds the snapshot from src and publishes it. A failed build
// leaves the current snapshot in place.
func (a *Advisor) Reload(ctx context.Context, src knowledge.Source, cfg knowledge.Config) (*knowledge.Snapshot, error) {
	start := time.Now()
	snap, err := a.holder.Reload(ctx, src, cfg)
	a.metrics.RecordTiming(metrics.OpSnapshotLoad, time.Since(start))
	return snap, err
}

// CheckCompatibility classifies every pair among the named ingredients.
// Unknown names come back in the report with suggestions.
func (a *Advisor) CheckCompatibility(names []string) (conflict.Report, error) {
	start := time.Now()
	snap := a.holder.Current()

	r, err := snap.Detector.Check(names)
	if err != nil {
		return conflict.Report{}, err
	}
	r.Unknown = a.withSuggestions(snap, r.Unknown)

	a.metrics.RecordRequest(metrics.OpConflictCheck, time.Since(start), len(names))
	a.logger.Debug("compatibility checked",
		"ingredients", len(r.Ingredients),
		"verdict", r.Verdict,
		"conflicts", len(r.Conflicts),
		"unknown", len(r.Unknown),
	)
	return r, nil
}

// CheckText finds ingredient mentions in free text and checks them.
func (a *Advisor) CheckText(text string) (conflict.Report, []parser.Mention, error) {
	mentions := parser.ExtractMentions(text, a.holder.Current().Graph.Terms())
	names := make([]string, len(mentions))
	for i, m := range mentions {
		names[i] = m.ID
	}
	r, err := a.CheckCompatibility(names)
	return r, mentions, err
}

// BuildRoutine slots and orders the items. profile may be nil; when set it
// adds skin-type and avoid-list notes.
func (a *Advisor) BuildRoutine(items []routine.Item, profile *models.SkinProfile) (routine.Result, error) {
	start := time.Now()
	snap := a.holder.Current()

	if profile != nil {
		if err := ValidateProfile(*profile); err != nil {
			return routine.Result{}, err
		}
		p := resolveProfile(snap, *profile)
		profile = &p
	}

	res, err := snap.Sequencer.Build(items, profile)
	if err != nil {
		return routine.Result{}, err
	}
	res.Unknown = a.withSuggestions(snap, res.Unknown)

	a.metrics.RecordRequest(metrics.OpRoutineBuild, time.Since(start), len(items))
	if len(res.Unresolved) > 0 {
		a.logger.Info("routine has unresolved conflicts", "count", len(res.Unresolved))
	}
	return res, nil
}

// ValidateProfile checks skin type, concerns and sensitivity.
func ValidateProfile(p models.SkinProfile) error {
	var problems []error
	if !p.SkinType.Valid() {
		problems = append(problems, fmt.Errorf("unknown skin type %q", p.SkinType))
	}
	for _, c := range p.Concerns {
		if !c.Valid() {
			problems = append(problems, fmt.Errorf("unknown concern %q", c))
		}
	}
	if p.Sensitivity < models.MinSensitivity || p.Sensitivity > models.MaxSensitivity {
		problems = append(problems, fmt.Errorf("sensitivity %d outside %d-%d", p.Sensitivity, models.MinSensitivity, models.MaxSensitivity))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, errors.Join(problems...))
	}
	return nil
}

// resolveProfile maps avoid-list and current entries given as names or
// aliases to ingredient ids. Unresolvable entries are kept as written.
func resolveProfile(snap *knowledge.Snapshot, p models.SkinProfile) models.SkinProfile {
	resolve := func(in []string) []string {
		if in == nil {
			return nil
		}
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = s
			if ing, err := snap.Graph.Lookup(s); err == nil {
				out[i] = ing.ID
			}
		}
		return out
	}
	p.Avoid = resolve(p.Avoid)
	p.Current = resolve(p.Current)
	return p
}
