// Package conflict classifies the pairwise relationships within a set of
// ingredients into conflicts, cautions and synergies.
//
// Only stored relationships are reported. A pair with no stored rule is
// left out of every group; that absence is not a statement that the pair
// is safe to combine.
package conflict

import (
	"cmp"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/graph"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrTooManyIngredients is returned by Check when the input exceeds Config.MaxIngredients.
var ErrTooManyIngredients = errors.New("too many ingredients")

// Verdict is the overall compatibility of a set.
type Verdict string

const (
	Compatible   Verdict = "compatible"
	Incompatible Verdict = "incompatible"
)

// Config bounds and tunes a Detector.
type Config struct {
	// MaxIngredients caps Check input. Zero means DefaultMaxIngredients.
	MaxIngredients int
	// ParallelPairs is the pair count at which enumeration fans out
	// across goroutines. Zero means DefaultParallelPairs; negative disables.
	ParallelPairs int
	// PHGap is the distance between pH ranges that produces a hint for
	// pairs without a stored rule. Zero means DefaultPHGap; negative disables.
	PHGap float64
}

const (
	DefaultMaxIngredients = 10
	DefaultParallelPairs  = 512
	DefaultPHGap          = 1.0
)

// DefaultConfig returns the standard detector configuration.
func DefaultConfig() Config {
	return Config{
		MaxIngredients: DefaultMaxIngredients,
		ParallelPairs:  DefaultParallelPairs,
		PHGap:          DefaultPHGap,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxIngredients == 0 {
		c.MaxIngredients = DefaultMaxIngredients
	}
	if c.ParallelPairs == 0 {
		c.ParallelPairs = DefaultParallelPairs
	}
	if c.PHGap == 0 {
		c.PHGap = DefaultPHGap
	}
	return c
}

// Finding is one classified pair. A and B are in ascending id order.
type Finding struct {
	A              string              `json:"a"`
	B              string              `json:"b"`
	NameA          string              `json:"name_a"`
	NameB          string              `json:"name_b"`
	Kind           models.RelationKind `json:"kind"`
	Explanation    string              `json:"explanation"`
	Recommendation string              `json:"recommendation,omitempty"`
	Severity       int                 `json:"severity"`
	ApplyFirst     string              `json:"apply_first,omitempty"`
	WaitMinutes    int                 `json:"wait_minutes,omitempty"`
	// Dominated holds weaker edges for the same pair, informational only.
	Dominated []models.InteractionEdge `json:"dominated,omitempty"`
}

// Hint is an advisory derived from ingredient attributes rather than a
// stored rule. Hints never affect the verdict.
type Hint struct {
	A       string `json:"a"`
	B       string `json:"b"`
	Message string `json:"message"`
}

// Report is the classification of an ingredient set.
type Report struct {
	Verdict     Verdict                    `json:"verdict"`
	Ingredients []string                   `json:"ingredients"`
	Conflicts   []Finding                  `json:"conflicts"`
	Cautions    []Finding                  `json:"cautions"`
	Synergies   []Finding                  `json:"synergies"`
	Hints       []Hint                     `json:"hints,omitempty"`
	Unknown     []models.UnknownIngredient `json:"unknown,omitempty"`
}

// Compatible reports whether no conflict was found.
func (r Report) Compatible() bool { return r.Verdict == Compatible }

// Detector classifies ingredient sets against one graph snapshot.
// Safe for concurrent use.
type Detector struct {
	graph *graph.Graph
	cfg   Config
}

// NewDetector creates a detector over g.
func NewDetector(g *graph.Graph, cfg Config) *Detector {
	return &Detector{graph: g, cfg: cfg.withDefaults()}
}

// Graph returns the graph the detector reads.
func (d *Detector) Graph() *graph.Graph { return d.graph }

// Config returns the effective configuration.
func (d *Detector) Config() Config { return d.cfg }

// Check resolves names or aliases and classifies the set. Unknown names
// are listed in Report.Unknown and the rest are still classified. The
// bound applies to distinct resolved ingredients, so unknown names and
// repeated aliases never count against it. Only an oversized set of known
// ingredients is an error.
func (d *Detector) Check(names []string) (Report, error) {
	var ids []string
	var unknown []models.UnknownIngredient
	seenID := make(map[string]bool)
	seenUnknown := make(map[string]bool)
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		ing, err := d.graph.Lookup(n)
		if err != nil {
			if key := models.NormalizeKey(n); !seenUnknown[key] {
				seenUnknown[key] = true
				unknown = append(unknown, models.UnknownIngredient{Input: n})
			}
			continue
		}
		if !seenID[ing.ID] {
			seenID[ing.ID] = true
			ids = append(ids, ing.ID)
		}
	}

	if len(ids) > d.cfg.MaxIngredients {
		return Report{}, fmt.Errorf("%w: %d given, at most %d", ErrTooManyIngredients, len(ids), d.cfg.MaxIngredients)
	}

	r := d.Classify(ids)
	r.Unknown = append(unknown, r.Unknown...)
	return r, nil
}

// Classify classifies a set of ingredient ids without a size bound.
// Ids missing from the graph are reported as unknown.
func (d *Detector) Classify(ids []string) Report {
	var known []string
	var unknown []models.UnknownIngredient
	for _, id := range ids {
		if d.graph.Has(id) {
			known = append(known, id)
		} else {
			unknown = append(unknown, models.UnknownIngredient{Input: id})
		}
	}
	slices.Sort(known)
	known = slices.Compact(known)

	r := Report{
		Verdict:     Compatible,
		Ingredients: known,
		Conflicts:   []Finding{},
		Cautions:    []Finding{},
		Synergies:   []Finding{},
		Unknown:     unknown,
	}

	findings, hints := d.enumerate(known)
	for _, f := range findings {
		switch f.Kind {
		case models.KindConflict:
			r.Conflicts = append(r.Conflicts, f)
		case models.KindCaution:
			r.Cautions = append(r.Cautions, f)
		case models.KindSynergy:
			r.Synergies = append(r.Synergies, f)
		}
	}
	sortFindings(r.Conflicts)
	sortFindings(r.Cautions)
	sortFindings(r.Synergies)
	r.Hints = hints

	if len(r.Conflicts) > 0 {
		r.Verdict = Incompatible
	}
	return r
}

// enumerate visits every pair of the sorted id list. Rows are computed
// independently so the parallel path assembles the same output as the
// sequential one.
func (d *Detector) enumerate(ids []string) ([]Finding, []Hint) {
	n := len(ids)
	pairs := n * (n - 1) / 2
	findingRows := make([][]Finding, n)
	hintRows := make([][]Hint, n)

	row := func(i int) {
		for j := i + 1; j < n; j++ {
			f, h, ok := d.classifyPair(ids[i], ids[j])
			if ok {
				findingRows[i] = append(findingRows[i], f)
			} else if h != nil {
				hintRows[i] = append(hintRows[i], *h)
			}
		}
	}

	if d.cfg.ParallelPairs > 0 && pairs >= d.cfg.ParallelPairs {
		var eg errgroup.Group
		eg.SetLimit(runtime.GOMAXPROCS(0))
		for i := 0; i < n; i++ {
			eg.Go(func() error {
				row(i)
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		for i := 0; i < n; i++ {
			row(i)
		}
	}

	return slices.Concat(findingRows...), slices.Concat(hintRows...)
}

// classifyPair expects a < b, matching the stored edge order.
func (d *Detector) classifyPair(a, b string) (Finding, *Hint, bool) {
	edges := d.graph.Edges(a, b)
	ingA, _ := d.graph.Get(a)
	ingB, _ := d.graph.Get(b)

	if len(edges) == 0 {
		return Finding{}, d.phHint(ingA, ingB), false
	}

	top := edges[0]
	f := Finding{
		A:              top.A,
		B:              top.B,
		NameA:          ingA.Name,
		NameB:          ingB.Name,
		Kind:           top.Kind,
		Explanation:    top.Explanation,
		Recommendation: top.Recommendation,
		Severity:       top.Severity,
		ApplyFirst:     top.ApplyFirst,
		WaitMinutes:    top.WaitMinutes,
	}
	if len(edges) > 1 {
		f.Dominated = edges[1:]
	}
	return f, nil, true
}

func (d *Detector) phHint(a, b models.Ingredient) *Hint {
	if d.cfg.PHGap < 0 || a.PH == nil || b.PH == nil {
		return nil
	}
	gap := a.PH.Gap(*b.PH)
	if gap <= d.cfg.PHGap {
		return nil
	}
	return &Hint{
		A: a.ID,
		B: b.ID,
		Message: fmt.Sprintf("%s (pH %.1f-%.1f) and %s (pH %.1f-%.1f) work at different pH; layering may reduce effectiveness",
			a.Name, a.PH.Min, a.PH.Max, b.Name, b.PH.Min, b.PH.Max),
	}
}

// sortFindings orders by severity descending, then by pair.
func sortFindings(fs []Finding) {
	slices.SortFunc(fs, func(x, y Finding) int {
		return cmp.Or(
			y.Severity-x.Severity,
			strings.Compare(x.A, y.A),
			strings.Compare(x.B, y.B),
		)
	})
}
