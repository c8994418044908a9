package dataset

import (
	"context"
	"embed"
	"fmt"
	"os"

	"github.com/raphaelgruber/mixmyroutine/internal/diagnostic"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	embeddedRules = "data/rules.yaml"
	embeddedCases = "data/cases.yaml"
)

// Source reads records from YAML files, falling back to the embedded data
// set for any path left empty. It satisfies knowledge.Source.
type Source struct {
	RulesPath string
	CasesPath string
}

// Embedded returns a source backed only by the built-in data set.
func Embedded() Source {
	return Source{}
}

// Paths returns the configured on-disk file paths.
func (s Source) Paths() []string {
	var out []string
	for _, p := range []string{s.RulesPath, s.CasesPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s Source) read(path, fallback string) ([]byte, error) {
	if path == "" {
		data, err := embedded.ReadFile(fallback)
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", fallback, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s Source) rules(ctx context.Context) (*RulesFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.read(s.RulesPath, embeddedRules)
	if err != nil {
		return nil, err
	}
	f, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", s.label(s.RulesPath), err)
	}
	return f, nil
}

func (s Source) label(path string) string {
	if path == "" {
		return "(embedded)"
	}
	return path
}

// LoadRules returns the ingredient and interaction records.
func (s Source) LoadRules(ctx context.Context) ([]models.Ingredient, []models.InteractionEdge, error) {
	f, err := s.rules(ctx)
	if err != nil {
		return nil, nil, err
	}
	ings, edges := f.Model()
	return ings, edges, nil
}

// LoadConcernTable returns the concern to category table from the rules
// file.
func (s Source) LoadConcernTable(ctx context.Context) (diagnostic.Table, error) {
	f, err := s.rules(ctx)
	if err != nil {
		return nil, err
	}
	return f.Table(), nil
}

// LoadCases returns the stored cases.
func (s Source) LoadCases(ctx context.Context) ([]models.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.read(s.CasesPath, embeddedCases)
	if err != nil {
		return nil, err
	}
	f, err := ParseCases(data)
	if err != nil {
		return nil, fmt.Errorf("cases %s: %w", s.label(s.CasesPath), err)
	}
	return f.Model(), nil
}

// AppendCase adds c to the cases file on disk. The whole file is validated
// and rewritten; comments in it are not preserved.
func (s Source) AppendCase(ctx context.Context, c models.Case) error {
	if s.CasesPath == "" {
		return fmt.Errorf("no cases file configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.read(s.CasesPath, embeddedCases)
	if err != nil {
		return err
	}
	f, err := ParseCases(data)
	if err != nil {
		return fmt.Errorf("cases %s: %w", s.CasesPath, err)
	}
	for _, r := range f.Cases {
		if r.ID == c.ID {
			return fmt.Errorf("%w: case %q already in %s", ErrInvalidRecord, c.ID, s.CasesPath)
		}
	}
	f.Cases = append(f.Cases, CaseRecordFrom(c))

	out, err := EncodeCases(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.CasesPath, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.CasesPath, err)
	}
	return nil
}
