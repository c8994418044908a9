// Package dataset reads ingredient, interaction, case and concern-table
// records from YAML, validates them and converts them to model types. The
// built-in data set is embedded; files on disk can replace it and are
// watched for changes.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/raphaelgruber/mixmyroutine/internal/diagnostic"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRecord indicates a YAML record that fails validation.
var ErrInvalidRecord = errors.New("invalid record")

// RulesFile is the layout of an ingredient rules file.
type RulesFile struct {
	Ingredients       []IngredientRecord  `yaml:"ingredients" validate:"required,min=1,dive"`
	Interactions      []InteractionRecord `yaml:"interactions" validate:"dive"`
	ConcernCategories map[string][]string `yaml:"concern_categories" validate:"dive,keys,concern,endkeys,min=1,dive,category"`
}

// IngredientRecord is one ingredient as written in YAML.
type IngredientRecord struct {
	ID               string    `yaml:"id" validate:"required"`
	Name             string    `yaml:"name" validate:"required"`
	Aliases          []string  `yaml:"aliases" validate:"dive,required"`
	Category         string    `yaml:"category" validate:"required,category"`
	PH               *PHRecord `yaml:"ph"`
	MaxConcentration *float64  `yaml:"max_concentration" validate:"omitempty,gt=0,lte=100"`
	TimeOfDay        string    `yaml:"time_of_day" validate:"required,time_of_day"`
	Concerns         []string  `yaml:"concerns" validate:"dive,concern"`
	CautionSkinTypes []string  `yaml:"caution_skin_types" validate:"dive,skin_type"`
	Guidance         string    `yaml:"guidance"`
	BeginnerFriendly bool      `yaml:"beginner_friendly"`
}

// PHRecord is an effective pH interval.
type PHRecord struct {
	Min float64 `yaml:"min" validate:"gte=0,lte=14"`
	Max float64 `yaml:"max" validate:"gte=0,lte=14,gtefield=Min"`
}

// InteractionRecord is one pairwise rule as written in YAML.
type InteractionRecord struct {
	A              string `yaml:"a" validate:"required"`
	B              string `yaml:"b" validate:"required,nefield=A"`
	Kind           string `yaml:"kind" validate:"required,relation_kind"`
	Explanation    string `yaml:"explanation" validate:"required"`
	Recommendation string `yaml:"recommendation"`
	Severity       int    `yaml:"severity" validate:"min=1,max=10"`
	ApplyFirst     string `yaml:"apply_first" validate:"omitempty,eqfield=A|eqfield=B"`
	WaitMinutes    int    `yaml:"wait_minutes" validate:"gte=0,lte=120"`
}

// CasesFile is the layout of a case file.
type CasesFile struct {
	Cases []CaseRecord `yaml:"cases" validate:"dive"`
}

// CaseRecord is one stored case as written in YAML.
type CaseRecord struct {
	ID          string        `yaml:"id" validate:"required"`
	Profile     ProfileRecord `yaml:"profile"`
	Ingredients []string      `yaml:"ingredients" validate:"required,min=1,dive,required"`
	Outcome     string        `yaml:"outcome" validate:"required,outcome"`
	Note        string        `yaml:"note,omitempty"`
}

// ProfileRecord is a skin profile as written in YAML.
type ProfileRecord struct {
	SkinType    string   `yaml:"skin_type" validate:"required,skin_type"`
	Concerns    []string `yaml:"concerns" validate:"dive,concern"`
	Sensitivity int      `yaml:"sensitivity" validate:"min=1,max=5"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	enum := func(valid func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool { return valid(fl.Field().String()) }
	}
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("category", enum(func(s string) bool { return models.Category(s).Valid() })))
	must(v.RegisterValidation("time_of_day", enum(func(s string) bool { return models.TimeOfDay(s).Valid() })))
	must(v.RegisterValidation("concern", enum(func(s string) bool { return models.Concern(s).Valid() })))
	must(v.RegisterValidation("skin_type", enum(func(s string) bool { return models.SkinType(s).Valid() })))
	must(v.RegisterValidation("relation_kind", enum(func(s string) bool { return models.RelationKind(s).Valid() })))
	must(v.RegisterValidation("outcome", enum(func(s string) bool { return models.Outcome(s).Valid() })))
	return v
}

// check validates a record struct and flattens validator errors into one
// readable error wrapping ErrInvalidRecord.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		msg := fmt.Sprintf("%s: failed %q", field, fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s: failed %q (%s)", field, fe.Tag(), fe.Param())
		}
		if s, ok := fe.Value().(string); ok && s != "" {
			msg += fmt.Sprintf(" on %q", s)
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(msgs, "; "))
}

// ParseRules decodes and validates a rules file.
func ParseRules(data []byte) (*RulesFile, error) {
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode rules yaml: %w", err)
	}
	if err := check(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseCases decodes and validates a case file.
func ParseCases(data []byte) (*CasesFile, error) {
	var f CasesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode cases yaml: %w", err)
	}
	if err := check(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Model converts the ingredient and interaction records.
func (f *RulesFile) Model() ([]models.Ingredient, []models.InteractionEdge) {
	ings := make([]models.Ingredient, 0, len(f.Ingredients))
	for _, r := range f.Ingredients {
		ing := models.Ingredient{
			ID:               r.ID,
			Name:             r.Name,
			Aliases:          r.Aliases,
			Category:         models.Category(r.Category),
			MaxConcentration: r.MaxConcentration,
			TimeOfDay:        models.TimeOfDay(r.TimeOfDay),
			Guidance:         r.Guidance,
			BeginnerFriendly: r.BeginnerFriendly,
		}
		if r.PH != nil {
			ing.PH = &models.PHRange{Min: r.PH.Min, Max: r.PH.Max}
		}
		for _, c := range r.Concerns {
			ing.Concerns = append(ing.Concerns, models.Concern(c))
		}
		for _, st := range r.CautionSkinTypes {
			ing.CautionSkinTypes = append(ing.CautionSkinTypes, models.SkinType(st))
		}
		ings = append(ings, ing)
	}

	edges := make([]models.InteractionEdge, 0, len(f.Interactions))
	for _, r := range f.Interactions {
		edges = append(edges, models.InteractionEdge{
			A:              r.A,
			B:              r.B,
			Kind:           models.RelationKind(r.Kind),
			Explanation:    r.Explanation,
			Recommendation: r.Recommendation,
			Severity:       r.Severity,
			ApplyFirst:     r.ApplyFirst,
			WaitMinutes:    r.WaitMinutes,
		})
	}
	return ings, edges
}

// Table converts the concern-category records. An absent section yields
// the built-in table.
func (f *RulesFile) Table() diagnostic.Table {
	if len(f.ConcernCategories) == 0 {
		return diagnostic.DefaultTable()
	}
	t := make(diagnostic.Table, len(f.ConcernCategories))
	for concern, cats := range f.ConcernCategories {
		list := make([]models.Category, len(cats))
		for i, c := range cats {
			list[i] = models.Category(c)
		}
		t[models.Concern(concern)] = list
	}
	return t
}

// Model converts the case records.
func (f *CasesFile) Model() []models.Case {
	out := make([]models.Case, 0, len(f.Cases))
	for _, r := range f.Cases {
		c := models.Case{
			ID:          r.ID,
			Ingredients: r.Ingredients,
			Outcome:     models.Outcome(r.Outcome),
			Note:        r.Note,
			Profile: models.SkinProfile{
				SkinType:    models.SkinType(r.Profile.SkinType),
				Sensitivity: r.Profile.Sensitivity,
			},
		}
		for _, concern := range r.Profile.Concerns {
			c.Profile.Concerns = append(c.Profile.Concerns, models.Concern(concern))
		}
		out = append(out, c)
	}
	return out
}

// CaseRecordFrom converts a case back into its YAML record.
func CaseRecordFrom(c models.Case) CaseRecord {
	r := CaseRecord{
		ID:          c.ID,
		Ingredients: slices.Clone(c.Ingredients),
		Outcome:     string(c.Outcome),
		Note:        c.Note,
		Profile: ProfileRecord{
			SkinType:    string(c.Profile.SkinType),
			Sensitivity: c.Profile.Sensitivity,
		},
	}
	for _, concern := range c.Profile.Concerns {
		r.Profile.Concerns = append(r.Profile.Concerns, string(concern))
	}
	return r
}

// EncodeCases validates and encodes a case file.
func EncodeCases(f *CasesFile) ([]byte, error) {
	if err := check(f); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode cases yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode cases yaml: %w", err)
	}
	return buf.Bytes(), nil
}
