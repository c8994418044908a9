package cli

import (
	"strings"

	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/spf13/cobra"
)

// profileFlags binds the skin profile options shared by routine,
// recommend and fallback.
type profileFlags struct {
	skinType    string
	concerns    []string
	sensitivity int
	avoid       []string
	current     []string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.skinType, "skin-type", "s", "", "skin type (dry, oily, combination, sensitive, normal)")
	cmd.Flags().StringSliceVarP(&f.concerns, "concerns", "c", nil, "skin concerns, e.g. acne,redness")
	cmd.Flags().IntVar(&f.sensitivity, "sensitivity", 3, "sensitivity from 1 (resilient) to 5 (very reactive)")
	cmd.Flags().StringSliceVar(&f.avoid, "avoid", nil, "ingredients to avoid")
	cmd.Flags().StringSliceVar(&f.current, "current", nil, "ingredients already in use")
}

// set reports whether any profile option was given on the command line.
func (f *profileFlags) set(cmd *cobra.Command) bool {
	for _, name := range []string{"skin-type", "concerns", "sensitivity", "avoid", "current"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func (f *profileFlags) profile() models.SkinProfile {
	concerns := make([]models.Concern, 0, len(f.concerns))
	for _, c := range f.concerns {
		concerns = append(concerns, models.Concern(enumKey(c)))
	}
	return models.SkinProfile{
		SkinType:    models.SkinType(enumKey(f.skinType)),
		Concerns:    concerns,
		Sensitivity: f.sensitivity,
		Avoid:       f.avoid,
		Current:     f.current,
	}
}

// enumKey lowercases s and joins words with underscores: "Dark circles"
// becomes "dark_circles".
func enumKey(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}
