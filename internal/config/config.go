// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/raphaelgruber/mixmyroutine/internal/cbr"
	"github.com/raphaelgruber/mixmyroutine/internal/conflict"
	"github.com/raphaelgruber/mixmyroutine/internal/knowledge"
	"github.com/raphaelgruber/mixmyroutine/internal/models"
	"github.com/raphaelgruber/mixmyroutine/internal/routine"
)

// Config holds all configuration values.
type Config struct {
	// Data files; empty means the embedded data set
	RulesFile string `validate:"omitempty,file"`
	CasesFile string `validate:"omitempty,file"`

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Request bounds
	MaxCheckIngredients int `validate:"min=2,max=100"`
	MaxRoutineItems     int `validate:"min=1,max=200"`
	SuggestionLimit     int `validate:"min=0,max=20"`

	// Case-based reasoning
	CBRTopK              int     `validate:"min=1,max=50"`
	CBRMinSimilarity     float64 `validate:"gte=0,lte=1"`
	CBRWeightSkinType    float64 `validate:"gte=0"`
	CBRWeightConcerns    float64 `validate:"gte=0"`
	CBRWeightSensitivity float64 `validate:"gte=0"`

	// Slot for "either" items before conflict moves
	FlexibleSlot string `validate:"oneof=am pm"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var errs []error
	intEnv := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		errs = append(errs, err)
		return v
	}
	floatEnv := func(key string, def float64) float64 {
		v, err := getEnvFloat(key, def)
		errs = append(errs, err)
		return v
	}

	cfg := Config{
		RulesFile: getEnv("MIXMY_RULES_FILE", ""),
		CasesFile: getEnv("MIXMY_CASES_FILE", ""),

		LogFile:  getEnv("MIXMY_LOG_FILE", "/tmp/mixmyroutine.log"),
		LogLevel: parseLogLevel(getEnv("MIXMY_LOG_LEVEL", "INFO")),

		MaxCheckIngredients: intEnv("MIXMY_MAX_CHECK_INGREDIENTS", conflict.DefaultMaxIngredients),
		MaxRoutineItems:     intEnv("MIXMY_MAX_ROUTINE_ITEMS", routine.DefaultMaxItems),
		SuggestionLimit:     intEnv("MIXMY_SUGGESTION_LIMIT", 3),

		CBRTopK:              intEnv("MIXMY_CBR_TOP_K", cbr.DefaultTopK),
		CBRMinSimilarity:     floatEnv("MIXMY_CBR_MIN_SIMILARITY", cbr.DefaultMinSimilarity),
		CBRWeightSkinType:    floatEnv("MIXMY_CBR_WEIGHT_SKIN_TYPE", cbr.DefaultWeights().SkinType),
		CBRWeightConcerns:    floatEnv("MIXMY_CBR_WEIGHT_CONCERNS", cbr.DefaultWeights().Concerns),
		CBRWeightSensitivity: floatEnv("MIXMY_CBR_WEIGHT_SENSITIVITY", cbr.DefaultWeights().Sensitivity),

		FlexibleSlot: strings.ToLower(getEnv("MIXMY_FLEXIBLE_SLOT", string(models.SlotAM))),
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every value is in range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.CBRWeightSkinType+c.CBRWeightConcerns+c.CBRWeightSensitivity <= 0 {
		return errors.New("invalid configuration: CBR similarity weights sum to zero")
	}
	return nil
}

// Knowledge maps the settings onto the reasoning components.
func (c Config) Knowledge() knowledge.Config {
	kc := knowledge.DefaultConfig()
	kc.Detector.MaxIngredients = c.MaxCheckIngredients
	kc.Routine.MaxItems = c.MaxRoutineItems
	kc.Routine.FlexibleSlot = models.Slot(c.FlexibleSlot)
	kc.CBR.TopK = c.CBRTopK
	kc.CBR.MinSimilarity = c.CBRMinSimilarity
	kc.CBR.Weights = cbr.Weights{
		SkinType:    c.CBRWeightSkinType,
		Concerns:    c.CBRWeightConcerns,
		Sensitivity: c.CBRWeightSensitivity,
	}
	return kc
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
