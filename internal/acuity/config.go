package acuity

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/hackgods/clinical-tracker/internal/clinical"
)

// MinScoredEntries is the fewest entries that can produce a nonzero score.
// Config.MinEntries may raise it but never lower it.
const MinScoredEntries = 5

// Config tunes the normalization curves. Each ceiling is the amount of
// exposure at which a component saturates at 100.
type Config struct {
	MinEntries int `mapstructure:"min_entries"`

	DeviceCeiling      float64 `mapstructure:"device_ceiling"`
	MedicationCeiling  float64 `mapstructure:"medication_ceiling"`
	CouldTeachBonus    float64 `mapstructure:"could_teach_bonus"`
	ProcedureCeiling   float64 `mapstructure:"procedure_ceiling"`
	PopulationCeiling  float64 `mapstructure:"population_ceiling"`
	VasopressorCeiling float64 `mapstructure:"vasopressor_ceiling"`

	ObservedMultiplier   float64 `mapstructure:"observed_multiplier"`
	UsedItMultiplier     float64 `mapstructure:"used_it_multiplier"`
	CouldTeachMultiplier float64 `mapstructure:"could_teach_multiplier"`

	StrengthThreshold int `mapstructure:"strength_threshold"`
	GapThreshold      int `mapstructure:"gap_threshold"`
}

func DefaultConfig() Config {
	return Config{
		MinEntries:           MinScoredEntries,
		DeviceCeiling:        20,
		MedicationCeiling:    15,
		CouldTeachBonus:      4,
		ProcedureCeiling:     8,
		PopulationCeiling:    6,
		VasopressorCeiling:   4,
		ObservedMultiplier:   0.5,
		UsedItMultiplier:     0.75,
		CouldTeachMultiplier: 1,
		StrengthThreshold:    70,
		GapThreshold:         40,
	}
}

// ConfigFromViper overlays the "scoring" section of v onto the defaults.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if !v.IsSet("scoring") {
		return cfg, nil
	}
	if err := v.UnmarshalKey("scoring", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode scoring config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MinEntries < MinScoredEntries {
		return fmt.Errorf("scoring min_entries must be at least %d, got %d", MinScoredEntries, c.MinEntries)
	}
	for name, v := range map[string]float64{
		"device_ceiling":      c.DeviceCeiling,
		"medication_ceiling":  c.MedicationCeiling,
		"procedure_ceiling":   c.ProcedureCeiling,
		"population_ceiling":  c.PopulationCeiling,
		"vasopressor_ceiling": c.VasopressorCeiling,
	} {
		if v <= 0 {
			return fmt.Errorf("scoring %s must be positive, got %v", name, v)
		}
	}
	if c.CouldTeachBonus < 0 {
		return fmt.Errorf("scoring could_teach_bonus must not be negative")
	}
	if c.ObservedMultiplier < 0 || c.ObservedMultiplier > c.UsedItMultiplier || c.UsedItMultiplier > c.CouldTeachMultiplier {
		return fmt.Errorf("scoring confidence multipliers must be non-negative and ordered observed <= used_it <= could_teach")
	}
	if c.GapThreshold > c.StrengthThreshold {
		return fmt.Errorf("scoring gap_threshold must not exceed strength_threshold")
	}
	return nil
}

func (c Config) multiplier(level clinical.ConfidenceLevel) float64 {
	switch level {
	case clinical.ConfidenceObserved:
		return c.ObservedMultiplier
	case clinical.ConfidenceCouldTeach:
		return c.CouldTeachMultiplier
	default:
		return c.UsedItMultiplier
	}
}
