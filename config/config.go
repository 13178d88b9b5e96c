package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds yield solver, risk and reporting parameters.
type Config struct {
	// ConvergenceTolerance is the clean price tolerance (per 100 par) for the
	// Newton-Raphson yield solver.
	ConvergenceTolerance float64 `mapstructure:"convergence_tolerance"`

	// MaxYieldIterations is the maximum number of Newton steps.
	MaxYieldIterations int `mapstructure:"max_yield_iterations"`

	// YieldFloor and YieldCeiling bound every Newton iterate.
	YieldFloor   float64 `mapstructure:"yield_floor"`
	YieldCeiling float64 `mapstructure:"yield_ceiling"`

	// DerivativeBump is the yield shift used for the solver's central difference.
	DerivativeBump float64 `mapstructure:"derivative_bump"`

	// DerivativeThreshold is the minimum derivative magnitude.
	// Below this, Newton iteration stops to avoid division by near-zero.
	DerivativeThreshold float64 `mapstructure:"derivative_threshold"`

	// RiskBump is the yield shift used for duration and convexity.
	RiskBump float64 `mapstructure:"risk_bump"`

	// BatchWorkers caps concurrent valuations in batch mode.
	BatchWorkers int `mapstructure:"batch_workers"`

	// OutputDecimals is the rounding applied to reported figures.
	OutputDecimals int32 `mapstructure:"output_decimals"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	ConvergenceTolerance: 1e-10,
	MaxYieldIterations:   100,
	YieldFloor:           -0.10,
	YieldCeiling:         1.00,
	DerivativeBump:       1e-6,
	DerivativeThreshold:  1e-15,
	RiskBump:             1e-4,
	BatchWorkers:         4,
	OutputDecimals:       6,
	LogLevel:             "info",
	LogPretty:            true,
}

var (
	mu  sync.RWMutex
	cfg = DefaultConfig
)

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// EnvPrefix is the prefix for environment overrides, e.g. ILBOND_BATCH_WORKERS.
const EnvPrefix = "ILBOND"

// Load builds a Config from defaults, an optional .env file, an optional
// YAML config file and ILBOND_* environment variables, in increasing priority.
// An empty path skips the config file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, fmt.Errorf("config.Load: unmarshal: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// Validate rejects settings the solver cannot run with.
func (c Config) Validate() error {
	switch {
	case c.ConvergenceTolerance <= 0:
		return fmt.Errorf("config: convergence_tolerance must be positive")
	case c.MaxYieldIterations <= 0:
		return fmt.Errorf("config: max_yield_iterations must be positive")
	case c.YieldFloor >= c.YieldCeiling:
		return fmt.Errorf("config: yield_floor (%g) must be below yield_ceiling (%g)", c.YieldFloor, c.YieldCeiling)
	case c.DerivativeBump <= 0 || c.RiskBump <= 0:
		return fmt.Errorf("config: derivative_bump and risk_bump must be positive")
	case c.BatchWorkers <= 0:
		return fmt.Errorf("config: batch_workers must be positive")
	case c.OutputDecimals < 0:
		return fmt.Errorf("config: output_decimals must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig
	v.SetDefault("convergence_tolerance", d.ConvergenceTolerance)
	v.SetDefault("max_yield_iterations", d.MaxYieldIterations)
	v.SetDefault("yield_floor", d.YieldFloor)
	v.SetDefault("yield_ceiling", d.YieldCeiling)
	v.SetDefault("derivative_bump", d.DerivativeBump)
	v.SetDefault("derivative_threshold", d.DerivativeThreshold)
	v.SetDefault("risk_bump", d.RiskBump)
	v.SetDefault("batch_workers", d.BatchWorkers)
	v.SetDefault("output_decimals", d.OutputDecimals)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
}
