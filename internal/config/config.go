// Package config loads the tool's typed Config: store locations and the
// default validation request fields, read via viper with
// DIGEST_-prefixed environment overrides.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds default run parameters plus the file locations the core's
// stores are loaded from and persisted to. `digest validate` does not
// consult it; a run's parameters come from its request file.
type Config struct {
	// StoreDir is the directory containing the persisted registry,
	// annotation store, and sparse distance matrices.
	StoreDir string `mapstructure:"store_dir"`
	// NetworkFile is the optional path to an entity-network edge list
	// consumed by the NetworkPreserving sampler.
	NetworkFile string `mapstructure:"network_file"`

	NRandom     uint32  `mapstructure:"n_random"`
	Coefficient string  `mapstructure:"coefficient"`
	Sampler     string  `mapstructure:"sampler"`
	ReplacePct  int     `mapstructure:"replace_pct"`
	Threshold   float64 `mapstructure:"threshold"`
}

// RegisterDefaults installs the baseline validation-request defaults.
// Exported so both Load and the
// `digest config` command tree (which reads/writes the package-level
// viper singleton rather than a private instance) apply the same
// baseline.
func RegisterDefaults(v *viper.Viper) {
	v.SetDefault("store_dir", "./digest-store")
	v.SetDefault("network_file", "")
	v.SetDefault("n_random", 1000)
	v.SetDefault("coefficient", "jaccard")
	v.SetDefault("sampler", "uniform")
	v.SetDefault("replace_pct", 50)
	v.SetDefault("threshold", 0.5)
}

// Load reads configuration from configFile (if non-empty), the
// DIGEST_-prefixed environment, and the registered defaults, in that
// precedence order (env overrides file, file overrides defaults).
func Load(configFile string) (*Config, error) {
	v := viper.New()
	RegisterDefaults(v)

	v.SetEnvPrefix("DIGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
