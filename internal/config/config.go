// Package config loads the site-tunable policy constants consumed by the
// submission pipeline. Values are loaded once, before any submission call.
package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	// Floor applied to parsed per-slot memory requests, MiB.
	MinMemPerCpuMB uint64 `mapstructure:"min_mem_per_cpu_mb"`

	// Default applied when a job arrives without a memory request, MiB
	// per CPU.
	DefaultMemPerCpuMB uint64 `mapstructure:"default_mem_per_cpu_mb"`

	// Lowest gid that names a workgroup; submissions from lower groups
	// are rejected for non-root users.
	BaseGid uint32 `mapstructure:"base_gid"`

	// Partition name that requires an accompanying reservation.
	ReservedPartition string `mapstructure:"reserved_partition"`

	// QOS granted when every requested partition is workgroup-backed.
	PriorityAccessQos string `mapstructure:"priority_access_qos"`

	// Placeholder token substituted with the submitting group's name.
	WorkgroupToken string `mapstructure:"workgroup_token"`

	// Type prefixes that mark an owned-resource partition, matched
	// against <type>-<size><unit> names.
	OwnedResourceTypes []string `mapstructure:"owned_resource_types"`

	// GPU model tokens recognized in gpu:<model>:<count> GRES entries.
	GpuModels []string `mapstructure:"gpu_models"`

	Rules Rules `mapstructure:"rules"`
}

// Rules switches each optional policy rule independently.
type Rules struct {
	ReservedCheck       bool `mapstructure:"reserved_check"`
	RejectUserExclusive bool `mapstructure:"reject_user_exclusive"`
	OwnedResourceQos    bool `mapstructure:"owned_resource_qos"`
	PriorityQos         bool `mapstructure:"priority_qos"`
	WorkgroupSubst      bool `mapstructure:"workgroup_subst"`
	GresAdjust          bool `mapstructure:"gres_adjust"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	log.Tracef("Site policy config loaded: %+v", config)
	return &config, nil
}

// Default returns the built-in site configuration, used when no config
// file is given.
func Default() *Config {
	config, err := Load("")
	if err != nil {
		// defaults always validate
		log.Fatalf("Failed to build default config: %s", err)
	}
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("min_mem_per_cpu_mb", 1024)
	v.SetDefault("default_mem_per_cpu_mb", 1024)
	v.SetDefault("base_gid", 1001)
	v.SetDefault("reserved_partition", "reserved")
	v.SetDefault("priority_access_qos", "priority-access")
	v.SetDefault("workgroup_token", "_workgroup_")
	v.SetDefault("owned_resource_types", []string{"compute", "standard", "gpu"})
	v.SetDefault("gpu_models", []string{"a100", "v100", "t4", "p100"})

	v.SetDefault("rules.reserved_check", true)
	v.SetDefault("rules.reject_user_exclusive", true)
	v.SetDefault("rules.owned_resource_qos", true)
	v.SetDefault("rules.priority_qos", true)
	v.SetDefault("rules.workgroup_subst", true)
	v.SetDefault("rules.gres_adjust", true)
}

func validate(c *Config) error {
	if c.MinMemPerCpuMB == 0 {
		return fmt.Errorf("min_mem_per_cpu_mb must be positive")
	}
	if c.DefaultMemPerCpuMB == 0 {
		return fmt.Errorf("default_mem_per_cpu_mb must be positive")
	}
	if c.WorkgroupToken == "" {
		return fmt.Errorf("workgroup_token must not be empty")
	}
	if c.Rules.PriorityQos && c.PriorityAccessQos == "" {
		return fmt.Errorf("priority_access_qos required when rules.priority_qos is enabled")
	}
	return nil
}
