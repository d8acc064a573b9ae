package config

import "github.com/spf13/viper"

// setDefaults sets the baseline values used when a run's config file and
// environment leave a field unset.
func setDefaults(v *viper.Viper) {
	v.SetDefault("nodes", 4)
	v.SetDefault("seed", 1)
	v.SetDefault("slots", 10)
	v.SetDefault("topology", string(TopologyFullyConnected))
	v.SetDefault("quorum_threshold", 55.0)
	v.SetDefault("link_delay_millis", 100)
	v.SetDefault("round_base_seconds", 1.0)
	v.SetDefault("data_dir", "scpsim-data")
	v.SetDefault("persistent", false)
}
