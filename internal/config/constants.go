// Package config carries the ambient, fixed knobs of the system: the
// default property-campaign size and shrinking bounds, plus a
// YAML-loadable override for cmd/typegen's -config flag.
package config

// Version is the current typegen release version, set at build time by
// -ldflags.
var Version = "0.1.0"

// IsTestMode is set once at startup by a test harness; while true,
// campaigns that don't override their size explicitly shrink to the
// TestMode* bounds below for fast CI runs.
var IsTestMode = false

const (
	// DefaultMinSuccessfulTests is the number of passing draws a
	// spec-check campaign needs absent an explicit Options override.
	DefaultMinSuccessfulTests = 100
	// DefaultMaxSize bounds the generation-size parameter a campaign
	// ramps up to, which in turn bounds the recursive generator's
	// unfolding depth.
	DefaultMaxSize = 100
	// TestModeMinSuccessfulTests and TestModeMaxSize replace the
	// defaults while IsTestMode is set.
	TestModeMinSuccessfulTests = 10
	TestModeMaxSize            = 20
	// DefaultSeedCount is how many fixed-seed argument tuples a
	// campaign draws and checks before the random phase, so every run
	// deterministically re-covers the same leading draws.
	DefaultSeedCount = 8
)

// CampaignConfig is the YAML-loadable shape of a spec-check campaign's
// tunables.
type CampaignConfig struct {
	MinSuccessfulTests int    `yaml:"min_successful_tests"`
	MaxSize            int    `yaml:"max_size"`
	SeedCount          int    `yaml:"seed_count"`
	HistoryDB          string `yaml:"history_db"`
}

// Defaults returns the built-in campaign configuration.
func Defaults() CampaignConfig {
	return CampaignConfig{
		MinSuccessfulTests: DefaultMinSuccessfulTests,
		MaxSize:            DefaultMaxSize,
		SeedCount:          DefaultSeedCount,
	}
}
