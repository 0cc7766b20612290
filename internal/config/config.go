package config

// SimConfig holds configuration for a simulation run.
type SimConfig struct {
	OracleURL     string // Decision oracle base URL; empty uses the built-in heuristic
	LogLevel      string // Log level: debug, info, warn, error
	LogFormat     string // Log format: text, json
	DBPath        string // SQLite database path; empty disables persistence
	MaxReadyTasks int    // Task slots in the oracle state vector
	RewardExpr    string // Optional JS reward expression; empty uses the default model
}

// DefaultSimConfig returns sensible defaults.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		LogLevel:      "info",
		LogFormat:     "text",
		MaxReadyTasks: 32,
	}
}

// OracleConfig holds configuration for the reference oracle server.
type OracleConfig struct {
	Addr          string // Listen address (default ":8090")
	LogLevel      string // Log level: debug, info, warn, error
	LogFormat     string // Log format: text, json
	MaxReadyTasks int    // Must match the simulator's state-vector layout
}

// DefaultOracleConfig returns sensible defaults.
func DefaultOracleConfig() OracleConfig {
	return OracleConfig{
		Addr:          ":8090",
		LogLevel:      "info",
		LogFormat:     "text",
		MaxReadyTasks: 32,
	}
}
