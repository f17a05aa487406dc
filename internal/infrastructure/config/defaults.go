package config

// Canonical planning defaults. The legacy screens disagreed on the
// reconciliation tolerance (0.01 vs 0.1 rolls); 0.01 is the system-wide
// value, because a tenth of a roll silently forgives a real shortfall.
const (
	DefaultTolerance          = 0.01
	DefaultProductionConstant = 0.00085
	DefaultEfficiency         = 85.0
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults: a local sqlite file keeps the CLI usable with no setup
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "knitplan.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 5
	}

	// Planning defaults
	if cfg.Planning.Tolerance == 0 {
		cfg.Planning.Tolerance = DefaultTolerance
	}
	if cfg.Planning.ProductionConstant == 0 {
		cfg.Planning.ProductionConstant = DefaultProductionConstant
	}
	if cfg.Planning.DefaultEfficiency == 0 {
		cfg.Planning.DefaultEfficiency = DefaultEfficiency
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
