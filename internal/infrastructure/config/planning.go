package config

// PlanningConfig holds the numeric policy of the allocation core. These are
// the values the two legacy planning screens used to inline with conflicting
// copies; they live here exactly once.
type PlanningConfig struct {
	// Tolerance is the reconciliation epsilon in rolls: the allocated total
	// must match the lot's required quantity within this margin
	Tolerance float64 `mapstructure:"tolerance" validate:"required,gt=0"`

	// ProductionConstant is the fallback per-fabric-class coefficient for
	// machines whose catalog row carries none
	ProductionConstant float64 `mapstructure:"production_constant" validate:"required,gt=0"`

	// DefaultEfficiency is the fallback machine efficiency percentage
	DefaultEfficiency float64 `mapstructure:"default_efficiency" validate:"required,gt=0,lte=100"`
}
