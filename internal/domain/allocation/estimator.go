package allocation

import "math"

// EstimateInput carries the machine and fabric parameters the production-time
// formula needs. Fields are frequently unset while the operator is still
// picking machines, so every consumer must tolerate zero values.
type EstimateInput struct {
	AllocatedWeightKg float64
	Needle            int
	Feeder            int
	RPM               float64
	StitchLength      float64
	YarnCount         float64
	Efficiency        float64
	Constant          float64
}

// ProductionTimeEstimator estimates how many days a machine needs to knit its
// allocated weight.
//
// The formula, per machine allocation:
//
//	gramsPerMinute = needle * feeder * rpm * stitchLength * constant * (efficiency / 100) / yarnCount
//	kgPerHour      = gramsPerMinute / 1000 * 60
//	estimatedDays  = allocatedWeight / kgPerHour / 24
//
// The constant is an empirical per-fabric-class coefficient supplied by the
// machine catalog, not invented here.
type ProductionTimeEstimator struct{}

// EstimateDays returns the estimated production time in days.
// It returns exactly 0, never NaN or Inf, whenever any input is zero, missing
// or negative. Incomplete machine rows are the normal case mid-edit.
func (ProductionTimeEstimator) EstimateDays(in EstimateInput) float64 {
	if in.AllocatedWeightKg <= 0 ||
		in.Needle <= 0 ||
		in.Feeder <= 0 ||
		in.RPM <= 0 ||
		in.StitchLength <= 0 ||
		in.YarnCount <= 0 ||
		in.Efficiency <= 0 ||
		in.Constant <= 0 {
		return 0
	}

	gramsPerMinute := float64(in.Needle) * float64(in.Feeder) * in.RPM * in.StitchLength * in.Constant * (in.Efficiency / 100) / in.YarnCount
	kgPerHour := gramsPerMinute / 1000 * 60
	if kgPerHour <= 0 {
		return 0
	}

	days := in.AllocatedWeightKg / kgPerHour / 24
	// An extreme weight over a near-zero rate overflows float64; such an
	// estimate carries no information, so it degrades to 0 like any other
	// unusable input
	if math.IsInf(days, 0) || math.IsNaN(days) {
		return 0
	}
	return days
}
