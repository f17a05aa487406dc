package allocation

import "github.com/shopspring/decimal"

// Machine is a knitting machine as described by the machine catalog.
// Needle, feeder, rpm, efficiency and the per-fabric-class constant feed the
// production-time estimate; RollPerKg converts allocated rolls to weight.
//
// RollPerKg is carried per machine, not per lot: the catalog owns the ratio
// and a lot-wide ratio is just every machine carrying the same value.
type Machine struct {
	ID         string
	Name       string
	Dia        int
	GG         int
	Needle     int
	Feeder     int
	RPM        float64
	Efficiency float64
	Constant   float64
	RollPerKg  decimal.Decimal
}

// CompatibleWith reports whether the machine can knit the lot's fabric.
// Diameter and gauge are physical constraints; a mismatch is never allocatable.
func (m Machine) CompatibleWith(lot *Lot) bool {
	return m.Dia == lot.Diameter() && m.GG == lot.Gauge()
}
