package allocation

import "github.com/shopspring/decimal"

// RollWeightConverter converts between roll counts and weights for a given
// rolls-per-kilogram ratio. Pure and stateless; decimal arithmetic keeps the
// weight derivation exact no matter how often an allocation is recomputed.
type RollWeightConverter struct{}

// WeightForRolls returns the allocated weight in kilograms for a roll count
func (RollWeightConverter) WeightForRolls(rolls, rollPerKg decimal.Decimal) decimal.Decimal {
	return rolls.Mul(rollPerKg)
}

// RollsForWeight returns the roll count equivalent to a weight. A zero ratio
// yields zero rolls rather than a division by zero; machines without a
// configured ratio simply cannot carry weight-first entry.
func (RollWeightConverter) RollsForWeight(weight, rollPerKg decimal.Decimal) decimal.Decimal {
	if rollPerKg.IsZero() {
		return decimal.Zero
	}
	return weight.Div(rollPerKg)
}
