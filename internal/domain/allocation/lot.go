package allocation

import "github.com/shopspring/decimal"

// Lot represents a production allotment: a batch that must yield an exact
// number of finished rolls for one sales-order item. It is an immutable input
// for the duration of an edit session; the planning core never changes a lot,
// it only distributes the lot's roll quantity across machines.
type Lot struct {
	id            string
	allotmentCode string
	actualRollQty decimal.Decimal
	diameter      int
	gauge         int
	yarnCount     float64
	stitchLength  float64
}

// NewLot creates a lot after validating its fabric parameters
func NewLot(id, allotmentCode string, actualRollQty decimal.Decimal, diameter, gauge int, yarnCount, stitchLength float64) (*Lot, error) {
	if id == "" {
		return nil, NewValidationError("id", "lot id cannot be empty")
	}
	if allotmentCode == "" {
		return nil, NewValidationError("allotmentCode", "allotment code cannot be empty")
	}
	if actualRollQty.Sign() <= 0 {
		return nil, NewValidationError("actualRollQty", "actual roll quantity must be positive")
	}
	if diameter <= 0 {
		return nil, NewValidationError("diameter", "diameter must be positive")
	}
	if gauge <= 0 {
		return nil, NewValidationError("gauge", "gauge must be positive")
	}

	return &Lot{
		id:            id,
		allotmentCode: allotmentCode,
		actualRollQty: actualRollQty,
		diameter:      diameter,
		gauge:         gauge,
		yarnCount:     yarnCount,
		stitchLength:  stitchLength,
	}, nil
}

// ID returns the lot identifier
func (l *Lot) ID() string {
	return l.id
}

// AllotmentCode returns the human-readable allotment code
func (l *Lot) AllotmentCode() string {
	return l.allotmentCode
}

// ActualRollQty returns the exact number of rolls the lot must yield
func (l *Lot) ActualRollQty() decimal.Decimal {
	return l.actualRollQty
}

// Diameter returns the fabric diameter in inches
func (l *Lot) Diameter() int {
	return l.diameter
}

// Gauge returns the fabric gauge (needles per inch)
func (l *Lot) Gauge() int {
	return l.gauge
}

// YarnCount returns the yarn count (Ne) of the lot's fabric spec
func (l *Lot) YarnCount() float64 {
	return l.yarnCount
}

// StitchLength returns the stitch length in millimeters
func (l *Lot) StitchLength() float64 {
	return l.stitchLength
}
