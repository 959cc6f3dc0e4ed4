// Package carbon converts logged quantities into estimated CO₂ mass.
package carbon

// Key identifies one entry of a factor table. Lookups match Type and Unit
// exactly; no case folding or unit conversion is applied.
type Key struct {
	Type string
	Unit string
}

// Table maps an activity type and unit to kilograms of CO₂ per unit.
type Table map[Key]float64

// FallbackFactor applies to every (type, unit) pair absent from the table:
// one unit of quantity counts as one kilogram of CO₂.
const FallbackFactor = 1.0

// DefaultTable returns a fresh copy of the built-in factors.
func DefaultTable() Table {
	return Table{
		{Type: "transport", Unit: "km"}:    0.2,
		{Type: "electricity", Unit: "kWh"}: 0.5,
		{Type: "food", Unit: "kg"}:         2.5,
	}
}

// Estimator holds an immutable factor table. The zero value has an empty
// table, so every estimate uses FallbackFactor.
type Estimator struct {
	factors Table
}

// New builds an Estimator over a private copy of t.
func New(t Table) *Estimator {
	cp := make(Table, len(t))
	for k, v := range t {
		cp[k] = v
	}
	return &Estimator{factors: cp}
}

// Default builds an Estimator over DefaultTable.
func Default() *Estimator {
	return &Estimator{factors: DefaultTable()}
}

// Factor returns the multiplier used for the pair.
func (e *Estimator) Factor(activityType, unit string) float64 {
	if f, ok := e.factors[Key{Type: activityType, Unit: unit}]; ok {
		return f
	}
	return FallbackFactor
}

// Estimate returns value × factor. Negative, infinite or NaN values are
// passed through unchanged in sign and kind.
func (e *Estimator) Estimate(activityType string, value float64, unit string) float64 {
	return value * e.Factor(activityType, unit)
}
