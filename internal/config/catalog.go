package config

import (
	"fmt"
	"sort"
)

// Canonical variable names used throughout the panel. Primitive variables
// originate from an external source; derived variables are computed by the
// identity calculator from same-year primitives.
const (
	VarGDP          = "gdp"
	VarConsumption  = "consumption"
	VarGovernment   = "government"
	VarExports      = "exports"
	VarImports      = "imports"
	VarTaxRevenue   = "tax_revenue"
	VarPopulation   = "population"
	VarLaborForce   = "labor_force"
	VarHumanCapital = "human_capital"
	VarCapitalIndex = "capital_index" // real capital stock index (rkna)
	VarPriceLevel   = "price_level"   // output price level (pl)

	VarNetExports    = "net_exports"
	VarCapitalStock  = "capital_stock"
	VarTFP           = "tfp"
	VarOpenness      = "openness"
	VarSaving        = "saving"
	VarPublicSaving  = "public_saving"
	VarPrivateSaving = "private_saving"
	VarSavingRate    = "saving_rate"
)

// Kind distinguishes externally sourced variables from computed ones.
type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindDerived   Kind = "derived"
)

// StrategyClass names the extrapolation strategy assigned to a variable.
// The orchestrator resolves the class to a concrete strategy and owns the
// fallback order when the assigned one cannot fit.
type StrategyClass string

const (
	StrategyTrendModel    StrategyClass = "trend"
	StrategyAverageGrowth StrategyClass = "growth"
	StrategyLinearTrend   StrategyClass = "linear"
)

// Range bounds the plausible values of a variable for the validation gate.
type Range struct {
	Min   float64
	Max   float64
	Valid bool
}

// Contains reports whether v lies inside the range. An unset range accepts
// everything.
func (r Range) Contains(v float64) bool {
	return !r.Valid || (v >= r.Min && v <= r.Max)
}

// VariableSpec is the static metadata of one panel variable.
type VariableSpec struct {
	Name string
	Kind Kind
	// Unit is the target unit the panel stores, for report headers.
	Unit string
	// Factor converts a source-native value into the target unit. Applied
	// exactly once, at merge time. Zero means no conversion is defined and
	// merging the variable fails.
	Factor float64
	// Strategy is the extrapolation class assigned to primitive variables.
	Strategy StrategyClass
	// Plausible bounds checked by the validation gate.
	Bounds Range
}

// Catalog maps variable names to their specs.
type Catalog map[string]VariableSpec

// ErrUnknownVariable is returned when a source supplies a variable absent
// from the catalog.
var ErrUnknownVariable = fmt.Errorf("config: variable not in catalog")

// Spec returns the spec for a variable name.
func (c Catalog) Spec(name string) (VariableSpec, error) {
	spec, ok := c[name]
	if !ok {
		return VariableSpec{}, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return spec, nil
}

// Primitives returns the primitive variable names in sorted order.
func (c Catalog) Primitives() []string {
	var names []string
	for name, spec := range c {
		if spec.Kind == KindPrimitive {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Derived returns the derived variable names in sorted order.
func (c Catalog) Derived() []string {
	var names []string
	for name, spec := range c {
		if spec.Kind == KindDerived {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultCatalog returns the built-in catalog for the China panel. National
// accounts arrive in current US dollars and are stored in billions; head
// counts are stored in millions; Penn World Table indexes pass through
// unscaled.
func DefaultCatalog() Catalog {
	const (
		toBillions = 1e-9
		toMillions = 1e-6
		identity   = 1.0
	)
	return Catalog{
		VarGDP:          {Name: VarGDP, Kind: KindPrimitive, Unit: "bn USD", Factor: toBillions, Strategy: StrategyTrendModel, Bounds: Range{Min: 0, Max: 1e6, Valid: true}},
		VarConsumption:  {Name: VarConsumption, Kind: KindPrimitive, Unit: "bn USD", Factor: toBillions, Strategy: StrategyTrendModel, Bounds: Range{Min: 0, Max: 1e6, Valid: true}},
		VarGovernment:   {Name: VarGovernment, Kind: KindPrimitive, Unit: "bn USD", Factor: toBillions, Strategy: StrategyTrendModel, Bounds: Range{Min: 0, Max: 1e6, Valid: true}},
		VarExports:      {Name: VarExports, Kind: KindPrimitive, Unit: "bn USD", Factor: toBillions, Strategy: StrategyTrendModel, Bounds: Range{Min: 0, Max: 1e6, Valid: true}},
		VarImports:      {Name: VarImports, Kind: KindPrimitive, Unit: "bn USD", Factor: toBillions, Strategy: StrategyTrendModel, Bounds: Range{Min: 0, Max: 1e6, Valid: true}},
		VarTaxRevenue:   {Name: VarTaxRevenue, Kind: KindPrimitive, Unit: "bn USD", Factor: toBillions, Strategy: StrategyAverageGrowth, Bounds: Range{Min: 0, Max: 1e6, Valid: true}},
		VarPopulation:   {Name: VarPopulation, Kind: KindPrimitive, Unit: "mn persons", Factor: toMillions, Strategy: StrategyAverageGrowth, Bounds: Range{Min: 0, Max: 5e3, Valid: true}},
		VarLaborForce:   {Name: VarLaborForce, Kind: KindPrimitive, Unit: "mn persons", Factor: toMillions, Strategy: StrategyAverageGrowth, Bounds: Range{Min: 0, Max: 5e3, Valid: true}},
		VarHumanCapital: {Name: VarHumanCapital, Kind: KindPrimitive, Unit: "index", Factor: identity, Strategy: StrategyLinearTrend, Bounds: Range{Min: 0, Max: 10, Valid: true}},
		VarCapitalIndex: {Name: VarCapitalIndex, Kind: KindPrimitive, Unit: "index", Factor: identity, Strategy: StrategyTrendModel, Bounds: Range{Min: 0, Max: 1e6, Valid: true}},
		VarPriceLevel:   {Name: VarPriceLevel, Kind: KindPrimitive, Unit: "index", Factor: identity, Strategy: StrategyLinearTrend, Bounds: Range{Min: 0, Max: 100, Valid: true}},

		VarNetExports:    {Name: VarNetExports, Kind: KindDerived, Unit: "bn USD", Factor: identity, Bounds: Range{Min: -1e6, Max: 1e6, Valid: true}},
		VarCapitalStock:  {Name: VarCapitalStock, Kind: KindDerived, Unit: "bn USD", Factor: identity, Bounds: Range{Min: 0, Max: 1e7, Valid: true}},
		VarTFP:           {Name: VarTFP, Kind: KindDerived, Unit: "index", Factor: identity, Bounds: Range{Min: 0, Max: 1e3, Valid: true}},
		VarOpenness:      {Name: VarOpenness, Kind: KindDerived, Unit: "ratio", Factor: identity, Bounds: Range{Min: 0, Max: 10, Valid: true}},
		VarSaving:        {Name: VarSaving, Kind: KindDerived, Unit: "bn USD", Factor: identity, Bounds: Range{Min: -1e6, Max: 1e6, Valid: true}},
		VarPublicSaving:  {Name: VarPublicSaving, Kind: KindDerived, Unit: "bn USD", Factor: identity, Bounds: Range{Min: -1e6, Max: 1e6, Valid: true}},
		VarPrivateSaving: {Name: VarPrivateSaving, Kind: KindDerived, Unit: "bn USD", Factor: identity, Bounds: Range{Min: -1e6, Max: 1e6, Valid: true}},
		VarSavingRate:    {Name: VarSavingRate, Kind: KindDerived, Unit: "ratio", Factor: identity, Bounds: Range{Min: -1, Max: 1, Valid: true}},
	}
}
