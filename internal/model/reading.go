package model

import (
	"time"

	"github.com/google/uuid"
)

// Reading is a single timestamped observation from the cement mill.
// Numeric columns are nullable in the raw table, so they are pointers here;
// nil means the value was absent at ingestion. After cleaning, MillTPH is
// guaranteed present.
type Reading struct {
	ID           uuid.UUID
	Timestamp    time.Time // zero when the source timestamp was missing or unparsable
	MillTPH      *float64
	ClinkerTPH   *float64
	GypsumTPH    *float64
	DryFlyAshTPH *float64
	WetFlyAshTPH *float64
	MillKW       *float64
	InletTempC   *float64
	OutletTempC  *float64
	SeparatorRPM *float64
	SeparatorKW  *float64
	VentFanRPM   *float64
	VentFanKW    *float64
	CombAirFanKW *float64
	ResiduePct   *float64
	RejectPct    *float64
}

// Field names a numeric reading column and knows how to extract it.
type Field struct {
	Name string
	get  func(r *Reading) *float64
}

// Value returns the field's value and whether it is present on the reading.
func (f Field) Value(r *Reading) (float64, bool) {
	if f.get == nil {
		return 0, false
	}
	p := f.get(r)
	if p == nil {
		return 0, false
	}
	return *p, true
}

var (
	MillTPH      = Field{Name: "mill_tph", get: func(r *Reading) *float64 { return r.MillTPH }}
	ClinkerTPH   = Field{Name: "clinker_tph", get: func(r *Reading) *float64 { return r.ClinkerTPH }}
	GypsumTPH    = Field{Name: "gypsum_tph", get: func(r *Reading) *float64 { return r.GypsumTPH }}
	DryFlyAshTPH = Field{Name: "dry_fly_ash_tph", get: func(r *Reading) *float64 { return r.DryFlyAshTPH }}
	WetFlyAshTPH = Field{Name: "wet_fly_ash_tph", get: func(r *Reading) *float64 { return r.WetFlyAshTPH }}
	MillKW       = Field{Name: "mill_kw", get: func(r *Reading) *float64 { return r.MillKW }}
	InletTempC   = Field{Name: "inlet_temp_c", get: func(r *Reading) *float64 { return r.InletTempC }}
	OutletTempC  = Field{Name: "outlet_temp_c", get: func(r *Reading) *float64 { return r.OutletTempC }}
	SeparatorRPM = Field{Name: "separator_rpm", get: func(r *Reading) *float64 { return r.SeparatorRPM }}
	SeparatorKW  = Field{Name: "separator_kw", get: func(r *Reading) *float64 { return r.SeparatorKW }}
	VentFanRPM   = Field{Name: "vent_fan_rpm", get: func(r *Reading) *float64 { return r.VentFanRPM }}
	VentFanKW    = Field{Name: "vent_fan_kw", get: func(r *Reading) *float64 { return r.VentFanKW }}
	CombAirFanKW = Field{Name: "comb_air_fan_kw", get: func(r *Reading) *float64 { return r.CombAirFanKW }}
	ResiduePct   = Field{Name: "residue_pct", get: func(r *Reading) *float64 { return r.ResiduePct }}
	RejectPct    = Field{Name: "reject_pct", get: func(r *Reading) *float64 { return r.RejectPct }}
)

// NumericFields lists every numeric column in a fixed order. The order is
// part of the deduplication key, so it must not change between releases.
var NumericFields = []Field{
	MillTPH, ClinkerTPH, GypsumTPH, DryFlyAshTPH, WetFlyAshTPH,
	MillKW, InletTempC, OutletTempC,
	SeparatorRPM, SeparatorKW, VentFanRPM, VentFanKW, CombAirFanKW,
	ResiduePct, RejectPct,
}

// Float64Ptr is a convenience for building readings with literal values.
func Float64Ptr(v float64) *float64 { return &v }
