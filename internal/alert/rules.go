package alert

import "github.com/septivank/mill-analytics-worker/internal/model"

// Built-in alert definitions for the mill. Each is a Rule over the snapshot;
// Evaluate does the work.

// RejectRateRule flags readings with reject rate above the multiplier of its
// own mean.
func (a *Alerter) RejectRateRule() Rule {
	return Rule{
		Name:    "reject_rate",
		Combine: Any,
		Conditions: []Condition{
			{Field: model.RejectPct, Ref: MeanOf(model.RejectPct), Multiplier: a.cfg.RejectRateMultiplier, Direction: Above},
		},
	}
}

// HighTemperatureRule flags readings with outlet temperature above a fixed
// domain ceiling, not a computed statistic.
func (a *Alerter) HighTemperatureRule() Rule {
	return Rule{
		Name:    "high_outlet_temperature",
		Combine: Any,
		Conditions: []Condition{
			{Field: model.OutletTempC, Ref: Literal(a.cfg.HighOutletTempC), Multiplier: 1, Direction: Above},
		},
	}
}

// SeparatorInefficiencyRule flags separator power draw above the multiplier
// of its own mean.
func (a *Alerter) SeparatorInefficiencyRule() Rule {
	return Rule{
		Name:    "separator_inefficiency",
		Combine: Any,
		Conditions: []Condition{
			{Field: model.SeparatorKW, Ref: MeanOf(model.SeparatorKW), Multiplier: a.cfg.SeparatorLoadMultiplier, Direction: Above},
		},
	}
}

// MaintenanceRule flags readings where either the vent fan or the separator
// draws well above its mean power.
func (a *Alerter) MaintenanceRule() Rule {
	return Rule{
		Name:    "maintenance",
		Combine: Any,
		Conditions: []Condition{
			{Field: model.VentFanKW, Ref: MeanOf(model.VentFanKW), Multiplier: a.cfg.MaintenanceMultiplier, Direction: Above},
			{Field: model.SeparatorKW, Ref: MeanOf(model.SeparatorKW), Multiplier: a.cfg.MaintenanceMultiplier, Direction: Above},
		},
	}
}

// PowerSpikeRule flags readings where any of the three major consumers draws
// above the multiplier of its own mean.
func (a *Alerter) PowerSpikeRule() Rule {
	return Rule{
		Name:    "power_spike",
		Combine: Any,
		Conditions: []Condition{
			{Field: model.MillKW, Ref: MeanOf(model.MillKW), Multiplier: a.cfg.PowerSpikeMultiplier, Direction: Above},
			{Field: model.SeparatorKW, Ref: MeanOf(model.SeparatorKW), Multiplier: a.cfg.PowerSpikeMultiplier, Direction: Above},
			{Field: model.CombAirFanKW, Ref: MeanOf(model.CombAirFanKW), Multiplier: a.cfg.PowerSpikeMultiplier, Direction: Above},
		},
	}
}

// FanFailureRule flags the low-RPM/high-power signature of a failing vent
// fan. Both fields must be present on a reading for it to match.
func (a *Alerter) FanFailureRule() Rule {
	return Rule{
		Name:    "fan_failure",
		Combine: All,
		Conditions: []Condition{
			{Field: model.VentFanRPM, Ref: MeanOf(model.VentFanRPM), Multiplier: a.cfg.FanRPMDropMultiplier, Direction: Below},
			{Field: model.VentFanKW, Ref: MeanOf(model.VentFanKW), Multiplier: a.cfg.FanPowerRiseMultiplier, Direction: Above},
		},
	}
}

// WearRule flags the slow-separator/coarse-product signature of internal
// wear: depressed separator RPM together with elevated residue.
func (a *Alerter) WearRule() Rule {
	return Rule{
		Name:    "wear",
		Combine: All,
		Conditions: []Condition{
			{Field: model.SeparatorRPM, Ref: MeanOf(model.SeparatorRPM), Multiplier: a.cfg.WearRPMMultiplier, Direction: Below},
			{Field: model.ResiduePct, Ref: MeanOf(model.ResiduePct), Multiplier: a.cfg.WearResidueMultiplier, Direction: Above},
		},
	}
}

// Rules returns every built-in rule, in reporting order.
func (a *Alerter) Rules() []Rule {
	return []Rule{
		a.RejectRateRule(),
		a.HighTemperatureRule(),
		a.SeparatorInefficiencyRule(),
		a.MaintenanceRule(),
		a.PowerSpikeRule(),
		a.FanFailureRule(),
		a.WearRule(),
	}
}
