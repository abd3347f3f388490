// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package meta

// Recognized key names within each namespace, per §3's metadata table.
const (
	KeyBatteryVoltageTime = "battery_voltage_time"
	KeyBatteryLowVoltage  = "battery_low_voltage"
	KeyUnits              = "units"
)

// Units is the thermostat's device-reported unit preference.
type Units int

const (
	UnitsFahrenheit Units = 0
	UnitsCelsius    Units = 1
)

// MotionMeta is the typed view of the "Motion" namespace: last-seen
// battery voltage reading time and an optional low-battery threshold
// override.
type MotionMeta struct {
	BatteryVoltageTime   float64 // unix seconds, 0 if never recorded
	LowBatteryVoltage    float64
	HasLowBatteryVoltage bool
}

// MotionMetaFromMap decodes a namespace map into a MotionMeta, tolerating
// absent keys.
func MotionMetaFromMap(m map[string]any) MotionMeta {
	var mm MotionMeta
	if v, ok := floatOf(m[KeyBatteryVoltageTime]); ok {
		mm.BatteryVoltageTime = v
	}
	if v, ok := floatOf(m[KeyBatteryLowVoltage]); ok {
		mm.LowBatteryVoltage = v
		mm.HasLowBatteryVoltage = true
	}
	return mm
}

// ToMap encodes a MotionMeta back into a namespace map.
func (mm MotionMeta) ToMap() map[string]any {
	out := map[string]any{
		KeyBatteryVoltageTime: mm.BatteryVoltageTime,
	}
	if mm.HasLowBatteryVoltage {
		out[KeyBatteryLowVoltage] = mm.LowBatteryVoltage
	}
	return out
}

// ThermostatMeta is the typed view of the "thermostat" namespace.
type ThermostatMeta struct {
	Units    Units
	HasUnits bool
}

// ThermostatMetaFromMap decodes a namespace map into a ThermostatMeta.
func ThermostatMetaFromMap(m map[string]any) ThermostatMeta {
	var tm ThermostatMeta
	if v, ok := floatOf(m[KeyUnits]); ok {
		tm.Units = Units(int(v))
		tm.HasUnits = true
	}
	return tm
}

// ToMap encodes a ThermostatMeta back into a namespace map.
func (tm ThermostatMeta) ToMap() map[string]any {
	if !tm.HasUnits {
		return map[string]any{}
	}
	return map[string]any{KeyUnits: int(tm.Units)}
}

// floatOf tolerates the handful of numeric shapes a Store might hand
// back (JSON decodes numbers into float64; CBOR decodes floats into
// float64 and integers into uint64 or int64; a caller may have set an
// int or float32 directly in-process).
func floatOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
