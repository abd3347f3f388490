// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package thermostat

import (
	"context"

	"github.com/rob-gra/insteon-bridge/meta"
)

func fahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

func celsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

func fromDeviceUnits(raw float64, units meta.Units) float64 {
	if units == meta.UnitsFahrenheit {
		return fahrenheitToCelsius(raw)
	}
	return raw
}

func toDeviceUnits(tempC float64, units meta.Units) float64 {
	if units == meta.UnitsFahrenheit {
		return celsiusToFahrenheit(tempC)
	}
	return tempC
}

// currentUnits reads the device's last-reported unit preference. Absent
// a prior status read, Fahrenheit is assumed — Insteon thermostats ship
// defaulting to Fahrenheit and this only affects setpoint commands sent
// before the first get_status.
func (t *Thermostat) currentUnits(ctx context.Context) (meta.Units, error) {
	rec, ok, err := t.Store.GetMeta(ctx, t.Addr, meta.NamespaceThermostat)
	if err != nil {
		return meta.UnitsFahrenheit, err
	}
	if !ok {
		return meta.UnitsFahrenheit, nil
	}
	tm := meta.ThermostatMetaFromMap(rec)
	if tm.HasUnits {
		return tm.Units, nil
	}
	return meta.UnitsFahrenheit, nil
}
