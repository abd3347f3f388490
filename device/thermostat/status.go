// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package thermostat

import (
	"context"
	"errors"

	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/meta"
	"github.com/rob-gra/insteon-bridge/outcome"
	"github.com/rob-gra/insteon-bridge/signal"
)

// statusFlags is the decoded D11 byte.
type statusFlags struct {
	cooling bool
	heating bool
	energy  bool
	celsius bool
	hold    bool
}

func decodeStatusFlags(b byte) statusFlags {
	return statusFlags{
		cooling: b&0x01 != 0,
		heating: b&0x02 != 0,
		energy:  b&0x04 != 0,
		celsius: b&0x08 != 0,
		hold:    b&0x10 != 0,
	}
}

// processStatusReply decodes a status extended reply in the order §4.5
// mandates: D11 first (it establishes units, and is persisted
// unconditionally — a known quirk carried over from the source, see
// DESIGN.md), then D6, D7, D8, D9-D10, D12.
func (t *Thermostat) processStatusReply(reply insteon.Extended, done outcome.Callback) {
	d := reply.Data
	flags := decodeStatusFlags(d[10]) // D11

	units := meta.UnitsFahrenheit
	if flags.celsius {
		units = meta.UnitsCelsius
	}

	ctx := context.Background()
	if err := meta.Merge(ctx, t.Store, t.Addr, meta.NamespaceThermostat, func(mp map[string]any) {
		mp[meta.KeyUnits] = int(units)
	}); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}

	sysNibble := d[5] // D6
	mode, modeOK := modeFromNibble(sysNibble >> 4)
	fan := Fan(sysNibble & 0x01)

	coolC := fromDeviceUnits(float64(d[6]), units) // D7
	humidity := int(d[7])                          // D8
	ambientRaw := int16(uint16(d[8])<<8 | uint16(d[9]))
	ambientC := float64(ambientRaw) / 10.0          // D9-D10
	heatC := fromDeviceUnits(float64(d[11]), units) // D12

	t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.AmbientTemp, Payload: ambientC})
	if modeOK {
		t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.Mode, Payload: mode})
	} else {
		t.Log.Warn("unknown thermostat mode nibble %#x", sysNibble>>4)
	}
	t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.Fan, Payload: fan})
	t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.CoolSetpoint, Payload: coolC})
	t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.HeatSetpoint, Payload: heatC})
	t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.AmbientHumidity, Payload: humidity})

	status := "off"
	switch {
	case flags.cooling:
		status = "cooling"
	case flags.heating:
		status = "heating"
	}
	t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.StatusChange, Payload: status})
	t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.Hold, Payload: flags.hold})
	t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.Energy, Payload: flags.energy})

	done(outcome.Result{Success: true, Message: "Thermostat Get Status Success"})
}

// ErrHumiditySetpointsUnimplemented is returned by HumiditySetpoints: the
// source's response handling for this request was stubbed out, per
// §9's open questions, and no reply format was available to implement
// against.
var ErrHumiditySetpointsUnimplemented = errors.New("thermostat: humidity setpoints response handling is not implemented")

// HumiditySetpoints would request the thermostat's humidify/dehumidify
// setpoints. Left unimplemented; see ErrHumiditySetpointsUnimplemented.
func (t *Thermostat) HumiditySetpoints(context.Context) error {
	return ErrHumiditySetpointsUnimplemented
}

// cmdGetHumiditySetpoints is the CmdMap entry for get_humidity_setpoints:
// the command exists, the way the source's dict-based cmd_map always
// had an entry for it, but completes immediately with failure rather
// than fabricating a reply format no source material specifies.
func (t *Thermostat) cmdGetHumiditySetpoints(done outcome.Callback, _ map[string]any) {
	done(outcome.Result{Success: false, Message: ErrHumiditySetpointsUnimplemented.Error()})
}
