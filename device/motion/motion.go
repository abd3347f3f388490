// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package motion implements the motion/battery sensor state machine:
// operating-flag read/write, battery voltage decoding with an
// auto-request policy, and broadcast interpretation for the motion,
// dusk/dawn, battery and heartbeat groups. See specification §4.4.
package motion

import (
	"context"
	"fmt"
	"time"

	"github.com/rob-gra/insteon-bridge/device"
	"github.com/rob-gra/insteon-bridge/handler"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/meta"
	"github.com/rob-gra/insteon-bridge/outcome"
	"github.com/rob-gra/insteon-bridge/sequence"
	"github.com/rob-gra/insteon-bridge/signal"
)

// BatteryCheckInterval is how long a voltage reading is considered
// fresh before Wake requests a new one.
const BatteryCheckInterval = 4 * 24 * time.Hour

// BatteryRequestDedupe prevents Wake from re-requesting a voltage
// reading more often than this, independent of reading staleness.
const BatteryRequestDedupe = 5 * time.Minute

// Motion wraps a base device.Device with the motion-sensor command set.
// Model distinguishes the 2842 and 2844-family encodings (§4.4).
type Motion struct {
	*device.Device
	Model string

	now             func() time.Time
	lastRequestTime time.Time
}

// New builds a Motion state machine over base, registering its
// commands, set-flags and broadcast-group handlers.
func New(base *device.Device, model string) *Motion {
	m := &Motion{Device: base, Model: model, now: time.Now}

	m.CmdMap["set_low_battery_voltage"] = m.cmdSetLowBatteryVoltage
	m.CmdMap["get_battery_voltage"] = m.cmdGetBatteryVoltage
	m.CmdMap["update_flags"] = m.cmdUpdateFlags
	m.SetFlagsMap["timeout"] = m.cmdSetTimeout
	m.SetFlagsMap["light_sensitivity"] = m.cmdSetLightSensitivity

	m.Groups[0x01] = handleMotionGroup
	m.Groups[0x02] = handleDawnGroup
	m.Groups[0x03] = handleBatteryGroup
	m.Groups[0x04] = handleHeartbeatGroup

	m.OnWake = m.Wake

	return m
}

func handleMotionGroup(d *device.Device, cmd1 byte) {
	d.Bus.Publish(signal.Event{Addr: d.Addr, Kind: signal.MotionState, Payload: cmd1 == 0x11})
}

func handleDawnGroup(d *device.Device, cmd1 byte) {
	d.Bus.Publish(signal.Event{Addr: d.Addr, Kind: signal.Dawn, Payload: cmd1 == 0x11})
}

func handleBatteryGroup(d *device.Device, cmd1 byte) {
	d.Bus.Publish(signal.Event{Addr: d.Addr, Kind: signal.LowBattery, Payload: cmd1 == 0x11})
}

func handleHeartbeatGroup(d *device.Device, cmd1 byte) {
	d.Bus.Publish(signal.Event{Addr: d.Addr, Kind: signal.Heartbeat, Payload: true})
}

func (m *Motion) cmdSetLowBatteryVoltage(done outcome.Callback, args map[string]any) {
	volts, err := floatArg(args, "voltage")
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	ctx := context.Background()
	if err := meta.Merge(ctx, m.Store, m.Addr, meta.NamespaceMotion, func(mp map[string]any) {
		mp[meta.KeyBatteryLowVoltage] = volts
	}); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	done(outcome.Result{Success: true, Message: "Motion Set Low Battery Voltage Success"})
}

func (m *Motion) cmdGetBatteryVoltage(done outcome.Callback, _ map[string]any) {
	frame, err := insteon.NewExtendedSet(m.Addr, m.PLM, insteon.Cmd1ExtendedGetSet, insteon.Cmd2ExtendedGet)
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	h := handler.NewExtendedCmdResponse(frame, m.parseBatteryReply, done, 0)
	if err := m.Transport.Send(context.Background(), m.Addr, frame, h); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
	}
}

// parseBatteryReply decodes D12 (index 11) of the extended reply and
// emits the low-battery signal, per §4.4.
func (m *Motion) parseBatteryReply(reply insteon.Extended, done outcome.Callback) {
	ctx := context.Background()
	raw := reply.Data[11]
	volts := decodeBatteryVoltage(m.Model, raw)

	threshold, err := m.lowBatteryThreshold(ctx)
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}

	if err := meta.Merge(ctx, m.Store, m.Addr, meta.NamespaceMotion, func(mp map[string]any) {
		mp[meta.KeyBatteryVoltageTime] = float64(m.now().Unix())
	}); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}

	m.Bus.Publish(signal.Event{Addr: m.Addr, Kind: signal.LowBattery, Payload: volts <= threshold})
	done(outcome.Result{Success: true, Message: "Motion Get Battery Voltage Success", Data: volts})
}

func (m *Motion) lowBatteryThreshold(ctx context.Context) (float64, error) {
	rec, ok, err := m.Store.GetMeta(ctx, m.Addr, meta.NamespaceMotion)
	if err != nil {
		return 0, err
	}
	if !ok {
		return defaultLowBatteryVoltage(m.Model), nil
	}
	mm := meta.MotionMetaFromMap(rec)
	if mm.HasLowBatteryVoltage {
		return mm.LowBatteryVoltage, nil
	}
	return defaultLowBatteryVoltage(m.Model), nil
}

// cmdUpdateFlags composes the read-modify-write sequence of §4.4's flag
// write algorithm: get the current operating flags, merge in whichever
// of led_on/night_only/on_only the caller supplied, then write D3.
func (m *Motion) cmdUpdateFlags(done outcome.Callback, args map[string]any) {
	getFrame, err := insteon.NewExtendedSet(m.Addr, m.PLM, insteon.Cmd1ExtendedGetSet, insteon.Cmd2ExtendedGet)
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}

	var currentFlags byte
	getHandler := handler.NewExtendedCmdResponse(getFrame, func(reply insteon.Extended, done2 outcome.Callback) {
		currentFlags = reply.Data[5] // D6
		done2(outcome.Result{Success: true})
	}, nil, 0)

	seq := sequence.New(m.Transport, "Motion Set Flags Success", done)
	seq.Add(sequence.Msg(m.Addr, getFrame, getHandler))
	seq.Add(sequence.Func(func(done2 outcome.Callback) {
		ledOn, nightOnly, onOnly := decodeFlagsByte(currentFlags)

		if v, present := args["led_on"]; present {
			b, err := device.ParseBool(v)
			if err != nil {
				done2(outcome.Result{Success: false, Message: err.Error()})
				return
			}
			ledOn = b
		}
		if v, present := args["night_only"]; present {
			b, err := device.ParseBool(v)
			if err != nil {
				done2(outcome.Result{Success: false, Message: err.Error()})
				return
			}
			nightOnly = b
		}
		if v, present := args["on_only"]; present {
			b, err := device.ParseBool(v)
			if err != nil {
				done2(outcome.Result{Success: false, Message: err.Error()})
				return
			}
			onOnly = b
		}

		d3 := composeFlagsByte(ledOn, nightOnly, onOnly)
		m.sendFlagWrite(insteon.SubCmdFlags, d3, done2)
	}))
	seq.Run()
}

func (m *Motion) cmdSetTimeout(done outcome.Callback, args map[string]any) {
	seconds, err := intArg(args, "timeout")
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	m.sendFlagWrite(insteon.SubCmdTimeout, encodeTimeout(m.Model, seconds), done)
}

func (m *Motion) cmdSetLightSensitivity(done outcome.Callback, args map[string]any) {
	v, err := intArg(args, "light_sensitivity")
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	m.sendFlagWrite(insteon.SubCmdLightSensitivity, byte(device.ClampInt(v, 0, 255)), done)
}

// sendFlagWrite sends an extended get/set with sub-command subCmd and a
// single scalar data byte, completing done on ACK/NAK.
func (m *Motion) sendFlagWrite(subCmd, value byte, done outcome.Callback) {
	frame, err := insteon.NewExtendedSet(m.Addr, m.PLM, insteon.Cmd1ExtendedGetSet, insteon.Cmd2ExtendedGet, 0x00, subCmd, value)
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	ackMsg := insteon.Standard{To: m.Addr, From: m.PLM, Flags: frame.Flags, Cmd1: frame.Cmd1, Cmd2: frame.Cmd2}
	h := handler.NewStandardCmd(ackMsg, func(_ insteon.Standard, done2 outcome.Callback) {
		done2(outcome.Result{Success: true})
	}, done, 0)
	if err := m.Transport.Send(context.Background(), m.Addr, frame, h); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
	}
}

// Wake runs the auto-battery-check policy: fires a get-battery-voltage
// when the last reading is stale and a request hasn't gone out too
// recently. Installed as the base Device's OnWake hook by New, so
// cmd/insteond's periodic wake tick drives it for every motion sensor
// in the roster, per §4.4.
func (m *Motion) Wake() {
	ctx := context.Background()
	rec, ok, err := m.Store.GetMeta(ctx, m.Addr, meta.NamespaceMotion)
	if err != nil {
		m.Log.Error("wake: reading motion metadata: %v", err)
		return
	}
	var mm meta.MotionMeta
	if ok {
		mm = meta.MotionMetaFromMap(rec)
	}

	now := m.now()
	lastVoltage := time.Unix(int64(mm.BatteryVoltageTime), 0)
	if mm.BatteryVoltageTime != 0 && now.Sub(lastVoltage) < BatteryCheckInterval {
		return
	}
	if !m.lastRequestTime.IsZero() && now.Sub(m.lastRequestTime) < BatteryRequestDedupe {
		return
	}
	m.lastRequestTime = now
	m.cmdGetBatteryVoltage(func(outcome.Result) {}, nil)
}

func floatArg(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be numeric, got %T", key, v)
	}
}

func intArg(args map[string]any, key string) (int, error) {
	f, err := floatArg(args, key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
