// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package thermostat implements the thermostat state machine: status
// decoding with unit conversion, mode/fan/setpoint commands, and
// broadcast interpretation of the cooling/heating condition groups. See
// specification §4.5.
package thermostat

import (
	"context"
	"fmt"
	"math"

	"github.com/rob-gra/insteon-bridge/device"
	"github.com/rob-gra/insteon-bridge/handler"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/outcome"
	"github.com/rob-gra/insteon-bridge/signal"
)

// numRetry is the handler retry budget thermostat commands use, per
// §4.3's "thermostat uses 3".
const numRetry = 3

// Thermostat wraps a base device.Device with the thermostat command
// set.
type Thermostat struct {
	*device.Device
}

// New builds a Thermostat state machine over base.
func New(base *device.Device) *Thermostat {
	t := &Thermostat{Device: base}

	t.CmdMap["get_status"] = t.cmdGetStatus
	t.CmdMap["mode_command"] = t.cmdModeCommand
	t.CmdMap["fan_command"] = t.cmdFanCommand
	t.CmdMap["heat_sp_command"] = t.cmdHeatSpCommand
	t.CmdMap["cool_sp_command"] = t.cmdCoolSpCommand
	t.CmdMap["enable_broadcast"] = t.cmdEnableBroadcast
	t.CmdMap["get_humidity_setpoints"] = t.cmdGetHumiditySetpoints

	t.Groups[GroupCooling] = handleConditionGroup("cooling")
	t.Groups[GroupHeating] = handleConditionGroup("heating")

	return t
}

func handleConditionGroup(condition string) device.BroadcastHandler {
	return func(d *device.Device, cmd1 byte) {
		switch cmd1 {
		case 0x11:
			d.Bus.Publish(signal.Event{Addr: d.Addr, Kind: signal.StatusChange, Payload: condition})
		case 0x13:
			d.Bus.Publish(signal.Event{Addr: d.Addr, Kind: signal.StatusChange, Payload: "OFF"})
		}
	}
}

func (t *Thermostat) cmdGetStatus(done outcome.Callback, _ map[string]any) {
	frame, err := insteon.NewExtendedSet(t.Addr, t.PLM, insteon.Cmd1ExtendedGetSet, insteon.Cmd2ExtendedStatus)
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	frame = frame.WithCRC()
	h := handler.NewExtendedCmdResponse(frame, t.processStatusReply, done, numRetry)
	if err := t.Transport.Send(context.Background(), t.Addr, frame, h); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
	}
}

// cmdModeCommand expects args["mode"] already decoded to a Mode — the
// MQTT command bridge translates the wire topic payload before calling
// in, same as the other typed command arguments.
func (t *Thermostat) cmdModeCommand(done outcome.Callback, args map[string]any) {
	mode, ok := args["mode"].(Mode)
	if !ok {
		done(outcome.Result{Success: false, Message: "mode_command requires a mode argument"})
		return
	}
	code, ok := modeCommands[mode]
	if !ok {
		done(outcome.Result{Success: false, Message: fmt.Sprintf("unknown thermostat mode %v", mode)})
		return
	}
	msg := insteon.Standard{To: t.Addr, From: t.PLM, Flags: insteon.NewFlags(insteon.MsgDirect, false), Cmd1: insteon.Cmd1ThermostatMode, Cmd2: code}
	h := handler.NewStandardCmd(msg, func(_ insteon.Standard, done2 outcome.Callback) {
		t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.Mode, Payload: mode})
		done2(outcome.Result{Success: true, Message: "Thermostat Mode Command Success"})
	}, done, numRetry)
	if err := t.Transport.Send(context.Background(), t.Addr, msg, h); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
	}
}

func (t *Thermostat) cmdFanCommand(done outcome.Callback, args map[string]any) {
	fan, ok := args["fan"].(Fan)
	if !ok {
		done(outcome.Result{Success: false, Message: "fan_command requires a fan argument"})
		return
	}
	code, ok := fanCommands[fan]
	if !ok {
		done(outcome.Result{Success: false, Message: fmt.Sprintf("unknown thermostat fan mode %v", fan)})
		return
	}
	msg := insteon.Standard{To: t.Addr, From: t.PLM, Flags: insteon.NewFlags(insteon.MsgDirect, false), Cmd1: insteon.Cmd1ThermostatMode, Cmd2: code}
	h := handler.NewStandardCmd(msg, func(_ insteon.Standard, done2 outcome.Callback) {
		t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: signal.Fan, Payload: fan})
		done2(outcome.Result{Success: true, Message: "Thermostat Fan Command Success"})
	}, done, numRetry)
	if err := t.Transport.Send(context.Background(), t.Addr, msg, h); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
	}
}

func (t *Thermostat) cmdHeatSpCommand(done outcome.Callback, args map[string]any) {
	t.sendSetpoint(insteon.Cmd1ThermostatHeatSp, signal.HeatSetpoint, "Thermostat Heat Setpoint Success", done, args)
}

func (t *Thermostat) cmdCoolSpCommand(done outcome.Callback, args map[string]any) {
	t.sendSetpoint(insteon.Cmd1ThermostatCoolSp, signal.CoolSetpoint, "Thermostat Cool Setpoint Success", done, args)
}

// sendSetpoint implements the shared heat/cool setpoint command: convert
// to device units, clamp to [0,127], encode as round(temp*2), and on
// ACK decode the echoed cmd2 back to Celsius before signalling, per
// §4.5.
func (t *Thermostat) sendSetpoint(cmd1 byte, kind signal.Kind, successMessage string, done outcome.Callback, args map[string]any) {
	tempC, err := floatArg(args, "temp_c")
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	ctx := context.Background()
	units, err := t.currentUnits(ctx)
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	deviceVal := device.ClampFloat(toDeviceUnits(tempC, units), 0, 127)
	encoded := byte(math.Round(deviceVal * 2))

	msg := insteon.Standard{To: t.Addr, From: t.PLM, Flags: insteon.NewFlags(insteon.MsgDirect, false), Cmd1: cmd1, Cmd2: encoded}
	h := handler.NewStandardCmd(msg, func(ack insteon.Standard, done2 outcome.Callback) {
		decoded := fromDeviceUnits(float64(ack.Cmd2)/2, units)
		t.Bus.Publish(signal.Event{Addr: t.Addr, Kind: kind, Payload: decoded})
		done2(outcome.Result{Success: true, Message: successMessage, Data: decoded})
	}, done, numRetry)
	if err := t.Transport.Send(ctx, t.Addr, msg, h); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
	}
}

func (t *Thermostat) cmdEnableBroadcast(done outcome.Callback, _ map[string]any) {
	frame, err := insteon.NewExtendedSet(t.Addr, t.PLM, insteon.Cmd1ExtendedGetSet, insteon.Cmd2ExtendedGet, 0x00, insteon.SubCmdEnableBroadcast, 0x01)
	if err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
		return
	}
	ackMsg := insteon.Standard{To: t.Addr, From: t.PLM, Flags: frame.Flags, Cmd1: frame.Cmd1, Cmd2: frame.Cmd2}
	h := handler.NewStandardCmd(ackMsg, func(_ insteon.Standard, done2 outcome.Callback) {
		done2(outcome.Result{Success: true, Message: "Thermostat Enable Broadcast Success"})
	}, done, numRetry)
	if err := t.Transport.Send(context.Background(), t.Addr, frame, h); err != nil {
		done(outcome.Result{Success: false, Message: err.Error()})
	}
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
