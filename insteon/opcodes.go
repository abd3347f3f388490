// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package insteon

// Cmd1 values used across the device state machines. See §3/§6 of the
// specification for the wire table.
const (
	Cmd1ExtendedGetSet   byte = 0x2e // get/set extended data; cmd2 distinguishes get (0x00) vs status (0x02)
	Cmd1ThermostatMode   byte = 0x6b // mode/fan command, cmd2 selects which
	Cmd1ThermostatCoolSp byte = 0x6c // cool setpoint command, cmd2 = encoded temp
	Cmd1ThermostatHeatSp byte = 0x6d // heat setpoint command, cmd2 = encoded temp
)

// Cmd2 values for Cmd1ExtendedGetSet.
const (
	Cmd2ExtendedGet    byte = 0x00 // D1..D14 zero, request current state
	Cmd2ExtendedStatus byte = 0x02 // thermostat status request
)

// Sub-command byte values carried in D2 (Data[1]) of an extended get/set
// message, per §3's Extended Command Template.
const (
	SubCmdTimeout          byte = 0x03
	SubCmdLightSensitivity byte = 0x04
	SubCmdFlags            byte = 0x05
	SubCmdEnableBroadcast  byte = 0x08
)
