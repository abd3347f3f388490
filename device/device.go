// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package device holds the shared Device type the per-device-type state
// machines (device/motion, device/thermostat) are built on: address,
// metadata handle, signal endpoint, command-name-to-operation maps, and
// group-to-broadcast-handler routing. See §3/§6.
package device

import (
	"fmt"

	"github.com/rob-gra/insteon-bridge/clog"
	"github.com/rob-gra/insteon-bridge/handler"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/meta"
	"github.com/rob-gra/insteon-bridge/outcome"
	"github.com/rob-gra/insteon-bridge/signal"
	"github.com/rob-gra/insteon-bridge/transport"
)

// Command is one entry in a Device's CmdMap/SetFlagsMap: it runs
// asynchronously and must invoke done exactly once, directly or by
// driving a sequence.Sequence.
type Command func(done outcome.Callback, args map[string]any)

// BroadcastHandler processes an inbound all-link broadcast cmd1 for one
// group number.
type BroadcastHandler func(d *Device, cmd1 byte)

// Device is the base every state machine embeds. It does not own the
// transport; it borrows it, per §3.
type Device struct {
	Addr      insteon.Address
	PLM       insteon.Address // the modem's own address, used as From on sends
	Name      string
	Store     meta.Store
	Bus       *signal.Bus
	Transport transport.Transport
	Log       clog.Clog

	CmdMap      map[string]Command
	SetFlagsMap map[string]Command
	Groups      map[byte]BroadcastHandler

	// OnWake, if set by a state machine constructor, is the policy
	// Awake runs on each wake tick (e.g. motion's auto-battery-check,
	// §4.4).
	OnWake func()
}

// New builds a Device with empty command/group maps ready for a state
// machine constructor to populate.
func New(addr, plm insteon.Address, name string, store meta.Store, bus *signal.Bus, t transport.Transport) *Device {
	return &Device{
		Addr:        addr,
		PLM:         plm,
		Name:        name,
		Store:       store,
		Bus:         bus,
		Transport:   t,
		Log:         clog.NewComponentLogger(name),
		CmdMap:      make(map[string]Command),
		SetFlagsMap: make(map[string]Command),
		Groups:      make(map[byte]BroadcastHandler),
	}
}

// Do looks up name in CmdMap and runs it, or completes done with a
// local-validation failure if the command is unknown — this is the
// dispatch point the (out-of-scope) MQTT command bridge consumes.
func (d *Device) Do(name string, done outcome.Callback, args map[string]any) {
	cmd, ok := d.CmdMap[name]
	if !ok {
		done(outcome.Result{Success: false, Message: fmt.Sprintf("unknown command %q for %s", name, d.Name)})
		return
	}
	cmd(done, args)
}

// DoSetFlag is Do's SetFlagsMap counterpart.
func (d *Device) DoSetFlag(name string, done outcome.Callback, args map[string]any) {
	cmd, ok := d.SetFlagsMap[name]
	if !ok {
		done(outcome.Result{Success: false, Message: fmt.Sprintf("unknown set-flag %q for %s", name, d.Name)})
		return
	}
	cmd(done, args)
}

// HandleBroadcast routes an inbound all-link broadcast to the handler
// registered for group, or logs and does nothing for an unrecognized
// group — unknown groups are tolerated per §7, since firmware revisions
// may add groups this code doesn't know about yet.
func (d *Device) HandleBroadcast(cmd1 byte, group byte) {
	h, ok := d.Groups[group]
	if !ok {
		d.Log.Debug("unhandled broadcast group %d cmd1=%#x from %s", group, cmd1, d.Addr)
		return
	}
	h(d, cmd1)
}

// Awake runs whatever wake-time policy the state machine installed in
// OnWake (e.g. motion's stale-battery-reading check). A no-op if the
// state machine didn't set one. cmd/insteond calls this on a timer for
// every managed device, since this transport sends synchronously and
// has no outbound queue to hang a dequeue hook off of instead.
func (d *Device) Awake() {
	if d.OnWake != nil {
		d.OnWake()
	}
}

// broadcastHandler adapts HandleBroadcast to the handler.Handler
// contract so one AddHandler call lets a transport route every
// unsolicited all-link broadcast or cleanup frame from a device to it.
type broadcastHandler struct {
	d *Device
}

// Handler returns the long-lived handler.Handler that feeds d's inbound
// broadcasts to HandleBroadcast. Callers register it once per device via
// transport.Transport.AddHandler.
func (d *Device) Handler() handler.Handler {
	return broadcastHandler{d: d}
}

func (b broadcastHandler) Message() insteon.Frame { return nil }

func (b broadcastHandler) Rebind(outcome.Callback) {}

func (b broadcastHandler) OnTimeout() handler.Outcome { return handler.Continue }

func (b broadcastHandler) OnReply(frame insteon.Frame) handler.Outcome {
	std, ok := frame.(insteon.Standard)
	if !ok {
		return handler.Unrelated
	}
	if std.From != b.d.Addr || !(std.Flags.IsBroadcast() || std.Flags.IsAllLink()) {
		return handler.Unrelated
	}
	b.d.HandleBroadcast(std.Cmd1, std.Group())
	return handler.Continue
}
