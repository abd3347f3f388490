// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package signal is the in-process publish/subscribe bus device state
// machines use to emit events, keyed by (device address, event kind)
// rather than per-instance signal objects, per §9's Design Notes.
package signal

import (
	"github.com/rob-gra/insteon-bridge/insteon"
)

// Kind is a closed enum of event kinds across both device families the
// core implements. Unknown kinds are a programming error, not a runtime
// condition, so there is no "other" bucket.
type Kind int

const (
	// Motion device signals.
	LowBattery Kind = iota
	Dawn
	MotionState
	Heartbeat

	// Thermostat device signals.
	AmbientTemp
	AmbientHumidity
	Mode
	Fan
	CoolSetpoint
	HeatSetpoint
	StatusChange
	Hold
	Energy
)

// AllKinds lists every Kind, for callers (e.g. a generic logger) that
// want to subscribe to a device's full signal set without enumerating
// it by hand.
var AllKinds = []Kind{
	LowBattery, Dawn, MotionState, Heartbeat,
	AmbientTemp, AmbientHumidity, Mode, Fan, CoolSetpoint, HeatSetpoint,
	StatusChange, Hold, Energy,
}

func (k Kind) String() string {
	switch k {
	case LowBattery:
		return "low_battery"
	case Dawn:
		return "dawn"
	case MotionState:
		return "motion_state"
	case Heartbeat:
		return "heartbeat"
	case AmbientTemp:
		return "ambient_temp"
	case AmbientHumidity:
		return "ambient_humidity"
	case Mode:
		return "mode"
	case Fan:
		return "fan"
	case CoolSetpoint:
		return "cool_setpoint"
	case HeatSetpoint:
		return "heat_setpoint"
	case StatusChange:
		return "status_change"
	case Hold:
		return "hold"
	case Energy:
		return "energy"
	default:
		return "unknown"
	}
}

// Event is one published occurrence.
type Event struct {
	Addr    insteon.Address
	Kind    Kind
	Payload any
}

type subscription struct {
	id   uint64
	kind Kind
	fn   func(Event)
}

// Bus delivers events synchronously, in subscription order, to every
// subscriber registered for (addr, kind) before Publish returns — §5's
// ordering guarantee that signals are delivered before the emitting
// handler returns.
type Bus struct {
	subs   map[insteon.Address][]subscription
	nextID uint64
}

// New builds an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[insteon.Address][]subscription)}
}

// Subscribe registers fn for events of kind from addr and returns a
// function that removes the subscription.
func (b *Bus) Subscribe(addr insteon.Address, kind Kind, fn func(Event)) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.subs[addr] = append(b.subs[addr], subscription{id: id, kind: kind, fn: fn})
	return func() {
		subs := b.subs[addr]
		for i, sub := range subs {
			if sub.id == id {
				b.subs[addr] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every matching subscriber, synchronously.
func (b *Bus) Publish(ev Event) {
	for _, sub := range b.subs[ev.Addr] {
		if sub.kind == ev.Kind {
			sub.fn(ev)
		}
	}
}
