// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package thermostat

import (
	"github.com/rob-gra/insteon-bridge/outcome"
	"github.com/rob-gra/insteon-bridge/sequence"
)

// conditionGroups is the set of broadcast groups a paired thermostat
// must be a controller for, per §4.5's pairing sequence.
var conditionGroups = []byte{GroupCooling, GroupHeating, GroupHumidHigh, GroupHumidLow}

// BuildPairingSequence composes the pairing Command Sequence: refresh,
// add this device as a group-1 responder, add it as a controller for
// each condition group, then enable broadcast. The link-database
// read/write steps (refresh, add responder, add controller) are the
// Insteon all-link-database record layer, which is out of this core's
// scope (§1) — they are modeled here as placeholder steps a real
// implementation wires to that layer, so the sequence's shape and
// ordering match the source even though the database writes themselves
// live elsewhere. enable_broadcast is the one step this package can run
// for real.
func (t *Thermostat) BuildPairingSequence(done outcome.Callback) *sequence.Sequence {
	seq := sequence.New(t.Transport, "Thermostat Pairing Success", done)

	seq.Add(sequence.Func(func(stepDone outcome.Callback) {
		t.Log.Debug("pairing %s: refresh (link-database layer, not implemented here)", t.Addr)
		stepDone(outcome.Result{Success: true})
	}))
	seq.Add(sequence.Func(func(stepDone outcome.Callback) {
		t.Log.Debug("pairing %s: add responder group 1 (link-database layer, not implemented here)", t.Addr)
		stepDone(outcome.Result{Success: true})
	}))
	for _, group := range conditionGroups {
		group := group
		seq.Add(sequence.Func(func(stepDone outcome.Callback) {
			t.Log.Debug("pairing %s: add controller group %#x (link-database layer, not implemented here)", t.Addr, group)
			stepDone(outcome.Result{Success: true})
		}))
	}
	seq.Add(sequence.Func(func(stepDone outcome.Callback) {
		t.cmdEnableBroadcast(stepDone, nil)
	}))

	return seq
}
