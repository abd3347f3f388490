// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sequence

import (
	"testing"

	"github.com/rob-gra/insteon-bridge/handler"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/outcome"
	"github.com/rob-gra/insteon-bridge/transport/memory"
)

var devA = insteon.Address{0x11, 0x22, 0x33}

// TestShortCircuitOnFailure is seed test scenario 2 from §8: three
// steps, the second fails, the third must never run, and the terminal
// callback fires exactly once with the failing step's result.
func TestShortCircuitOnFailure(t *testing.T) {
	tr := memory.New()
	var terminal Result
	terminalCalls := 0
	seq := New(tr, "all good", func(r Result) {
		terminal = r
		terminalCalls++
	})

	step1Ran := false
	step3Ran := false

	seq.Add(Func(func(done Callback) {
		step1Ran = true
		done(Result{Success: true})
	}))
	seq.Add(Func(func(done Callback) {
		done(Result{Success: false, Message: "oops"})
	}))
	seq.Add(Func(func(done Callback) {
		step3Ran = true
		done(Result{Success: true})
	}))

	seq.Run()

	if !step1Ran {
		t.Fatal("expected step 1 to run")
	}
	if step3Ran {
		t.Fatal("step 3 must not run after step 2 fails")
	}
	if terminalCalls != 1 {
		t.Fatalf("expected terminal callback exactly once, got %d", terminalCalls)
	}
	if terminal.Success || terminal.Message != "oops" {
		t.Fatalf("unexpected terminal result: %+v", terminal)
	}
}

// TestAllSuccessInvokesConstructorMessage verifies the terminal success
// flag equals the AND of every executed step (all true here) and that
// the constructor's message is used on overall success (§4.1 point 2).
func TestAllSuccessInvokesConstructorMessage(t *testing.T) {
	tr := memory.New()
	var terminal Result
	seq := New(tr, "finished", func(r Result) { terminal = r })

	for i := 0; i < 3; i++ {
		seq.Add(Func(func(done Callback) { done(Result{Success: true}) }))
	}
	seq.Run()

	if !terminal.Success || terminal.Message != "finished" {
		t.Fatalf("unexpected terminal result: %+v", terminal)
	}
}

// TestTerminalCallbackFiresExactlyOnceAcrossAllFailurePoints is the
// first invariant in §8: for every step index that can fail, the
// terminal callback fires exactly once regardless of which step failed.
func TestTerminalCallbackFiresExactlyOnceAcrossAllFailurePoints(t *testing.T) {
	for failAt := 0; failAt < 3; failAt++ {
		failAt := failAt
		t.Run("", func(t *testing.T) {
			tr := memory.New()
			calls := 0
			seq := New(tr, "ok", func(Result) { calls++ })
			for i := 0; i < 3; i++ {
				i := i
				seq.Add(Func(func(done Callback) {
					done(Result{Success: i != failAt})
				}))
			}
			seq.Run()
			if calls != 1 {
				t.Fatalf("failAt=%d: expected terminal callback exactly once, got %d", failAt, calls)
			}
		})
	}
}

func TestDoubleTerminatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double terminate")
		}
	}()
	tr := memory.New()
	seq := New(tr, "ok", func(Result) {})
	seq.Run() // empty sequence terminates immediately
	seq.terminate(Result{Success: true})
}

// TestMsgStepRebindsHandlerCompletion exercises the (frame, handler)
// step variant end to end against the in-memory transport fake.
func TestMsgStepRebindsHandlerCompletion(t *testing.T) {
	tr := memory.New()
	var terminal Result
	seq := New(tr, "Motion Get Battery Voltage Success", func(r Result) { terminal = r })

	msg, _ := insteon.NewExtendedSet(devA, insteon.Address{0x00, 0x00, 0x01}, insteon.Cmd1ExtendedGetSet, insteon.Cmd2ExtendedGet)
	called := false
	h := handler.NewExtendedCmdResponse(msg, func(reply insteon.Extended, done outcome.Callback) {
		called = true
		done(outcome.Result{Success: true, Data: reply.Data[11]})
	}, func(outcome.Result) {}, 0)

	seq.Add(Msg(devA, msg, h))
	seq.Run()

	sent, ok := tr.Last()
	if !ok || sent.Addr != devA {
		t.Fatal("expected the extended message to be sent to devA")
	}

	ack := insteon.Standard{To: insteon.Address{0x00, 0x00, 0x01}, From: devA, Flags: insteon.NewFlags(insteon.MsgDirectAck, false), Cmd1: insteon.Cmd1ExtendedGetSet}
	tr.Deliver(devA, ack)

	reply := insteon.Extended{Standard: insteon.Standard{To: insteon.Address{0x00, 0x00, 0x01}, From: devA, Cmd1: insteon.Cmd1ExtendedGetSet}}
	reply.Data[11] = 133
	tr.Deliver(devA, reply)

	if !called {
		t.Fatal("expected the parse callback to run")
	}
	if !terminal.Success || terminal.Data != byte(133) {
		t.Fatalf("unexpected terminal result: %+v", terminal)
	}
}
