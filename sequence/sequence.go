// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package sequence implements the Command Sequence executor: an
// asynchronous, one-shot pipeline that runs a list of protocol operations
// strictly in order, each completing before the next begins, with
// short-circuit failure propagation to a single terminal callback. See
// specification §4.1.
package sequence

import (
	"context"

	"github.com/rob-gra/insteon-bridge/clog"
	"github.com/rob-gra/insteon-bridge/handler"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/outcome"
	"github.com/rob-gra/insteon-bridge/transport"
)

// Result and Callback are the completion-callback shapes defined in
// package outcome, re-exported here under the names the specification
// uses so callers needn't import outcome directly.
type (
	Result   = outcome.Result
	Callback = outcome.Callback
)

// Step is either a plain function step or a (frame, handler) pair. The
// unexported method keeps construction behind Func/Msg so a Sequence
// never has to guess at an unknown step shape.
type Step interface {
	step()
}

type funcStep struct {
	op func(done Callback)
}

func (funcStep) step() {}

// Func wraps a callable step: op must eventually invoke done exactly
// once, synchronously or after its own suspension point (e.g. a metadata
// write completes immediately; a composed sub-sequence completes later).
func Func(op func(done Callback)) Step {
	return funcStep{op: op}
}

type msgStep struct {
	addr  insteon.Address
	frame insteon.Frame
	h     handler.Handler
}

func (msgStep) step() {}

// Msg wraps a (frame, handler) step. The handler's stored completion
// callback is overridden with the sequence's own advance callback when
// the step runs — whatever completion the caller originally bound is
// discarded, per §4.1 point 2.
func Msg(addr insteon.Address, frame insteon.Frame, h handler.Handler) Step {
	return msgStep{addr: addr, frame: frame, h: h}
}

// Sequence runs its steps strictly in order on the calling goroutine's
// event loop, never itself blocking: each step suspends by returning
// control and later re-enters via its completion callback. See §5.
type Sequence struct {
	steps   []Step
	t       transport.Transport
	onDone  Callback
	message string
	done    bool
	log     clog.Clog
}

// New builds a Sequence that sends (frame, handler) steps over t and
// calls onDone exactly once when the whole sequence finishes. message is
// the Result.Message on overall success (e.g. "Motion Set Flags
// Success"), replacing whatever message the last step reported; Data is
// the last step's.
func New(t transport.Transport, message string, onDone Callback) *Sequence {
	return &Sequence{
		t:       t,
		message: message,
		onDone:  onDone,
		log:     clog.NewComponentLogger("sequence"),
	}
}

// Add appends a step and returns the Sequence for chaining.
func (s *Sequence) Add(step Step) *Sequence {
	s.steps = append(s.steps, step)
	return s
}

// Run starts execution and returns immediately; per algorithm step 1 it
// dispatches the first step with a synthetic success.
func (s *Sequence) Run() {
	s.advance(Result{Success: true})
}

// advance implements algorithm steps 2-4: short-circuit on failure,
// terminate on an empty step list, otherwise pop and start the next
// step with itself bound as its completion.
func (s *Sequence) advance(last Result) {
	if !last.Success {
		s.terminate(last)
		return
	}
	if len(s.steps) == 0 {
		s.terminate(Result{Success: true, Message: s.message, Data: last.Data})
		return
	}

	step := s.steps[0]
	s.steps = s.steps[1:]

	switch st := step.(type) {
	case funcStep:
		st.op(s.advance)
	case msgStep:
		st.h.Rebind(s.advance)
		if err := s.t.Send(context.Background(), st.addr, st.frame, st.h); err != nil {
			s.log.Error("send to %s failed: %v", st.addr, err)
			s.advance(Result{Success: false, Message: err.Error()})
		}
	default:
		panic("sequence: unknown step type")
	}
}

// terminate invokes the terminal callback exactly once. A second call is
// a bug in this package, not a recoverable runtime condition, so it
// panics rather than silently invoking onDone twice or dropping a result.
func (s *Sequence) terminate(r Result) {
	if s.done {
		panic("sequence: terminal callback invoked more than once")
	}
	s.done = true
	cb := s.onDone
	s.onDone = nil
	if cb != nil {
		cb(r)
	}
}
