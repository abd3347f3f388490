// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package handler

import (
	"github.com/rob-gra/insteon-bridge/clog"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/outcome"
)

// AckFunc processes the ACK frame for a StandardCmd and is responsible
// for eventually invoking done.
type AckFunc func(ack insteon.Standard, done outcome.Callback)

// StandardCmd waits for a standard-size direct ACK/NAK echoing the sent
// cmd1. On ACK it invokes ackCB(frame, done); on NAK it invokes
// done(false, nakReason, nil). See §4.3.
type StandardCmd struct {
	msg         insteon.Standard
	ackCB       AckFunc
	done        outcome.Callback
	retriesLeft int
	log         clog.Clog
}

// NewStandardCmd builds a StandardCmd handler for an outbound standard
// message. numRetry is the retry budget applied on send timeout
// (default 0 in the caller unless the device kind overrides it, e.g.
// the thermostat's 3).
func NewStandardCmd(msg insteon.Standard, ackCB AckFunc, done outcome.Callback, numRetry int) *StandardCmd {
	return &StandardCmd{
		msg:         msg,
		ackCB:       ackCB,
		done:        done,
		retriesLeft: numRetry,
		log:         clog.NewComponentLogger("handler.standard"),
	}
}

func (h *StandardCmd) Message() insteon.Frame { return h.msg }

func (h *StandardCmd) Rebind(done outcome.Callback) { h.done = done }

func (h *StandardCmd) OnReply(frame insteon.Frame) Outcome {
	std, ok := frame.(insteon.Standard)
	if !ok {
		return Unrelated
	}
	if std.From != h.msg.To {
		return Unrelated
	}
	if std.Flags.IsAck() {
		if std.Cmd1 != h.msg.Cmd1 {
			h.log.Error("wrong direct ack cmd1 %#x, expected %#x", std.Cmd1, h.msg.Cmd1)
			h.done(outcome.Result{Success: false, Message: "Wrong direct ack received"})
			return DoneErr
		}
		h.ackCB(std, h.done)
		return DoneOK
	}
	if std.Flags.IsNak() {
		h.done(outcome.Result{Success: false, Message: decodeNakReason(std.Cmd2)})
		return DoneErr
	}
	return Unrelated
}

func (h *StandardCmd) OnTimeout() Outcome {
	if h.retriesLeft > 0 {
		h.retriesLeft--
		h.log.Warn("timeout waiting for ack on %s, %d retries left", h.msg.To, h.retriesLeft)
		return Continue
	}
	h.done(outcome.Result{Success: false, Message: "timeout waiting for ack"})
	return DoneErr
}
