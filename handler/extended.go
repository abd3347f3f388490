// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package handler

import (
	"github.com/rob-gra/insteon-bridge/clog"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/outcome"
)

// ParseFunc decodes an extended reply and is responsible for eventually
// invoking done.
type ParseFunc func(reply insteon.Extended, done outcome.Callback)

// ExtendedCmdResponse waits for the send-ACK on an outbound extended
// message, then for a subsequent extended direct message from the same
// address, which it hands to parseCB. See §4.3.
type ExtendedCmdResponse struct {
	msg         insteon.Extended
	parseCB     ParseFunc
	done        outcome.Callback
	retriesLeft int
	gotAck      bool
	log         clog.Clog
}

// NewExtendedCmdResponse builds an ExtendedCmdResponse handler.
func NewExtendedCmdResponse(msg insteon.Extended, parseCB ParseFunc, done outcome.Callback, numRetry int) *ExtendedCmdResponse {
	return &ExtendedCmdResponse{
		msg:         msg,
		parseCB:     parseCB,
		done:        done,
		retriesLeft: numRetry,
		log:         clog.NewComponentLogger("handler.extended"),
	}
}

func (h *ExtendedCmdResponse) Message() insteon.Frame { return h.msg }

func (h *ExtendedCmdResponse) Rebind(done outcome.Callback) { h.done = done }

func (h *ExtendedCmdResponse) OnReply(frame insteon.Frame) Outcome {
	switch f := frame.(type) {
	case insteon.Standard:
		if f.From != h.msg.To || f.Cmd1 != h.msg.Cmd1 {
			return Unrelated
		}
		if f.Flags.IsAck() {
			h.gotAck = true
			return Continue
		}
		if f.Flags.IsNak() {
			h.done(outcome.Result{Success: false, Message: decodeNakReason(f.Cmd2)})
			return DoneErr
		}
		return Unrelated
	case insteon.Extended:
		if !h.gotAck || f.From != h.msg.To {
			return Unrelated
		}
		h.parseCB(f, h.done)
		return DoneOK
	default:
		return Unrelated
	}
}

func (h *ExtendedCmdResponse) OnTimeout() Outcome {
	if h.retriesLeft > 0 {
		h.retriesLeft--
		h.log.Warn("timeout waiting for extended reply from %s, %d retries left", h.msg.To, h.retriesLeft)
		h.gotAck = false
		return Continue
	}
	h.done(outcome.Result{Success: false, Message: "timeout waiting for extended reply"})
	return DoneErr
}
