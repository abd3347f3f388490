// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package handler implements the per-in-flight-request handler objects
// that consume reply frames and invoke completion, and the registry that
// routes inbound frames to them. See specification §4.3.
package handler

import (
	"fmt"

	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/outcome"
)

// Outcome is returned by Handler.OnReply/OnTimeout to tell the Registry
// what to do with the handler next.
type Outcome int

const (
	// Continue means more replies are expected; keep the handler active.
	Continue Outcome = iota
	// DoneOK means the expected reply arrived and was handed to the
	// handler's ack/parse callback, which reports the final result
	// (success or failure) through the stored callback; unregister it.
	DoneOK
	// DoneErr means the handler's stored callback has already fired with
	// failure; unregister it.
	DoneErr
	// Unrelated means the frame was not meant for this handler; the
	// Registry should offer it to any global handlers instead.
	Unrelated
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case DoneOK:
		return "done_ok"
	case DoneErr:
		return "done_err"
	case Unrelated:
		return "unrelated"
	default:
		return fmt.Sprintf("handler.Outcome(%d)", int(o))
	}
}

// Handler is the contract every per-request handler kind implements.
type Handler interface {
	// OnReply decides whether frame concludes the request.
	OnReply(frame insteon.Frame) Outcome
	// OnTimeout is invoked when the transport's ack timer expires with no
	// reply. It consumes one unit of retry budget internally; Continue
	// means the caller should resend Message(), DoneErr means the budget
	// is exhausted and the stored callback has already fired.
	OnTimeout() Outcome
	// Message is the frame this handler is waiting on a reply to.
	Message() insteon.Frame
	// Rebind replaces the stored completion callback. Command Sequence
	// steps use this to install their own advance-step callback, per
	// §4.1 point 2 — the caller's original completion is discarded.
	Rebind(done outcome.Callback)
}

// nakReasons maps the short reason code a device echoes in cmd2 of a NAK
// to a human-readable string. Unlisted codes fall back to a generic
// "nak 0xNN" message rather than failing to decode.
var nakReasons = map[byte]string{
	0xFB: "illegal value",
	0xFC: "pre-nak, database search or checksum error",
	0xFD: "no load detected",
	0xFE: "not in linking mode",
	0xFF: "generic nak",
}

func decodeNakReason(cmd2 byte) string {
	if r, ok := nakReasons[cmd2]; ok {
		return r
	}
	return fmt.Sprintf("nak 0x%02x", cmd2)
}
