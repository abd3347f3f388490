// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package memory is an in-process fake transport.Transport used by the
// rest of this module's tests, standing in for a live PLM link the way
// the teacher's tests never need a live IEC 60870-5-104 master because
// Connect is an interface there too.
package memory

import (
	"context"

	"github.com/rob-gra/insteon-bridge/handler"
	"github.com/rob-gra/insteon-bridge/insteon"
)

// Sent records one frame handed to Send, for test assertions.
type Sent struct {
	Addr  insteon.Address
	Frame insteon.Frame
}

// Transport is a FIFO-per-device fake: every Send is recorded in order,
// and tests inject replies with Deliver to drive the registered handler
// the way a real PLM would after dispatching the frame.
type Transport struct {
	reg  *handler.Registry
	Sent []Sent
}

// New builds an empty fake transport.
func New() *Transport {
	return &Transport{reg: handler.NewRegistry()}
}

func (t *Transport) Send(_ context.Context, addr insteon.Address, frame insteon.Frame, h handler.Handler) error {
	t.Sent = append(t.Sent, Sent{Addr: addr, Frame: frame})
	t.reg.Register(addr, h)
	return nil
}

func (t *Transport) AddHandler(addr insteon.Address, h handler.Handler) {
	t.reg.AddGlobal(addr, h)
}

// Deliver feeds an inbound frame to the registry as if it arrived over
// the wire from addr.
func (t *Transport) Deliver(addr insteon.Address, frame insteon.Frame) {
	t.reg.Dispatch(addr, frame)
}

// Timeout simulates the transport's ack timer expiring for addr,
// resending the retried frame itself (recording it in Sent) when the
// handler's retry budget allows it.
func (t *Transport) Timeout(addr insteon.Address) {
	frame, retry := t.reg.Timeout(addr)
	if retry {
		t.Sent = append(t.Sent, Sent{Addr: addr, Frame: frame})
	}
}

// Last returns the most recently sent frame, or the zero value and false
// if nothing has been sent yet.
func (t *Transport) Last() (Sent, bool) {
	if len(t.Sent) == 0 {
		return Sent{}, false
	}
	return t.Sent[len(t.Sent)-1], true
}
