// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package handler

import (
	"github.com/rob-gra/insteon-bridge/clog"
	"github.com/rob-gra/insteon-bridge/insteon"
)

// Registry routes inbound frames to the active per-request handler for
// their source device, falling back to any device-scoped global handlers
// (e.g. the thermostat's broadcast interceptor). At most one request
// handler is active per address at a time, per §3's invariant.
type Registry struct {
	active map[insteon.Address]Handler
	global map[insteon.Address][]Handler
	log    clog.Clog
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[insteon.Address]Handler),
		global: make(map[insteon.Address][]Handler),
		log:    clog.NewComponentLogger("handler.registry"),
	}
}

// Register installs h as the active handler for addr, replacing whatever
// was there before. Nothing here or in this module's transports queues a
// second request behind an outstanding one: callers are expected to
// respect the one-outstanding-request-per-device invariant themselves.
func (r *Registry) Register(addr insteon.Address, h Handler) {
	r.active[addr] = h
}

// AddGlobal installs a long-lived handler for frames from addr. It sees
// a frame only when no per-request handler is active for addr or the
// active one reports it Unrelated; frames the active handler claims are
// not offered to it.
func (r *Registry) AddGlobal(addr insteon.Address, h Handler) {
	r.global[addr] = append(r.global[addr], h)
}

// Active reports the currently registered per-request handler for addr,
// if any.
func (r *Registry) Active(addr insteon.Address) (Handler, bool) {
	h, ok := r.active[addr]
	return h, ok
}

// Dispatch routes an inbound frame from addr to the active handler first;
// if there is none, or it reports Unrelated, the frame is offered to
// every global handler for addr.
func (r *Registry) Dispatch(addr insteon.Address, frame insteon.Frame) {
	if h, ok := r.active[addr]; ok {
		switch h.OnReply(frame) {
		case DoneOK, DoneErr:
			// The completion callback may already have registered the
			// next request's handler (a sequence advancing to its next
			// step); only unregister h itself.
			if cur, ok := r.active[addr]; ok && cur == h {
				delete(r.active, addr)
			}
			return
		case Continue:
			return
		case Unrelated:
			// fall through to global handlers
		}
	}
	for _, h := range r.global[addr] {
		if outcome := h.OnReply(frame); outcome != Unrelated && outcome != Continue {
			r.log.Debug("global handler for %s returned %s", addr, outcome)
		}
	}
}

// Timeout is invoked by a transport when its ack timer expires with no
// reply for addr. It returns the frame to resend and true if the
// handler's retry budget allowed it, or false once exhausted (in which
// case the handler has already invoked its completion callback and been
// unregistered).
func (r *Registry) Timeout(addr insteon.Address) (insteon.Frame, bool) {
	h, ok := r.active[addr]
	if !ok {
		return nil, false
	}
	switch h.OnTimeout() {
	case Continue:
		return h.Message(), true
	default:
		delete(r.active, addr)
		return nil, false
	}
}
