// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package transport declares the interface the command-sequencing core
// consumes to talk to a device. Raw serial/PLM framing is out of scope
// for this core (§1); this package owns only the seam, plus an
// in-process fake (transport/memory) the rest of the module tests
// against and a thin reference serial adapter (transport/plm).
package transport

import (
	"context"

	"github.com/rob-gra/insteon-bridge/handler"
	"github.com/rob-gra/insteon-bridge/insteon"
)

// Transport sends outbound frames and routes inbound replies to the
// handler registered for each send, per §6.
type Transport interface {
	// Send hands frame for addr to the link and makes h the active
	// handler for reply traffic from addr. Send returns once the frame is
	// handed off, not once it is acknowledged — completion is reported
	// asynchronously through h. The implementations in this module
	// (transport/plm, transport/memory) keep no per-device send queue: the
	// frame is written or recorded at once, and a Send to an address that
	// still has an active handler replaces that handler.
	Send(ctx context.Context, addr insteon.Address, frame insteon.Frame, h handler.Handler) error
	// AddHandler registers a device-scoped handler for frames from addr
	// that no active per-request handler claims (see
	// handler.Registry.AddGlobal), used for unsolicited broadcasts (§6).
	AddHandler(addr insteon.Address, h handler.Handler)
}
