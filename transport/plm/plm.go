// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package plm is a reference transport.Transport backed by a live serial
// connection to an Insteon PowerLinc Modem. It is deliberately thin:
// frame the outbound bytes, read the inbound ones, and route through
// handler.Registry — the byte-level link itself is out of this core's
// scope (§1), the same way the teacher's ASDU/APCI layers never concern
// themselves with how their TCP connection was dialed.
package plm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/rob-gra/insteon-bridge/clog"
	"github.com/rob-gra/insteon-bridge/handler"
	"github.com/rob-gra/insteon-bridge/insteon"
)

// stx precedes every command the modem echoes or pushes unsolicited, per
// the Insteon Developer's Guide serial protocol.
const stx = 0x02

// PLM command codes this transport understands. 0x62 sends a standard or
// extended message; 0x50/0x51 are the modem pushing a received one.
const (
	cmdSend             = 0x62
	cmdStandardReceived = 0x50
	cmdExtendedReceived = 0x51
)

// Transport drives a serial.Port the way transport/memory drives an
// in-process fake, implementing the same transport.Transport contract.
type Transport struct {
	port io.ReadWriteCloser
	reg  *handler.Registry
	log  clog.Clog
	cfg  Config

	mu     sync.Mutex
	timers map[insteon.Address]*time.Timer
}

// Open opens portName at the PLM's fixed 19200-baud 8N1 configuration
// with DefaultConfig timing, and starts the background read loop that
// feeds inbound frames to the registry.
func Open(portName string) (*Transport, error) {
	return OpenWithConfig(portName, DefaultConfig())
}

// OpenWithConfig is Open with caller-supplied timing parameters.
func OpenWithConfig(portName string, cfg Config) (*Transport, error) {
	if err := cfg.Valid(); err != nil {
		return nil, fmt.Errorf("plm: %w", err)
	}
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: 19200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("plm: opening %s: %w", portName, err)
	}
	t := &Transport{
		port:   port,
		reg:    handler.NewRegistry(),
		log:    clog.NewComponentLogger("transport.plm"),
		cfg:    cfg,
		timers: make(map[insteon.Address]*time.Timer),
	}
	go t.readLoop()
	return t, nil
}

// Send writes frame to the modem and arms the ack timer for addr.
func (t *Transport) Send(_ context.Context, addr insteon.Address, frame insteon.Frame, h handler.Handler) error {
	t.reg.Register(addr, h)
	if err := t.write(frame); err != nil {
		return err
	}
	t.armTimer(addr)
	return nil
}

// AddHandler installs a long-lived global handler, per transport.Transport.
func (t *Transport) AddHandler(addr insteon.Address, h handler.Handler) {
	t.reg.AddGlobal(addr, h)
}

// Close stops the read loop by closing the underlying port.
func (t *Transport) Close() error {
	return t.port.Close()
}

func (t *Transport) write(frame insteon.Frame) error {
	var payload []byte
	switch f := frame.(type) {
	case insteon.Standard:
		payload = f.Bytes()
	case insteon.Extended:
		payload = f.Bytes()
	default:
		return fmt.Errorf("plm: unsupported frame type %T", frame)
	}
	buf := append([]byte{stx, cmdSend}, payload...)
	_, err := t.port.Write(buf)
	return err
}

func (t *Transport) armTimer(addr insteon.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.timers[addr]; ok {
		existing.Stop()
	}
	t.timers[addr] = time.AfterFunc(t.cfg.AckTimeout, func() { t.onTimeout(addr) })
}

func (t *Transport) disarmTimer(addr insteon.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.timers[addr]; ok {
		existing.Stop()
		delete(t.timers, addr)
	}
}

func (t *Transport) onTimeout(addr insteon.Address) {
	frame, retry := t.reg.Timeout(addr)
	if !retry {
		t.disarmTimer(addr)
		return
	}
	if err := t.write(frame); err != nil {
		t.log.Error("plm: resend to %s failed: %v", addr, err)
		return
	}
	t.armTimer(addr)
}

// readLoop scans the STX-prefixed command stream and dispatches complete
// standard/extended messages to the registry. It returns, logging once,
// when the port is closed or a read fails.
func (t *Transport) readLoop() {
	r := bufio.NewReader(t.port)
	for {
		b, err := r.ReadByte()
		if err != nil {
			t.log.Error("plm: read loop stopped: %v", err)
			return
		}
		if b != stx {
			continue
		}
		cmd, err := r.ReadByte()
		if err != nil {
			t.log.Error("plm: read loop stopped: %v", err)
			return
		}
		switch cmd {
		case cmdStandardReceived:
			raw := make([]byte, insteon.StandardSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				t.log.Error("plm: short standard message: %v", err)
				return
			}
			frame, err := insteon.ParseStandard(raw)
			if err != nil {
				t.log.Warn("plm: malformed standard message: %v", err)
				continue
			}
			t.dispatch(frame)
		case cmdExtendedReceived:
			raw := make([]byte, insteon.ExtendedSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				t.log.Error("plm: short extended message: %v", err)
				return
			}
			frame, err := insteon.ParseExtended(raw)
			if err != nil {
				t.log.Warn("plm: malformed extended message: %v", err)
				continue
			}
			t.dispatch(frame)
		default:
			t.log.Debug("plm: ignoring unsupported PLM command %#x", cmd)
		}
	}
}

func (t *Transport) dispatch(frame insteon.Frame) {
	addr := insteon.Source(frame)
	t.reg.Dispatch(addr, frame)
	if _, stillActive := t.reg.Active(addr); stillActive {
		t.armTimer(addr) // a two-phase handler (e.g. the thermostat's status read) still expects another reply
	} else {
		t.disarmTimer(addr)
	}
}
