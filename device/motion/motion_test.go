// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package motion

import (
	"context"
	"testing"
	"time"

	"github.com/rob-gra/insteon-bridge/device"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/meta"
	"github.com/rob-gra/insteon-bridge/meta/memstore"
	"github.com/rob-gra/insteon-bridge/outcome"
	"github.com/rob-gra/insteon-bridge/signal"
	"github.com/rob-gra/insteon-bridge/transport/memory"
)

var (
	devAddr = insteon.Address{0x11, 0x22, 0x33}
	plmAddr = insteon.Address{0x01, 0x01, 0x01}
)

func newTestMotion(model string) (*Motion, *memory.Transport, *memstore.Store) {
	tr := memory.New()
	store := memstore.New()
	base := device.New(devAddr, plmAddr, "test-motion", store, signal.New(), tr)
	return New(base, model), tr, store
}

func TestFlagEncodeDecodeRoundTrip(t *testing.T) {
	for _, ledOn := range []bool{false, true} {
		for _, nightOnly := range []bool{false, true} {
			for _, onOnly := range []bool{false, true} {
				b := composeFlagsByte(ledOn, nightOnly, onOnly)
				gotLed, gotNight, gotOn := decodeFlagsByte(b)
				if gotLed != ledOn || gotNight != nightOnly || gotOn != onOnly {
					t.Fatalf("round trip mismatch for (%v,%v,%v): got (%v,%v,%v) byte=%#x",
						ledOn, nightOnly, onOnly, gotLed, gotNight, gotOn, b)
				}
			}
		}
	}
}

// Seed scenario 1: motion flag update happy path, §8.
func TestUpdateFlagsHappyPath(t *testing.T) {
	m, tr, _ := newTestMotion("2844-222")

	var res outcome.Result
	m.cmdUpdateFlags(func(r outcome.Result) { res = r }, map[string]any{
		"led_on":     false,
		"night_only": true,
	})

	if len(tr.Sent) != 1 {
		t.Fatalf("expected the get request to have been sent, got %d sends", len(tr.Sent))
	}
	getFrame, ok := tr.Sent[0].Frame.(insteon.Extended)
	if !ok || getFrame.Cmd1 != insteon.Cmd1ExtendedGetSet || getFrame.Cmd2 != insteon.Cmd2ExtendedGet {
		t.Fatalf("unexpected get frame: %+v", tr.Sent[0].Frame)
	}

	ackGet := insteon.Standard{To: plmAddr, From: devAddr, Flags: insteon.NewFlags(insteon.MsgDirectAck, true), Cmd1: getFrame.Cmd1, Cmd2: getFrame.Cmd2}
	tr.Deliver(devAddr, ackGet)

	reply := insteon.Extended{Standard: insteon.Standard{
		To: plmAddr, From: devAddr, Flags: insteon.NewFlags(insteon.MsgDirect, true),
		Cmd1: getFrame.Cmd1, Cmd2: getFrame.Cmd2,
	}}
	reply.Data[5] = 0b00001110 // D6, matches led_on=1,night_only=0,on_only=0
	tr.Deliver(devAddr, reply)

	if len(tr.Sent) != 2 {
		t.Fatalf("expected a write request after the get reply, got %d sends", len(tr.Sent))
	}
	writeFrame, ok := tr.Sent[1].Frame.(insteon.Extended)
	if !ok {
		t.Fatalf("expected write frame to be extended, got %T", tr.Sent[1].Frame)
	}
	if writeFrame.Data[0] != 0x00 || writeFrame.Data[1] != insteon.SubCmdFlags {
		t.Fatalf("unexpected write sub-command bytes: %+v", writeFrame.Data)
	}
	// led_on=false -> bit3 clear; night_only=true -> bit2 clear; on_only
	// unset, keeps decoded initial value false -> bit1 set (inverted).
	wantD3 := byte(0x02)
	if writeFrame.Data[2] != wantD3 {
		t.Fatalf("unexpected D3 = %#x, want %#x", writeFrame.Data[2], wantD3)
	}

	ack := insteon.Standard{To: plmAddr, From: devAddr, Flags: insteon.NewFlags(insteon.MsgDirectAck, true), Cmd1: writeFrame.Cmd1, Cmd2: writeFrame.Cmd2}
	tr.Deliver(devAddr, ack)

	if !res.Success || res.Message != "Motion Set Flags Success" {
		t.Fatalf("unexpected final result: %+v", res)
	}
}

// Seed scenario 5: 2844 battery decode, §8.
func TestBatteryVoltageDecode2844(t *testing.T) {
	m, tr, _ := newTestMotion("2844-222")

	var lowEvents []bool
	m.Bus.Subscribe(devAddr, signal.LowBattery, func(ev signal.Event) {
		lowEvents = append(lowEvents, ev.Payload.(bool))
	})

	var res outcome.Result
	m.cmdGetBatteryVoltage(func(r outcome.Result) { res = r }, nil)

	sent, ok := tr.Last()
	if !ok {
		t.Fatal("expected a get-battery-voltage request")
	}
	getFrame := sent.Frame.(insteon.Extended)
	ack := insteon.Standard{To: plmAddr, From: devAddr, Flags: insteon.NewFlags(insteon.MsgDirectAck, true), Cmd1: getFrame.Cmd1, Cmd2: getFrame.Cmd2}
	tr.Deliver(devAddr, ack)

	reply := insteon.Extended{Standard: insteon.Standard{
		To: plmAddr, From: devAddr, Flags: insteon.NewFlags(insteon.MsgDirect, true),
		Cmd1: getFrame.Cmd1, Cmd2: getFrame.Cmd2,
	}}
	reply.Data[11] = 133 // D12
	tr.Deliver(devAddr, reply)

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	volts, _ := res.Data.(float64)
	if volts != 1.85 {
		t.Fatalf("expected 1.85V, got %v", volts)
	}
	if len(lowEvents) != 1 || !lowEvents[0] {
		t.Fatalf("expected a single low-battery=true event, got %v", lowEvents)
	}
}

func TestBatteryVoltageDecode2842UsesTensScale(t *testing.T) {
	if v := decodeBatteryVoltage("2842-222", 95); v != 9.5 {
		t.Fatalf("expected 9.5V for 2842 raw=95, got %v", v)
	}
}

// Seed scenario 4: auto-battery dedupe, §8.
func TestWakeDedupesWithinFiveMinutes(t *testing.T) {
	m, tr, store := newTestMotion("2844-222")
	base := time.Unix(2_000_000_000, 0)
	m.now = func() time.Time { return base }

	// Battery reading is already stale (older than 4 days), so the only
	// gate left is the 5-minute request dedupe.
	store.SetMeta(context.Background(), devAddr, meta.NamespaceMotion, map[string]any{
		meta.KeyBatteryVoltageTime: float64(base.Add(-5 * 24 * time.Hour).Unix()),
	})

	m.lastRequestTime = base.Add(-299 * time.Second)
	m.Wake()
	if len(tr.Sent) != 0 {
		t.Fatalf("expected no request within the 5-minute dedupe window, got %d", len(tr.Sent))
	}

	m.lastRequestTime = base.Add(-301 * time.Second)
	m.Wake()
	if len(tr.Sent) != 1 {
		t.Fatalf("expected a request once the dedupe window has passed, got %d", len(tr.Sent))
	}
}

func TestWakeSkipsWhenVoltageReadingIsFresh(t *testing.T) {
	m, tr, store := newTestMotion("2844-222")
	base := time.Unix(2_000_000_000, 0)
	m.now = func() time.Time { return base }
	store.SetMeta(context.Background(), devAddr, meta.NamespaceMotion, map[string]any{
		meta.KeyBatteryVoltageTime: float64(base.Add(-1 * time.Hour).Unix()),
	})

	m.Wake()
	if len(tr.Sent) != 0 {
		t.Fatalf("expected no request while the reading is fresh, got %d", len(tr.Sent))
	}
}

func TestTimeoutEncoding2842AndOthers(t *testing.T) {
	if got := encodeTimeout("2842-222", 60); got != 1 { // floor(60/30)-1
		t.Fatalf("2842 encode(60) = %d, want 1", got)
	}
	if got := encodeTimeout("2842-222", 1); got != 0 { // clamped to 30 -> floor(30/30)-1
		t.Fatalf("2842 encode clamp low = %d, want 0", got)
	}
	if got := encodeTimeout("2844-222", 95); got != 9 { // floor(95/10)
		t.Fatalf("2844 encode(95) = %d, want 9", got)
	}
}
