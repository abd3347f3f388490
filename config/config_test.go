// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/meta"
	"github.com/rob-gra/insteon-bridge/meta/memstore"
	"github.com/rob-gra/insteon-bridge/signal"
	"github.com/rob-gra/insteon-bridge/transport/memory"
)

const sampleRoster = `
plm: "01.01.01"
devices:
  - address: "22.33.44"
    name: hallway-motion
    kind: motion
    model: "2844-222"
    meta:
      Motion:
        timeout_seconds: 120
  - address: "55.66.77"
    name: upstairs-thermostat
    kind: thermostat
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yaml")
	if err := os.WriteFile(path, []byte(sampleRoster), 0o644); err != nil {
		t.Fatalf("writing sample roster: %v", err)
	}
	return path
}

func TestLoadParsesDevicesAndMeta(t *testing.T) {
	path := writeSample(t)
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.PLM != "01.01.01" {
		t.Fatalf("plm = %q, want 01.01.01", r.PLM)
	}
	if len(r.Devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(r.Devices))
	}
	if r.Devices[0].Kind != "motion" || r.Devices[0].Model != "2844-222" {
		t.Fatalf("unexpected first device: %+v", r.Devices[0])
	}
	if v := r.Devices[0].Meta["Motion"]["timeout_seconds"]; v != 120 {
		t.Fatalf("seeded meta = %v, want 120", v)
	}
}

func TestBuildConstructsDevicesAndSeedsMeta(t *testing.T) {
	path := writeSample(t)
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	store := memstore.New()
	devices, err := r.Build(memory.New(), store, signal.New())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("built %d devices, want 2", len(devices))
	}
	if devices[0].Name != "hallway-motion" || devices[1].Name != "upstairs-thermostat" {
		t.Fatalf("unexpected device names: %s, %s", devices[0].Name, devices[1].Name)
	}
	if devices[0].PLM != (insteon.Address{0x01, 0x01, 0x01}) {
		t.Fatalf("plm = %v, want 01.01.01", devices[0].PLM)
	}

	addr, _ := insteon.ParseAddress("22.33.44")
	rec, ok, err := store.GetMeta(context.Background(), addr, meta.NamespaceMotion)
	if err != nil || !ok {
		t.Fatalf("expected seeded motion meta, ok=%v err=%v", ok, err)
	}
	if rec["timeout_seconds"] != 120 {
		t.Fatalf("seeded record = %v", rec)
	}
}

func TestBuildRegistersBroadcastHandler(t *testing.T) {
	path := writeSample(t)
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	bus := signal.New()
	tr := memory.New()
	devices, err := r.Build(tr, memstore.New(), bus)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	motionAddr := devices[0].Addr // hallway-motion
	var motionState any
	bus.Subscribe(motionAddr, signal.MotionState, func(ev signal.Event) { motionState = ev.Payload })

	broadcast := insteon.Standard{
		To:    insteon.Address{0x01, 0x00, 0x00}, // group 1
		From:  motionAddr,
		Flags: insteon.NewFlags(insteon.MsgAllLinkBroadcast, false),
		Cmd1:  0x11,
	}
	tr.Deliver(motionAddr, broadcast)

	if motionState != true {
		t.Fatalf("expected motion broadcast to reach the device, got %v", motionState)
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("devices:\n  - address: \"01.02.03\"\n    name: x\n    kind: doorbell\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := r.Build(memory.New(), memstore.New(), signal.New()); err == nil {
		t.Fatal("expected error for unknown device kind")
	}
}
