// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package config loads the device roster: the list of Insteon devices a
// bridge process manages, their addresses, names, kinds and models, and
// any metadata to seed before first use. This is not the whole-bridge
// configuration (broker URL, serial port, log level) — only the part
// specific to this core, per §5.
package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rob-gra/insteon-bridge/device"
	"github.com/rob-gra/insteon-bridge/device/motion"
	"github.com/rob-gra/insteon-bridge/device/thermostat"
	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/meta"
	"github.com/rob-gra/insteon-bridge/signal"
	"github.com/rob-gra/insteon-bridge/transport"
)

// DeviceConfig describes one entry in the roster file.
type DeviceConfig struct {
	Address string                    `yaml:"address"`
	Name    string                    `yaml:"name"`
	Kind    string                    `yaml:"kind"` // "motion" or "thermostat"
	Model   string                    `yaml:"model,omitempty"`
	Meta    map[string]map[string]any `yaml:"meta,omitempty"`
}

// Roster is the top-level roster document.
type Roster struct {
	PLM     string         `yaml:"plm,omitempty"` // modem address, used as From on every send
	Devices []DeviceConfig `yaml:"devices"`
}

// Load reads and parses a roster file.
func Load(path string) (Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var r Roster
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Roster{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return r, nil
}

// Build constructs one state machine per roster entry, wired to the
// given transport, metadata store and signal bus, seeds each device's
// metadata namespaces from its Meta block if present, and registers
// each device's broadcast handler with the transport so unsolicited
// all-link traffic reaches HandleBroadcast.
func (r Roster) Build(t transport.Transport, store meta.Store, bus *signal.Bus) ([]*device.Device, error) {
	ctx := context.Background()
	devices := make([]*device.Device, 0, len(r.Devices))

	var plm insteon.Address
	if r.PLM != "" {
		var err error
		plm, err = insteon.ParseAddress(r.PLM)
		if err != nil {
			return nil, fmt.Errorf("config: plm address: %w", err)
		}
	}

	for _, dc := range r.Devices {
		addr, err := insteon.ParseAddress(dc.Address)
		if err != nil {
			return nil, fmt.Errorf("config: device %q: %w", dc.Name, err)
		}

		base := device.New(addr, plm, dc.Name, store, bus, t)

		var d *device.Device
		switch dc.Kind {
		case "motion":
			d = motion.New(base, dc.Model).Device
		case "thermostat":
			d = thermostat.New(base).Device
		default:
			return nil, fmt.Errorf("config: device %q: unknown kind %q", dc.Name, dc.Kind)
		}

		for namespace, values := range dc.Meta {
			if err := store.SetMeta(ctx, addr, namespace, values); err != nil {
				return nil, fmt.Errorf("config: device %q: seeding %s metadata: %w", dc.Name, namespace, err)
			}
		}

		t.AddHandler(addr, d.Handler())
		devices = append(devices, d)
	}

	return devices, nil
}
