// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Command insteond wires a device roster to a live PLM connection and a
// file-backed metadata store, and logs every emitted signal to stdout.
// It is glue, not a product: the MQTT command bridge and interactive CLI
// this would normally sit behind are out of scope (§1).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rob-gra/insteon-bridge/config"
	"github.com/rob-gra/insteon-bridge/meta/filestore"
	"github.com/rob-gra/insteon-bridge/signal"
	"github.com/rob-gra/insteon-bridge/transport/plm"
)

// wakeInterval is how often the managing loop ticks every device's
// Awake hook — wide enough that motion's BatteryRequestDedupe never
// sees back-to-back ticks as the same request.
const wakeInterval = 10 * time.Minute

func main() {
	rosterPath := flag.String("roster", "roster.yaml", "path to the device roster YAML file")
	port := flag.String("port", "", "serial port the PLM is attached to, e.g. /dev/ttyUSB0")
	metaDir := flag.String("meta-dir", "meta", "directory for per-device metadata files")
	flag.Parse()

	if err := run(*rosterPath, *port, *metaDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(rosterPath, port, metaDir string) error {
	if port == "" {
		return fmt.Errorf("insteond: -port is required")
	}

	roster, err := config.Load(rosterPath)
	if err != nil {
		return err
	}

	store, err := filestore.New(metaDir)
	if err != nil {
		return fmt.Errorf("insteond: opening metadata store: %w", err)
	}

	tr, err := plm.Open(port)
	if err != nil {
		return fmt.Errorf("insteond: opening PLM: %w", err)
	}
	defer tr.Close()

	bus := signal.New()

	devices, err := roster.Build(tr, store, bus)
	if err != nil {
		return fmt.Errorf("insteond: building roster: %w", err)
	}

	for _, d := range devices {
		d := d
		for _, kind := range signal.AllKinds {
			bus.Subscribe(d.Addr, kind, func(ev signal.Event) {
				fmt.Printf("%s %s=%v\n", d.Name, ev.Kind, ev.Payload)
			})
		}
	}

	fmt.Printf("insteond: managing %d devices on %s\n", len(devices), port)

	ticker := time.NewTicker(wakeInterval)
	defer ticker.Stop()
	for range ticker.C {
		for _, d := range devices {
			d.Awake()
		}
	}
	return nil
}
