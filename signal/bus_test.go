// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package signal

import (
	"testing"

	"github.com/rob-gra/insteon-bridge/insteon"
)

var devA = insteon.Address{0x11, 0x22, 0x33}

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	b.Subscribe(devA, LowBattery, func(Event) { order = append(order, 1) })
	b.Subscribe(devA, LowBattery, func(Event) { order = append(order, 2) })

	b.Publish(Event{Addr: devA, Kind: LowBattery, Payload: true})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected delivery order: %v", order)
	}
}

func TestPublishOnlyMatchesKindAndAddr(t *testing.T) {
	b := New()
	devB := insteon.Address{0x44, 0x55, 0x66}
	var calls int
	b.Subscribe(devA, LowBattery, func(Event) { calls++ })
	b.Subscribe(devA, Dawn, func(Event) { calls++ })
	b.Subscribe(devB, LowBattery, func(Event) { calls++ })

	b.Publish(Event{Addr: devA, Kind: LowBattery})

	if calls != 1 {
		t.Fatalf("expected exactly one matching subscriber, got %d", calls)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	calls := 0
	unsub := b.Subscribe(devA, LowBattery, func(Event) { calls++ })
	unsub()
	b.Publish(Event{Addr: devA, Kind: LowBattery})
	if calls != 0 {
		t.Fatalf("expected no delivery after unsubscribe, got %d calls", calls)
	}
}
