// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package meta defines the per-device metadata store contract (§3, §6)
// and the typed record views the device state machines read and write.
package meta

import (
	"context"

	"github.com/rob-gra/insteon-bridge/insteon"
)

// Namespace names recognized by the device state machines.
const (
	NamespaceMotion     = "Motion"
	NamespaceThermostat = "thermostat"
)

// Store is the external DB collaborator's contract: a per-device,
// per-namespace key/value bag. SetMeta replaces the whole namespace;
// callers merge manually, per §6.
type Store interface {
	// GetMeta returns the namespace's map for addr, or ok=false if no
	// record exists yet.
	GetMeta(ctx context.Context, addr insteon.Address, namespace string) (map[string]any, bool, error)
	// SetMeta replaces the namespace's entire map for addr.
	SetMeta(ctx context.Context, addr insteon.Address, namespace string, values map[string]any) error
}

// Merge reads the current namespace, applies fn to a mutable copy (an
// empty map if none existed), and writes the result back — the
// read-modify-write pattern §3 requires of every metadata write.
func Merge(ctx context.Context, s Store, addr insteon.Address, namespace string, fn func(map[string]any)) error {
	current, ok, err := s.GetMeta(ctx, addr, namespace)
	if err != nil {
		return err
	}
	next := make(map[string]any, len(current))
	if ok {
		for k, v := range current {
			next[k] = v
		}
	}
	fn(next)
	return s.SetMeta(ctx, addr, namespace, next)
}
