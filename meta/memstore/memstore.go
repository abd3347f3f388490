// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package memstore is an in-process fake meta.Store used by this
// module's tests, the metadata-store analogue of transport/memory.
package memstore

import (
	"context"

	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/meta"
)

// Store is a plain map-backed meta.Store with no persistence.
type Store struct {
	records map[insteon.Address]map[string]map[string]any
}

// New builds an empty Store.
func New() *Store {
	return &Store{records: make(map[insteon.Address]map[string]map[string]any)}
}

func (s *Store) GetMeta(_ context.Context, addr insteon.Address, namespace string) (map[string]any, bool, error) {
	dev, ok := s.records[addr]
	if !ok {
		return nil, false, nil
	}
	ns, ok := dev[namespace]
	return ns, ok, nil
}

func (s *Store) SetMeta(_ context.Context, addr insteon.Address, namespace string, values map[string]any) error {
	dev, ok := s.records[addr]
	if !ok {
		dev = make(map[string]map[string]any)
		s.records[addr] = dev
	}
	dev[namespace] = values
	return nil
}

var _ meta.Store = (*Store)(nil)
