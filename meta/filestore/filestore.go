// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package filestore is a reference meta.Store backed by one CBOR file
// per device, encoded with github.com/fxamacker/cbor/v2 the way the
// pack's fusain protocol package encodes its own compact records.
package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/rob-gra/insteon-bridge/insteon"
	"github.com/rob-gra/insteon-bridge/meta"
)

// record is the on-disk shape: every namespace for one device address,
// written as a single CBOR map so a read-modify-write only ever touches
// one file.
type record map[string]map[string]any

// Store persists metadata as one CBOR file per device under dir. A
// single mutex guards all access: the event loop is the only expected
// caller during normal operation (§5), but tooling (migrations, CLI
// inspection) may open the same directory outside the loop.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(addr insteon.Address) string {
	return filepath.Join(s.dir, addr.String()+".cbor")
}

func (s *Store) load(addr insteon.Address) (record, error) {
	b, err := os.ReadFile(s.path(addr))
	if os.IsNotExist(err) {
		return record{}, nil
	}
	if err != nil {
		return nil, err
	}
	var rec record
	if err := cbor.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = record{}
	}
	return rec, nil
}

func (s *Store) save(addr insteon.Address, rec record) error {
	b, err := cbor.Marshal(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(addr), b, 0o644)
}

// GetMeta implements meta.Store.
func (s *Store) GetMeta(_ context.Context, addr insteon.Address, namespace string) (map[string]any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.load(addr)
	if err != nil {
		return nil, false, err
	}
	ns, ok := rec[namespace]
	return ns, ok, nil
}

// SetMeta implements meta.Store.
func (s *Store) SetMeta(_ context.Context, addr insteon.Address, namespace string, values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.load(addr)
	if err != nil {
		return err
	}
	rec[namespace] = values
	return s.save(addr, rec)
}

var _ meta.Store = (*Store)(nil)
