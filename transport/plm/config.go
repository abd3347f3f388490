// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package plm

import (
	"errors"
	"time"
)

// Config parameter ranges. Insteon direct messages are acknowledged or
// retried on a much shorter horizon than an IEC 60870-5-104 link, since
// the PLM itself — not a remote outstation across a WAN — is the other
// end of the wire.
const (
	// "ack" range [1, 30]s default 3s.
	AckTimeoutMin = 1 * time.Second
	AckTimeoutMax = 30 * time.Second

	// "retry" range [0, 10] default 3.
	MaxRetryMin = 0
	MaxRetryMax = 10
)

// Config defines the timing parameters for a PLM Transport. The zero
// value is not valid; call Valid to apply defaults to unset fields.
type Config struct {
	// AckTimeout is how long Send waits for a direct ack before the
	// handler's timeout/retry path runs.
	// "ack" range [1, 30]s default 3s.
	AckTimeout time.Duration

	// MaxRetry is validated and stored but not read by Transport: every
	// handler carries its own retry budget from its constructor. An
	// explicit 0 cannot be told apart from unset and becomes 3.
	// "retry" range [0, 10] default 3.
	MaxRetry int
}

// Valid applies the default to each unset field, or reports an error if
// an explicitly set field is out of range.
func (c *Config) Valid() error {
	if c == nil {
		return errors.New("plm: invalid pointer")
	}

	if c.AckTimeout == 0 {
		c.AckTimeout = 3 * time.Second
	} else if c.AckTimeout < AckTimeoutMin || c.AckTimeout > AckTimeoutMax {
		return errors.New(`AckTimeout "ack" not in [1, 30]s`)
	}

	if c.MaxRetry == 0 {
		c.MaxRetry = 3
	} else if c.MaxRetry < MaxRetryMin || c.MaxRetry > MaxRetryMax {
		return errors.New(`MaxRetry "retry" not in [0, 10]`)
	}

	return nil
}

// DefaultConfig returns the standard PLM timing parameters.
func DefaultConfig() Config {
	return Config{
		AckTimeout: 3 * time.Second,
		MaxRetry:   3,
	}
}
