// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package insteon

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is a 3-byte Insteon device identifier, high byte first, the way
// it appears printed on the device ("AA.BB.CC") and on the wire.
type Address [3]byte

// ParseAddress parses "AA.BB.CC" or "AABBCC" (case-insensitive), the two
// forms seen in device configuration and in logs respectively.
func ParseAddress(s string) (Address, error) {
	s = strings.ReplaceAll(s, ".", "")
	if len(s) != 6 {
		return Address{}, ErrBadAddress
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	return Address{b[0], b[1], b[2]}, nil
}

// String renders the canonical "AA.BB.CC" form.
func (a Address) String() string {
	return fmt.Sprintf("%02X.%02X.%02X", a[0], a[1], a[2])
}

// Compare returns -1, 0 or 1 the way bytes.Compare does, treating the
// address as a big-endian 24-bit integer.
func (a Address) Compare(b Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether a sorts before b.
func (a Address) Less(b Address) bool {
	return a.Compare(b) < 0
}

// IsZero reports whether a is the unset address 00.00.00.
func (a Address) IsZero() bool {
	return a == Address{}
}
