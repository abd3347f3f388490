// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package motion

import (
	"math"
	"strings"

	"github.com/rob-gra/insteon-bridge/device"
)

// is2842 reports whether model belongs to the older 2842-series sensor,
// which uses a different voltage scale and timeout encoding than the
// 2844-family that followed it.
func is2842(model string) bool {
	return strings.HasPrefix(model, "2842")
}

// decodeFlagsByte splits the D6/D3 operating-flags byte into the three
// named bits. Bits other than 1-3 are undefined and ignored on read.
func decodeFlagsByte(b byte) (ledOn, nightOnly, onOnly bool) {
	ledOn = b&0x08 != 0
	nightOnly = b&0x04 == 0 // stored inverted: 1 means "allow any time"
	onOnly = b&0x02 == 0    // stored inverted: 1 means "send on+off"
	return
}

// composeFlagsByte builds a D3 write value. Undefined bits are always
// zero on write, per §3.
func composeFlagsByte(ledOn, nightOnly, onOnly bool) byte {
	var b byte
	if ledOn {
		b |= 0x08
	}
	if !nightOnly {
		b |= 0x04
	}
	if !onOnly {
		b |= 0x02
	}
	return b
}

// decodeBatteryVoltage converts the raw D12 byte to volts for model.
func decodeBatteryVoltage(model string, raw byte) float64 {
	if is2842(model) {
		return float64(raw) / 10.0
	}
	return math.Round(float64(raw)/72.0*100) / 100
}

// defaultLowBatteryVoltage is the threshold used absent a metadata
// override.
func defaultLowBatteryVoltage(model string) float64 {
	if is2842(model) {
		return 7.0
	}
	return 1.85
}

// encodeTimeout clamps seconds to the model's valid range and encodes it
// per §4.4's timeout table.
func encodeTimeout(model string, seconds int) byte {
	if is2842(model) {
		seconds = device.ClampInt(seconds, 30, 14400)
		return byte(seconds/30 - 1)
	}
	seconds = device.ClampInt(seconds, 10, 2400)
	return byte(seconds / 10)
}
