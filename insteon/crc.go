// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package insteon

// CRC-16/CCITT-FALSE parameters used for the D13/D14 checksum on extended
// messages that require one (status requests, thermostat reads). The
// Insteon Developer's Guide does not publish the exact algorithm for every
// device family; this is the variant used across the pack's one CRC
// implementation (go.bug.st-adjacent fusain protocol), fixed here as named
// constants so a captured device trace can replace them without touching
// call sites.
const (
	crcPolynomial uint16 = 0x1021
	crcInitial    uint16 = 0xFFFF
)

// CRC16 computes the running CRC over data, matching the algorithm used
// to fill D13/D14 on outbound extended set/status-request messages.
func CRC16(data []byte) uint16 {
	crc := crcInitial
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
