// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package insteon

// MsgType is the 3-bit message type carried in the top bits of Flags.
type MsgType byte

// The Insteon message types, see the Insteon Developer's Guide table of
// message flags. Direct messages carry a reply destined for the sender;
// broadcast and all-link messages are one-to-many.
const (
	MsgDirect            MsgType = 0b000
	MsgDirectAck         MsgType = 0b001
	MsgAllLinkCleanup    MsgType = 0b010
	MsgAllLinkCleanupAck MsgType = 0b011
	MsgAllLinkBroadcast  MsgType = 0b100
	MsgDirectNak         MsgType = 0b101
	MsgBroadcast         MsgType = 0b110
	MsgAllLinkCleanupNak MsgType = 0b111
)

// Flags is the one-byte message-flags field present in every standard and
// extended frame.
type Flags byte

const extendedBit = 0x10

// NewFlags builds a flags byte for the given message type with the
// standard max-hops/hops-left of 3/3 and extended bit as requested.
func NewFlags(t MsgType, extended bool) Flags {
	f := Flags(byte(t) << 5)
	if extended {
		f |= extendedBit
	}
	f |= 0x0F // max hops 3, hops left 3
	return f
}

// Type extracts the message type from the top 3 bits.
func (f Flags) Type() MsgType {
	return MsgType(byte(f) >> 5)
}

// IsExtended reports whether the extended-message bit is set.
func (f Flags) IsExtended() bool {
	return byte(f)&extendedBit != 0
}

// IsAck reports a direct acknowledgement.
func (f Flags) IsAck() bool {
	return f.Type() == MsgDirectAck
}

// IsNak reports a direct negative acknowledgement.
func (f Flags) IsNak() bool {
	return f.Type() == MsgDirectNak
}

// IsBroadcast reports either a pure broadcast or an all-link broadcast.
func (f Flags) IsBroadcast() bool {
	t := f.Type()
	return t == MsgBroadcast || t == MsgAllLinkBroadcast
}

// IsAllLink reports any of the four all-link message types.
func (f Flags) IsAllLink() bool {
	switch f.Type() {
	case MsgAllLinkCleanup, MsgAllLinkCleanupAck, MsgAllLinkBroadcast, MsgAllLinkCleanupNak:
		return true
	default:
		return false
	}
}

// Standard is a 9-byte wire frame: to/from address, flags, cmd1, cmd2.
type Standard struct {
	To    Address
	From  Address
	Flags Flags
	Cmd1  byte
	Cmd2  byte
}

// StandardSize is the wire length of a standard message.
const StandardSize = 9

// Extended is a 23-byte wire frame: a Standard plus 14 data bytes.
type Extended struct {
	Standard
	Data [14]byte
}

// ExtendedSize is the wire length of an extended message.
const ExtendedSize = 23

// Group returns the all-link group number for a broadcast frame, which
// Insteon carries in the high byte of the To address.
func (s Standard) Group() byte {
	return s.To[0]
}

// NewExtendedSet builds an outbound extended message, zero-padding the
// data bytes beyond those supplied. The cmd1/cmd2 pair together with
// data[0] (D1 in spec numbering, which is data[0] here) select the
// sub-command.
func NewExtendedSet(to, from Address, cmd1, cmd2 byte, data ...byte) (Extended, error) {
	if len(data) > len(Extended{}.Data) {
		return Extended{}, ErrTooManyDataBytes
	}
	e := Extended{
		Standard: Standard{
			To:    to,
			From:  from,
			Flags: NewFlags(MsgDirect, true),
			Cmd1:  cmd1,
			Cmd2:  cmd2,
		},
	}
	copy(e.Data[:], data)
	return e, nil
}

// WithCRC returns a copy of e with D13/D14 (Data[12], Data[13]) set to the
// CRC16 of D1..D12.
func (e Extended) WithCRC() Extended {
	crc := CRC16(e.Data[:12])
	e.Data[12] = byte(crc >> 8)
	e.Data[13] = byte(crc)
	return e
}

// Bytes encodes s as the 9 wire bytes a PLM expects after the 0x62
// "Send Insteon Standard/Extended Message" command code.
func (s Standard) Bytes() []byte {
	return []byte{s.To[0], s.To[1], s.To[2], s.From[0], s.From[1], s.From[2], byte(s.Flags), s.Cmd1, s.Cmd2}
}

// Bytes encodes e as the 23 wire bytes a PLM expects after the 0x62
// command code, standard fields followed by the 14 data bytes.
func (e Extended) Bytes() []byte {
	b := append(e.Standard.Bytes(), e.Data[:]...)
	return b
}

// ParseStandard decodes a 9-byte standard frame. b must be exactly
// StandardSize bytes (to, from, flags, cmd1, cmd2).
func ParseStandard(b []byte) (Standard, error) {
	if len(b) < StandardSize {
		return Standard{}, ErrFrameTooShort
	}
	s := Standard{
		To:    Address{b[0], b[1], b[2]},
		From:  Address{b[3], b[4], b[5]},
		Flags: Flags(b[6]),
		Cmd1:  b[7],
		Cmd2:  b[8],
	}
	if s.Flags.IsExtended() {
		return Standard{}, ErrNotStandard
	}
	return s, nil
}

// ParseExtended decodes a 23-byte extended frame. b must be exactly
// ExtendedSize bytes. A frame whose flags byte does not have the
// extended bit reports ErrNotExtended, even if it is shorter than
// ExtendedSize.
func ParseExtended(b []byte) (Extended, error) {
	if len(b) < StandardSize {
		return Extended{}, ErrFrameTooShort
	}
	s := Standard{
		To:    Address{b[0], b[1], b[2]},
		From:  Address{b[3], b[4], b[5]},
		Flags: Flags(b[6]),
		Cmd1:  b[7],
		Cmd2:  b[8],
	}
	if !s.Flags.IsExtended() {
		return Extended{}, ErrNotExtended
	}
	if len(b) < ExtendedSize {
		return Extended{}, ErrFrameTooShort
	}
	e := Extended{Standard: s}
	copy(e.Data[:], b[9:23])
	return e, nil
}
