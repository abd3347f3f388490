// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package insteon

import "errors"

// Package-scope sentinel errors for frame construction and parsing.
var (
	// ErrFrameTooShort is returned when a byte slice is shorter than the
	// frame size it claims to hold.
	ErrFrameTooShort = errors.New("insteon: frame too short")
	// ErrNotStandard is returned parsing a frame whose extended flag bit
	// is set when a standard (9-byte) frame was expected.
	ErrNotStandard = errors.New("insteon: not a standard-length frame")
	// ErrNotExtended is returned parsing a frame whose extended flag bit
	// is clear when an extended (23-byte) frame was expected.
	ErrNotExtended = errors.New("insteon: not an extended-length frame")
	// ErrTooManyDataBytes is returned building an extended frame with more
	// than 14 data bytes.
	ErrTooManyDataBytes = errors.New("insteon: more than 14 data bytes")
	// ErrBadAddress is returned parsing a malformed address string.
	ErrBadAddress = errors.New("insteon: malformed address")
)
