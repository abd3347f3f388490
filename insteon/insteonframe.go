// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package insteon

// Frame is implemented by Standard and Extended so the handler and
// transport layers can carry either wire shape without resorting to
// interface{}.
type Frame interface {
	frameSource() Address
}

func (s Standard) frameSource() Address { return s.From }
func (e Extended) frameSource() Address { return e.From }

// Source returns the address a frame claims to be from, used by handlers
// to confirm a reply came from the device they are waiting on.
func Source(f Frame) Address {
	return f.frameSource()
}
