// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package outcome holds the completion-callback shapes shared by the
// handler and sequence layers. It exists as its own package only to break
// the import cycle those two otherwise have on each other (sequence steps
// carry handlers, handlers carry the callback the sequence provides).
package outcome

// Result is the terminal shape every command, handler and sequence
// completion carries: whether it succeeded, a human-readable message
// (an error reason on failure, a success description on success), and an
// optional payload.
type Result struct {
	Success bool
	Message string
	Data    any
}

// Callback receives a Result exactly once.
type Callback func(Result)
