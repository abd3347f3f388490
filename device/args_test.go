// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package device

import "testing"

func TestParseBoolAcceptedForms(t *testing.T) {
	cases := map[any]bool{
		true: true, false: false,
		1: true, 0: false,
		"true": true, "FALSE": false,
		"on": true, "Off": false,
		"yes": true, "no": false,
		"1": true, "0": false,
	}
	for in, want := range cases {
		got, err := ParseBool(in)
		if err != nil {
			t.Fatalf("ParseBool(%v): unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseBool(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestParseBoolRejectsGarbage(t *testing.T) {
	for _, in := range []any{"maybe", 2, 3.5, nil} {
		if _, err := ParseBool(in); err == nil {
			t.Fatalf("ParseBool(%v): expected error, got none", in)
		}
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(5, 10, 20); got != 10 {
		t.Fatalf("ClampInt below range = %d, want 10", got)
	}
	if got := ClampInt(25, 10, 20); got != 20 {
		t.Fatalf("ClampInt above range = %d, want 20", got)
	}
	if got := ClampInt(15, 10, 20); got != 15 {
		t.Fatalf("ClampInt in range = %d, want 15", got)
	}
}

func TestClampFloat(t *testing.T) {
	if got := ClampFloat(-5.0, 0, 127); got != 0 {
		t.Fatalf("ClampFloat below range = %v, want 0", got)
	}
	if got := ClampFloat(200.0, 0, 127); got != 127 {
		t.Fatalf("ClampFloat above range = %v, want 127", got)
	}
}
