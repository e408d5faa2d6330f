// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package nic

import (
	"testing"
	"time"
)

func TestParseOptions(t *testing.T) {
	opt, err := ParseOptions("65:00.0", "", "", "", false)
	if err != nil {
		t.Fatal(err)
	}
	if opt.Window != 14 || opt.Interval != 100*time.Millisecond {
		t.Errorf("wrong: %+v", opt)
	}
	opt, err = ParseOptions("65:00.0", "3", "1s", "bnxt_en.ko", true)
	if err != nil {
		t.Fatal(err)
	}
	if opt.Window != 3 || opt.Interval != time.Second ||
		opt.Reload != "bnxt_en.ko" || !opt.Unload {
		t.Errorf("wrong: %+v", opt)
	}
	for _, x := range [][3]string{
		{"15", "", ""},
		{"-1", "", ""},
		{"x", "", ""},
		{"", "fast", ""},
		{"", "0s", ""},
		{"", "", "bnxt_en.ko"},
	} {
		if _, err = ParseOptions("65:00.0", x[0], x[1], x[2],
			false); err == nil {
			t.Errorf("accepted %q", x)
		}
	}
}
