// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pci

import (
	"path/filepath"
	"testing"
)

func TestParseAddr(t *testing.T) {
	for _, x := range []struct {
		in   string
		want string
	}{
		{"65:00.0", "0000:65:00.0"},
		{"0000:65:00.0", "0000:65:00.0"},
		{"1:2:3.1", "0001:02:03.1"},
		{"AB:1F.7", "0000:ab:1f.7"},
		{"000a:b1:00.1", "000a:b1:00.1"},
	} {
		a, err := ParseAddr(x.in)
		if err != nil {
			t.Errorf("%s: %v", x.in, err)
			continue
		}
		if s := a.String(); s != x.want {
			t.Error("wrong:", x.in, "->", s, "want", x.want)
		}
	}
}

func TestParseAddrErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"65:00",
		"0:0:65:00.0",
		"65:00.8",
		"65:20.0",
		"165:00.0",
		"zz:00.0",
		"65::00.0",
		":65:00.0",
		"0000::65:00.0",
		"65:00.",
		"65.00.0",
		"0000:65:00:0",
	} {
		if _, err := ParseAddr(s); err == nil {
			t.Error("accepted:", s)
		}
	}
}

func TestResourcePath(t *testing.T) {
	defer func(s string) { SysfsRoot = s }(SysfsRoot)
	SysfsRoot = "/sys/bus/pci/devices"
	a, err := ParseAddr("65:00.0")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.FromSlash("/sys/bus/pci/devices/0000:65:00.0/resource0")
	if s := a.ResourcePath(0); s != want {
		t.Error("wrong:", s)
	}
}
