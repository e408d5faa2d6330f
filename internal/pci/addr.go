// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pci locates and maps the sysfs resources of a PCI function.
package pci

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// SysfsRoot is where the kernel publishes PCI functions.
var SysfsRoot = "/sys/bus/pci/devices"

// Addr is a PCI domain:bus:device.function address.
type Addr struct {
	Domain        uint16
	Bus, Slot, Fn uint8
}

// ParseAddr accepts "bb:dd.f" or "dddd:bb:dd.f" in hex; the domain
// defaults to zero when omitted.
func ParseAddr(s string) (a Addr, err error) {
	bad := fmt.Errorf("%s: improperly formatted PCI BDF, "+
		"e.g. 65:00.0 or 0000:65:00.0", s)
	dot := strings.LastIndexByte(s, '.')
	if dot < 0 {
		return a, bad
	}
	fields := append(strings.Split(s[:dot], ":"), s[dot+1:])
	if len(fields) == 3 {
		fields = append([]string{"0"}, fields...)
	}
	if len(fields) != 4 {
		return a, bad
	}
	for _, field := range fields {
		if len(field) == 0 {
			return a, bad
		}
	}
	var v [4]uint64
	for i, bits := range []int{16, 8, 5, 3} {
		v[i], err = strconv.ParseUint(fields[i], 16, bits)
		if err != nil {
			return a, fmt.Errorf("%s: %v", s, err)
		}
	}
	a.Domain = uint16(v[0])
	a.Bus = uint8(v[1])
	a.Slot = uint8(v[2])
	a.Fn = uint8(v[3])
	return a, nil
}

// String is the lower-case sysfs name of the function.
func (a Addr) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%01x", a.Domain, a.Bus, a.Slot, a.Fn)
}

// SysfsPath of a file in the function's sysfs directory.
func (a Addr) SysfsPath(format string, args ...interface{}) string {
	return filepath.Join(SysfsRoot, a.String(), fmt.Sprintf(format, args...))
}

// ResourcePath of BAR n, e.g. /sys/bus/pci/devices/0000:65:00.0/resource0.
func (a Addr) ResourcePath(n int) string {
	return a.SysfsPath("resource%d", n)
}
