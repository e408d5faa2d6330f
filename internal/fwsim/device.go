// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fwsim

import "github.com/platinasystems/nitro/grc"

// Device is a simulated NIC: firmware in memory behind a BAR0 reached
// through a real register window.
type Device struct {
	*Firmware
	Bar    *Bar
	Access *grc.Access
	Regs   *Recorder
}

// NewDevice with an n slot history ring.
func NewDevice(n int) *Device {
	mem := NewMemory()
	bar := NewBar(mem)
	access, err := grc.New(bar, grc.DefaultWindow)
	if err != nil {
		panic(err)
	}
	return &Device{
		Firmware: NewFirmware(mem, n),
		Bar:      bar,
		Access:   access,
		Regs:     &Recorder{Registers: access},
	}
}
