// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package shmem

import "fmt"

// Addr is an address in the firmware's view of SRAM.
type Addr uint32

// HostAlias is the bit that differs between the firmware's SRAM view and
// the GRC address of the same SRAM.
const HostAlias = 0x80000000

const (
	SramSize                  = 0x00400000
	ViewSramBase         Addr = 0x20000000
	UshiSigLocation           = ViewSramBase + 0x30
	UshiPtrLocation           = ViewSramBase + 0x34
	SrtCpuShmemOffsetLocation = ViewSramBase + 0x38
	ShmemOffsetLocation       = ViewSramBase + 0x3c
)

// Host returns the GRC address for use with register access.
func (a Addr) Host() uint32 { return uint32(a) ^ HostAlias }

func (a Addr) String() string { return fmt.Sprintf("%#08x", uint32(a)) }
