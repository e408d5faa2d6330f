// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package fwsim simulates a NIC's BAR0 register windows and the firmware
// structures behind them so that register access and the readers built
// on it run without hardware.
package fwsim

import (
	"sync"
)

// Memory is a sparse GRC address space of little endian words.
type Memory struct {
	mu    sync.Mutex
	words map[uint32]uint32
}

func NewMemory() *Memory {
	return &Memory{words: make(map[uint32]uint32)}
}

// Load32 of the word containing addr.
func (m *Memory) Load32(addr uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.words[addr&^3]
}

// Store32 to the word containing addr.
func (m *Memory) Store32(addr uint32, v uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words[addr&^3] = v
}

// Write data[i] at addr+i.
func (m *Memory) Write(addr uint32, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range data {
		at := addr + uint32(i)
		shift := 8 * (at & 3)
		w := m.words[at&^3]
		w &^= 0xff << shift
		w |= uint32(c) << shift
		m.words[at&^3] = w
	}
}

// Read n bytes from addr.
func (m *Memory) Read(addr uint32, n int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		at := addr + uint32(i)
		b[i] = byte(m.words[at&^3] >> (8 * (at & 3)))
	}
	return b
}

const (
	windows        = 15
	windowSize     = 0x1000
	baseRegisters  = 0x400
	windowRegister = 0x1000
	barSize        = windowRegister + windows*windowSize
)

// BaseWrite records a store to a window base register.
type BaseWrite struct {
	Window int
	Base   uint32
}

// Bar is a simulated 64KB BAR0 with 15 GRC windows onto Mem.
type Bar struct {
	Mem *Memory

	mu         sync.Mutex
	base       [windows]uint32
	baseWrites []BaseWrite
	loads      int
	stores     int
}

func NewBar(mem *Memory) *Bar {
	if mem == nil {
		mem = NewMemory()
	}
	return &Bar{Mem: mem}
}

func (b *Bar) window(off uintptr) (int, uint32, bool) {
	if off < windowRegister || off >= barSize {
		return 0, 0, false
	}
	w := int((off - windowRegister) / windowSize)
	return w, b.base[w] + uint32(off%windowSize), true
}

func (b *Bar) Load32(off uintptr) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loads++
	if off >= baseRegisters && off < baseRegisters+4*windows {
		return b.base[(off-baseRegisters)/4]
	}
	if _, addr, ok := b.window(off); ok {
		return b.Mem.Load32(addr)
	}
	return 0
}

func (b *Bar) Store32(off uintptr, v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stores++
	if off >= baseRegisters && off < baseRegisters+4*windows {
		w := int((off - baseRegisters) / 4)
		b.base[w] = v
		b.baseWrites = append(b.baseWrites, BaseWrite{w, v})
		return
	}
	if _, addr, ok := b.window(off); ok {
		b.Mem.Store32(addr, v)
	}
}

// BaseWrites returns and clears the recorded base register stores.
func (b *Bar) BaseWrites() []BaseWrite {
	b.mu.Lock()
	defer b.mu.Unlock()
	writes := b.baseWrites
	b.baseWrites = nil
	return writes
}

// Counts of window loads and stores, base registers included.
func (b *Bar) Counts() (loads, stores int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loads, b.stores
}

// Base is the current value of a window's base register.
func (b *Bar) Base(w int) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.base[w]
}
