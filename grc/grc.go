// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package grc reads and writes the NIC's internal GRC register space
// through one of the 4KB windows that the PF exposes in BAR0.
//
// The BAR0 layout used here is,
//
//	0x0000	HWRM communication channels 0 and 1
//	0x0400	window base registers, one 32-bit register per window
//	0x1000	windows 0 to 14, 4KB each
//
// Programming a window's base register with a 4KB aligned GRC address
// makes the corresponding 4KB of GRC space visible through that window.
// Every Access method holds one lock for its whole transaction because the
// base register is shared hardware state.
package grc

import (
	"errors"
	"fmt"
	"sync"
)

const (
	Windows        = 15
	DefaultWindow  = 14
	WindowSize     = 0x1000
	OffsetMask     = WindowSize - 1
	BaseMask       = ^uint32(OffsetMask)
	BaseRegisters  = 0x400
	WindowRegister = 0x1000
)

var (
	ErrAlignment = errors.New("address must be on a 4-byte boundary")
	ErrClosed    = errors.New("register access closed")
	ErrRange     = errors.New("beyond the 32-bit GRC address space")
)

// AlignmentError is returned by word operations on an unaligned address.
type AlignmentError struct {
	Addr uint32
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("address %#08x: %v", e.Addr, ErrAlignment)
}

func (e *AlignmentError) Is(target error) bool { return target == ErrAlignment }

// span checks that n bytes from addr are within GRC space.
func span(addr uint32, n int) error {
	if n < 0 {
		return fmt.Errorf("length %d: negative", n)
	}
	if uint64(addr)+uint64(n) > 1<<32 {
		return fmt.Errorf("%#08x+%#x: %w", addr, n, ErrRange)
	}
	return nil
}

// Bar is the 32-bit register view of a mapped BAR0.
type Bar interface {
	Load32(off uintptr) uint32
	Store32(off uintptr, v uint32)
}

// Access is the register window shared by every reader of one device.
type Access struct {
	mu     sync.Mutex
	bar    Bar
	window int
	close  func() error

	// last base written to the window register; valid only if mapped
	base   uint32
	mapped bool
}

// New returns an Access to bar through the given window.
func New(bar Bar, window int) (*Access, error) {
	if window < 0 || window >= Windows {
		return nil, fmt.Errorf("window %d: out of range [0, %d)",
			window, Windows)
	}
	return &Access{bar: bar, window: window}, nil
}

// Window is the index of the BAR0 window used by this Access.
func (a *Access) Window() int { return a.window }

// Close waits for any in-flight transaction then releases the BAR.
// Subsequent calls fail with ErrClosed.
func (a *Access) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bar == nil {
		return nil
	}
	a.bar = nil
	a.mapped = false
	if a.close != nil {
		return a.close()
	}
	return nil
}

// ReadWords reads count 32-bit registers starting at the 4-byte aligned
// GRC address.
func (a *Access) ReadWords(addr uint32, count int) ([]uint32, error) {
	if addr&3 != 0 {
		return nil, &AlignmentError{addr}
	}
	if count < 0 {
		return nil, fmt.Errorf("count %d: negative", count)
	}
	if err := span(addr, 4*count); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bar == nil {
		return nil, ErrClosed
	}
	words := make([]uint32, count)
	for i := range words {
		words[i] = a.load(addr + uint32(i)*4)
	}
	return words, nil
}

// ReadWord reads the 32-bit register at the 4-byte aligned GRC address.
func (a *Access) ReadWord(addr uint32) (uint32, error) {
	words, err := a.ReadWords(addr, 1)
	if err != nil {
		return 0, err
	}
	return words[0], nil
}

// WriteWords writes consecutive 32-bit registers starting at the 4-byte
// aligned GRC address.
func (a *Access) WriteWords(addr uint32, words ...uint32) error {
	if addr&3 != 0 {
		return &AlignmentError{addr}
	}
	if err := span(addr, 4*len(words)); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bar == nil {
		return ErrClosed
	}
	for i, w := range words {
		a.store(addr+uint32(i)*4, w)
	}
	return nil
}

// ReadBytes reads n bytes starting at any GRC address. Byte i of a word is
// bits 8*i through 8*i+7. A word is fetched once per 4-byte boundary.
func (a *Access) ReadBytes(addr uint32, n int) ([]byte, error) {
	if err := span(addr, n); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bar == nil {
		return nil, ErrClosed
	}
	b := make([]byte, n)
	var word uint32
	for i := range b {
		at := addr + uint32(i)
		if i == 0 || at&3 == 0 {
			word = a.load(at &^ 3)
		}
		b[i] = byte(word >> (8 * (at & 3)))
	}
	return b, nil
}

// WriteBytes stores data[i] at addr+i. Partial words are read, modified,
// and written back; each containing word is written once, when its last
// byte is merged or the data runs out.
func (a *Access) WriteBytes(addr uint32, data []byte) error {
	if err := span(addr, len(data)); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bar == nil {
		return ErrClosed
	}
	var word uint32
	for i, c := range data {
		at := addr + uint32(i)
		shift := 8 * (at & 3)
		if i == 0 || at&3 == 0 {
			word = a.load(at &^ 3)
		}
		word &^= 0xff << shift
		word |= uint32(c) << shift
		if at&3 == 3 || i == len(data)-1 {
			a.store(at&^3, word)
		}
	}
	return nil
}

// remap points the window at the 4KB page holding addr, if it isn't
// already, and returns the BAR offset of addr.
func (a *Access) remap(addr uint32) uintptr {
	if base := addr & BaseMask; !a.mapped || base != a.base {
		a.bar.Store32(BaseRegisters+4*uintptr(a.window), base)
		a.base = base
		a.mapped = true
	}
	return WindowRegister + uintptr(a.window)*WindowSize +
		uintptr(addr&OffsetMask)
}

func (a *Access) load(addr uint32) uint32 {
	return a.bar.Load32(a.remap(addr))
}

func (a *Access) store(addr uint32, v uint32) {
	a.bar.Store32(a.remap(addr), v)
}
