// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fwsim

import (
	"github.com/platinasystems/nitro/hwrm"
	"github.com/platinasystems/nitro/shmem"
	"github.com/platinasystems/nitro/trace"
)

// Firmware addresses of the simulated structures.
const (
	ShmemAddr   shmem.Addr = shmem.ViewSramBase + 0x1000
	HistoryAddr shmem.Addr = shmem.ViewSramBase + 0x2000
	RingAddr    shmem.Addr = shmem.ViewSramBase + 0x3000
	TraceAddr   shmem.Addr = shmem.ViewSramBase + 0x10000
)

// Firmware lays out the shared memory header, HWRM history and trace log
// in Mem the way a running firmware publishes them.
type Firmware struct {
	Mem    *Memory
	Header shmem.Header
	List   hwrm.ListHeader

	trace int
}

// NewFirmware publishes valid structures with an n slot history ring.
func NewFirmware(mem *Memory, n int) *Firmware {
	f := &Firmware{
		Mem: mem,
		Header: shmem.Header{
			Signature:         shmem.Signature,
			Size:              shmem.HeaderSize,
			TraceBufOffset:    TraceAddr,
			FwVersion:         0x01020304,
			HwrmVersion:       0x010a0200,
			TraceBufSize:      trace.DebugSize / 1024,
			HwrmHistoryOffset: HistoryAddr,
		},
		List: hwrm.ListHeader{
			Signature:  hwrm.ListSignature,
			MaxEntries: uint8(n),
			Ring:       RingAddr,
		},
	}
	mem.Store32(shmem.ShmemOffsetLocation.Host(), uint32(ShmemAddr))
	f.PublishHeader()
	f.PublishList()
	f.SetTraceCursor(0)
	return f
}

// PublishHeader writes f.Header to SRAM.
func (f *Firmware) PublishHeader() {
	f.Mem.Write(ShmemAddr.Host(), f.Header.Bytes())
}

// PublishList writes f.List to SRAM.
func (f *Firmware) PublishList() {
	f.Mem.Write(HistoryAddr.Host(), f.List.Bytes())
}

// CorruptHeader overwrites the header signature.
func (f *Firmware) CorruptHeader() {
	f.Mem.Store32(ShmemAddr.Host(), 0xdeadbeef)
}

// CorruptList overwrites the history list signature.
func (f *Firmware) CorruptList() {
	f.Mem.Store32(HistoryAddr.Host(), 0)
}

// CorruptTrace overwrites the trace header signature.
func (f *Firmware) CorruptTrace() {
	f.Mem.Store32(TraceAddr.Host(), 0)
}

// FilterMask reads back the filter written by the host.
func (f *Firmware) FilterMask() uint16 {
	h, _ := hwrm.DecodeListHeader(f.Mem.Read(HistoryAddr.Host(),
		hwrm.ListSize))
	return h.FilterMask
}

// PutEntry writes ring slot i.
func (f *Firmware) PutEntry(i int, e hwrm.Entry) {
	f.Mem.Write(RingAddr.Host()+uint32(i*hwrm.EntrySize), e.Bytes())
}

// Capture writes a request into slot i stamped with ticks; the first
// payload byte is i so records are easy to tell apart.
func (f *Firmware) Capture(i int, ticks uint32) hwrm.Entry {
	e := hwrm.Entry{
		Timestamp:  ticks,
		ChnlAndLen: hwrm.ChnlAndLen(1, 24),
	}
	e.Payload[0] = byte(i)
	f.PutEntry(i, e)
	return e
}

// SetTraceCursor publishes a valid trace header with the write cursor at
// the given ring offset.
func (f *Firmware) SetTraceCursor(offset int) {
	f.trace = offset % trace.BufferSize
	ring := TraceAddr + trace.HeaderSize
	h := trace.Header{
		Signature: trace.Signature,
		Index:     ring + shmem.Addr(f.trace),
	}
	f.Mem.Write(TraceAddr.Host(), h.Bytes())
}

// Trace appends text at the write cursor, wrapping at the end of the ring,
// and advances the cursor.
func (f *Firmware) Trace(text string) {
	ring := (TraceAddr + trace.HeaderSize).Host()
	b := []byte(text)
	for len(b) > 0 {
		n := trace.BufferSize - f.trace
		if n > len(b) {
			n = len(b)
		}
		f.Mem.Write(ring+uint32(f.trace), b[:n])
		b = b[n:]
		f.SetTraceCursor(f.trace + n)
	}
}

// TraceCursor is the current ring offset of the write cursor.
func (f *Firmware) TraceCursor() int { return f.trace }
