// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwrm

import (
	"encoding/binary"
	"fmt"

	"github.com/platinasystems/nitro/shmem"
)

const (
	ListSignature = 0x12345678
	ListSize      = 24

	// byte offset of the writable channel filter in the list header
	FilterMaskOffset = 6

	DefaultFilterMask = 0xf000
)

// ListHeader describes the history ring,
//
//	 0 signature	u32
//	 4 max_entries	u8
//	 5 current_index	u8
//	 6 filter_mask	u16 channel bitmask, host writable
//	 8 ptr_addr	u32 firmware address of the ring
//	12 non_pf_chnl	u32
//	16 filter_msg	u32
//	20 vf_filter	u32
type ListHeader struct {
	Signature    uint32
	MaxEntries   uint8
	CurrentIndex uint8
	FilterMask   uint16
	Ring         shmem.Addr
	NonPfChnl    uint32
	FilterMsg    uint32
	VfFilter     uint32
}

func DecodeListHeader(b []byte) (h ListHeader, err error) {
	if len(b) < ListSize {
		return h, fmt.Errorf("hwrm history list: short, %d bytes",
			len(b))
	}
	le := binary.LittleEndian
	h.Signature = le.Uint32(b[0:])
	h.MaxEntries = b[4]
	h.CurrentIndex = b[5]
	h.FilterMask = le.Uint16(b[6:])
	h.Ring = shmem.Addr(le.Uint32(b[8:]))
	h.NonPfChnl = le.Uint32(b[12:])
	h.FilterMsg = le.Uint32(b[16:])
	h.VfFilter = le.Uint32(b[20:])
	return h, nil
}

func (h ListHeader) Bytes() []byte {
	b := make([]byte, ListSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.Signature)
	b[4] = h.MaxEntries
	b[5] = h.CurrentIndex
	le.PutUint16(b[6:], h.FilterMask)
	le.PutUint32(b[8:], uint32(h.Ring))
	le.PutUint32(b[12:], h.NonPfChnl)
	le.PutUint32(b[16:], h.FilterMsg)
	le.PutUint32(b[20:], h.VfFilter)
	return b
}

func (h ListHeader) Check() error {
	if h.Signature == ListSignature {
		return nil
	}
	return &shmem.SignatureError{
		What: "hwrm history list",
		Want: ListSignature,
		Got:  h.Signature,
	}
}

// FilterMaskBytes is the little endian filter as written to the list.
func FilterMaskBytes(mask uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, mask)
	return b
}

const (
	PayloadSize   = 128
	EntrySize     = 8 + PayloadSize
	RespSignature = 0xbeef

	chnlMask  = 0xff80
	chnlShift = 7
	lenMask   = 0x7f
)

// Entry is one captured message slot in the ring,
//
//	0 time_stamp	u32 100ms ticks
//	4 chnl_and_len	u16 channel<<7 | length
//	6 resp_code	u16 0xbeef for responses
//	8 msg		128 bytes
type Entry struct {
	Timestamp  uint32
	ChnlAndLen uint16
	RespCode   uint16
	Payload    [PayloadSize]byte
}

func DecodeEntry(b []byte) (e Entry, err error) {
	if len(b) < EntrySize {
		return e, fmt.Errorf("hwrm entry: short, %d bytes", len(b))
	}
	le := binary.LittleEndian
	e.Timestamp = le.Uint32(b[0:])
	e.ChnlAndLen = le.Uint16(b[4:])
	e.RespCode = le.Uint16(b[6:])
	copy(e.Payload[:], b[8:EntrySize])
	return e, nil
}

// DecodeEntries splits a ring image into its n slots.
func DecodeEntries(b []byte, n int) ([]Entry, error) {
	if len(b) < n*EntrySize {
		return nil, fmt.Errorf("hwrm ring: short, %d bytes for %d entries",
			len(b), n)
	}
	entries := make([]Entry, n)
	for i := range entries {
		entries[i], _ = DecodeEntry(b[i*EntrySize:])
	}
	return entries, nil
}

func (e Entry) Bytes() []byte {
	b := make([]byte, EntrySize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], e.Timestamp)
	le.PutUint16(b[4:], e.ChnlAndLen)
	le.PutUint16(b[6:], e.RespCode)
	copy(b[8:], e.Payload[:])
	return b
}

func (e Entry) IsResponse() bool { return e.RespCode == RespSignature }
func (e Entry) IsRequest() bool  { return !e.IsResponse() }
func (e Entry) Channel() int     { return int(e.ChnlAndLen&chnlMask) >> chnlShift }
func (e Entry) Length() int      { return int(e.ChnlAndLen & lenMask) }

// ChnlAndLen packs a channel and length.
func ChnlAndLen(channel, length int) uint16 {
	return uint16(channel<<chnlShift)&chnlMask | uint16(length)&lenMask
}

// Time formats the 100ms resolution timestamp as #W#d##:##:##.#
func (e Entry) Time() string { return FormatTimestamp(e.Timestamp) }

func FormatTimestamp(ticks uint32) string {
	const (
		minute = 60 * 10
		hour   = 60 * minute
		day    = 24 * hour
		week   = 7 * day
	)
	t := ticks
	w := t / week
	t %= week
	d := t / day
	t %= day
	h := t / hour
	t %= hour
	m := t / minute
	t %= minute
	return fmt.Sprintf("%dW%dd%02d:%02d:%04.1f", w, d, h, m,
		float64(t)/10.0)
}

func (e Entry) String() string {
	kind := "REQUEST"
	if e.IsResponse() {
		kind = "RESPONSE"
	}
	return fmt.Sprintf("%s chan:%d length:%d time:%s", kind,
		e.Channel(), e.Length(), e.Time())
}
