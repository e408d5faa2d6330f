// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package shmem

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const Signature = 0xbeef1234

// Header is the firmware's shared memory header. All fields are little
// endian at these byte offsets,
//
//	 0 signature		u32
//	 4 size			u16
//	 6 rsvd1		u16
//	 8 trace_buf_offset	u32 firmware address
//	12 fw_version		u32
//	16 bc_global_data_offset u32
//	20 rsvd2		u16
//	22 flags		u8
//	23 utc_offset		s8
//	24 hwrm_version		u32
//	28 asic_version		u32
//	32 trace_buf_size	u16
//	34 ext_bss_size		u16
//	36 fw_heartbeat		u32
//	40 hwrm_history_offset	u32 firmware address
type Header struct {
	Signature          uint32
	Size               uint16
	TraceBufOffset     Addr
	FwVersion          uint32
	BcGlobalDataOffset uint32
	Flags              uint8
	UtcOffset          int8
	HwrmVersion        uint32
	AsicVersion        uint32
	TraceBufSize       uint16
	ExtBssSize         uint16
	FwHeartbeat        uint32
	HwrmHistoryOffset  Addr
}

const HeaderSize = 44

var ErrSignature = errors.New("signature mismatch")

// SignatureError reports a firmware structure that failed its signature
// check and so can't be trusted.
type SignatureError struct {
	What      string
	Want, Got uint32
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s: %v, expected %#08x, received %#08x",
		e.What, ErrSignature, e.Want, e.Got)
}

func (e *SignatureError) Is(target error) bool { return target == ErrSignature }

// DecodeHeader from at least HeaderSize bytes.
func DecodeHeader(b []byte) (h Header, err error) {
	if len(b) < HeaderSize {
		return h, fmt.Errorf("shmem header: short, %d bytes", len(b))
	}
	le := binary.LittleEndian
	h.Signature = le.Uint32(b[0:])
	h.Size = le.Uint16(b[4:])
	h.TraceBufOffset = Addr(le.Uint32(b[8:]))
	h.FwVersion = le.Uint32(b[12:])
	h.BcGlobalDataOffset = le.Uint32(b[16:])
	h.Flags = b[22]
	h.UtcOffset = int8(b[23])
	h.HwrmVersion = le.Uint32(b[24:])
	h.AsicVersion = le.Uint32(b[28:])
	h.TraceBufSize = le.Uint16(b[32:])
	h.ExtBssSize = le.Uint16(b[34:])
	h.FwHeartbeat = le.Uint32(b[36:])
	h.HwrmHistoryOffset = Addr(le.Uint32(b[40:]))
	return h, nil
}

// Bytes encodes the header, reserved fields zero.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.Signature)
	le.PutUint16(b[4:], h.Size)
	le.PutUint32(b[8:], uint32(h.TraceBufOffset))
	le.PutUint32(b[12:], h.FwVersion)
	le.PutUint32(b[16:], h.BcGlobalDataOffset)
	b[22] = h.Flags
	b[23] = byte(h.UtcOffset)
	le.PutUint32(b[24:], h.HwrmVersion)
	le.PutUint32(b[28:], h.AsicVersion)
	le.PutUint16(b[32:], h.TraceBufSize)
	le.PutUint16(b[34:], h.ExtBssSize)
	le.PutUint32(b[36:], h.FwHeartbeat)
	le.PutUint32(b[40:], uint32(h.HwrmHistoryOffset))
	return b
}

// Valid if the signature matches.
func (h Header) Valid() bool { return h.Signature == Signature }

// Check returns a *SignatureError unless Valid.
func (h Header) Check() error {
	if h.Valid() {
		return nil
	}
	return &SignatureError{
		What: "shared memory header",
		Want: Signature,
		Got:  h.Signature,
	}
}

func (h Header) String() string {
	return fmt.Sprintf(`signature:           %#08x
size:                %d
trace_buf_offset:    %s
fw_version:          %d.%d.%d.%d
bc_global_data:      %#08x
flags:               %#02x
utc_offset:          %d
hwrm_version:        %d.%d.%d
asic_version:        %#08x
trace_buf_size:      %dKB
ext_bss_size:        %d
fw_heartbeat:        %d
hwrm_history_offset: %s`,
		h.Signature, h.Size, h.TraceBufOffset,
		h.FwVersion>>24, h.FwVersion>>16&0xff, h.FwVersion>>8&0xff,
		h.FwVersion&0xff,
		h.BcGlobalDataOffset, h.Flags, h.UtcOffset,
		h.HwrmVersion>>24, h.HwrmVersion>>16&0xff, h.HwrmVersion>>8&0xff,
		h.AsicVersion, h.TraceBufSize, h.ExtBssSize, h.FwHeartbeat,
		h.HwrmHistoryOffset)
}
