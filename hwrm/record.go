// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwrm

import (
	"encoding/binary"
	"fmt"
)

// Record is a decoded history entry handed to the sink. It's a copy and
// holds no reference to device memory.
type Record struct {
	Index     int    `json:"index"`
	RingSize  int    `json:"ring_size"`
	Request   bool   `json:"request"`
	Channel   int    `json:"channel"`
	Length    int    `json:"length"`
	Timestamp uint32 `json:"timestamp"`
	Time      string `json:"time"`
	Payload   []byte `json:"payload"`
}

// NewRecord decodes ring slot i of n.
func NewRecord(i, n int, e Entry) Record {
	payload := make([]byte, PayloadSize)
	copy(payload, e.Payload[:])
	return Record{
		Index:     i,
		RingSize:  n,
		Request:   e.IsRequest(),
		Channel:   e.Channel(),
		Length:    e.Length(),
		Timestamp: e.Timestamp,
		Time:      e.Time(),
		Payload:   payload,
	}
}

func (r Record) u16(off int) uint16 {
	if len(r.Payload) < off+2 {
		return 0
	}
	return binary.LittleEndian.Uint16(r.Payload[off:])
}

// Type is the HWRM req_type from the request or response header.
func (r Record) Type() uint16 {
	if r.Request {
		return r.u16(0)
	}
	return r.u16(2)
}

// SeqID is the HWRM seq_id that pairs a response with its request.
func (r Record) SeqID() uint16 { return r.u16(4) }

// ErrorCode of a response; zero for requests.
func (r Record) ErrorCode() uint16 {
	if r.Request {
		return 0
	}
	return r.u16(0)
}

func (r Record) String() string {
	kind := "REQUEST"
	if !r.Request {
		kind = "RESPONSE"
	}
	s := fmt.Sprintf("%s chan:%d length:%d time:%s type:%#04x seq:%d",
		kind, r.Channel, r.Length, r.Time, r.Type(), r.SeqID())
	if !r.Request {
		s += fmt.Sprintf(" error:%d", r.ErrorCode())
	}
	return s
}
