// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package fwsim

import (
	"fmt"
	"sync"

	"github.com/platinasystems/nitro/shmem"
)

// Op is one recorded register transaction.
type Op struct {
	Write bool
	Addr  uint32
	Len   int
}

func (op Op) String() string {
	rw := "read"
	if op.Write {
		rw = "write"
	}
	return fmt.Sprintf("%s %#08x/%d", rw, op.Addr, op.Len)
}

// Recorder logs the transactions made through it.
type Recorder struct {
	shmem.Registers

	mu  sync.Mutex
	ops []Op
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *Recorder) ReadWord(addr uint32) (uint32, error) {
	r.record(Op{false, addr, 4})
	return r.Registers.ReadWord(addr)
}

func (r *Recorder) ReadBytes(addr uint32, n int) ([]byte, error) {
	r.record(Op{false, addr, n})
	return r.Registers.ReadBytes(addr, n)
}

func (r *Recorder) WriteBytes(addr uint32, data []byte) error {
	r.record(Op{true, addr, len(data)})
	return r.Registers.WriteBytes(addr, data)
}

// Ops returns the recorded transactions.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Count of recorded transactions at addr.
func (r *Recorder) Count(addr uint32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Addr == addr {
			n++
		}
	}
	return n
}
