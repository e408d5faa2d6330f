// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package shmem finds and validates the firmware's shared memory header,
// the root of every other firmware debug structure.
package shmem

import (
	"context"
	"sync"

	"github.com/platinasystems/log"
	"github.com/platinasystems/nitro/internal/poll"
)

// Registers is the GRC access needed to read and write firmware memory;
// *grc.Access satisfies it.
type Registers interface {
	ReadWord(addr uint32) (uint32, error)
	ReadBytes(addr uint32, n int) ([]byte, error)
	WriteBytes(addr uint32, data []byte) error
}

// Locator caches the header pointer and header until invalidated.
type Locator struct {
	regs Registers

	mu     sync.Mutex
	ptr    optAddr
	header optHeader
}

type optAddr struct {
	addr Addr
	ok   bool
}

type optHeader struct {
	h  Header
	ok bool
}

func NewLocator(regs Registers) *Locator {
	return &Locator{regs: regs}
}

// Resolve returns the validated header, fetching it if not cached. A
// signature mismatch drops the cached pointer, waits with the caller's
// policy, and starts over from the fixed pointer location until a valid
// header is published or the context is done. Concurrent callers must
// not share a policy; nil waits the default interval.
func (l *Locator) Resolve(ctx context.Context, p *poll.Policy) (Header,
	error) {
	if p == nil {
		p = poll.Fixed(poll.DefaultInterval)
	}
	for {
		h, err := l.ResolveOnce()
		if err == nil {
			p.Reset()
			return h, nil
		}
		if _, ok := err.(*SignatureError); !ok {
			return h, err
		}
		log.Print("warn", err)
		if err = p.Wait(ctx); err != nil {
			return Header{}, err
		}
	}
}

// ResolveOnce is Resolve without retry; a mismatch invalidates the cache
// and returns *SignatureError.
func (l *Locator) ResolveOnce() (Header, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.header.ok {
		return l.header.h, nil
	}
	if !l.ptr.ok {
		w, err := l.regs.ReadWord(ShmemOffsetLocation.Host())
		if err != nil {
			return Header{}, err
		}
		l.ptr = optAddr{Addr(w), true}
		log.Print("debug", "shmem ptr ", l.ptr.addr)
	}
	b, err := l.regs.ReadBytes(l.ptr.addr.Host(), HeaderSize)
	if err != nil {
		return Header{}, err
	}
	h, err := DecodeHeader(b)
	if err != nil {
		return Header{}, err
	}
	if err = h.Check(); err != nil {
		l.ptr = optAddr{}
		return Header{}, err
	}
	l.header = optHeader{h, true}
	return h, nil
}

// Invalidate the cached header and pointer; the next Resolve fetches
// both again.
func (l *Locator) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ptr = optAddr{}
	l.header = optHeader{}
}

// Pointer returns the cached header location, if any.
func (l *Locator) Pointer() (Addr, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ptr.addr, l.ptr.ok
}
