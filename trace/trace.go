// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package trace streams the firmware's circular debug trace log.
//
// The log is a DebugSize region in firmware SRAM: a Header whose Index is
// the firmware address of the next byte to be written, followed by a
// BufferSize byte ring of text.
package trace

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/platinasystems/log"
	"github.com/platinasystems/nitro/internal/poll"
	"github.com/platinasystems/nitro/sch"
	"github.com/platinasystems/nitro/shmem"
)

const (
	Signature  = 0xabcd1234
	HeaderSize = 8
	DebugSize  = 0x8000
	BufferSize = DebugSize - HeaderSize
)

// ErrCursor is a write cursor outside of the ring.
var ErrCursor = errors.New("trace cursor out of range")

// Header precedes the ring,
//
//	0 signature	u32
//	4 trace_idx	u32 firmware address of the write cursor
type Header struct {
	Signature uint32
	Index     shmem.Addr
}

func DecodeHeader(b []byte) (h Header, err error) {
	if len(b) < HeaderSize {
		return h, fmt.Errorf("trace header: short, %d bytes", len(b))
	}
	h.Signature = binary.LittleEndian.Uint32(b[0:])
	h.Index = shmem.Addr(binary.LittleEndian.Uint32(b[4:]))
	return h, nil
}

func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:], h.Signature)
	binary.LittleEndian.PutUint32(b[4:], uint32(h.Index))
	return b
}

func (h Header) Check() error {
	if h.Signature == Signature {
		return nil
	}
	return &shmem.SignatureError{
		What: "trace header",
		Want: Signature,
		Got:  h.Signature,
	}
}

// Span is the half open byte range [Start, End) of the ring.
type Span struct {
	Start, End int
}

// Delta returns the ring spans written from last up to next in a ring of
// size bytes, in the order written.
func Delta(last, next, size int) []Span {
	switch {
	case next == last:
		return nil
	case next > last:
		return []Span{{last, next}}
	}
	spans := []Span{{last, size}}
	if next > 0 {
		spans = append(spans, Span{0, next})
	}
	return spans
}

// Reader streams new trace text from one device.
type Reader struct {
	regs shmem.Registers
	loc  *shmem.Locator
	poll *poll.Policy

	mu   sync.Mutex
	last struct {
		offset int
		ok     bool
	}
}

// NewReader with a nil policy polls at the default interval.
func NewReader(regs shmem.Registers, loc *shmem.Locator,
	p *poll.Policy) *Reader {
	if p == nil {
		p = poll.Fixed(poll.DefaultInterval)
	}
	return &Reader{regs: regs, loc: loc, poll: p}
}

// Reset drops the baseline cursor.
func (r *Reader) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last.offset, r.last.ok = 0, false
}

// Cursor is the ring offset of the previous poll, if any.
func (r *Reader) Cursor() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last.offset, r.last.ok
}

// cursor reads the header once and returns the ring's host address and
// the write offset. Without strict, the shared memory header is resolved
// with retry.
func (r *Reader) cursor(ctx context.Context, strict bool) (uint32, int,
	error) {
	var h shmem.Header
	var err error
	if strict {
		h, err = r.loc.ResolveOnce()
	} else {
		h, err = r.loc.Resolve(ctx, r.poll)
	}
	if err != nil {
		return 0, 0, err
	}
	at := h.TraceBufOffset.Host()
	b, err := r.regs.ReadBytes(at, HeaderSize)
	if err != nil {
		return 0, 0, err
	}
	th, err := DecodeHeader(b)
	if err != nil {
		return 0, 0, err
	}
	if err = th.Check(); err != nil {
		return 0, 0, err
	}
	ring := at + HeaderSize
	offset := int(th.Index.Host()) - int(ring)
	if offset < 0 || offset >= BufferSize {
		return 0, 0, fmt.Errorf("%w: %s", ErrCursor, th.Index)
	}
	return ring, offset, nil
}

// Cursor errors are transient while following: the cached pointers are
// dropped and the header fetched again after a wait.
func (r *Reader) retry(ctx context.Context, err error) error {
	var serr *shmem.SignatureError
	if !errors.As(err, &serr) && !errors.Is(err, ErrCursor) {
		return err
	}
	log.Print("warn", err)
	r.loc.Invalidate()
	r.Reset()
	return r.poll.Wait(ctx)
}

func (r *Reader) read(ring uint32, spans []Span) (string, error) {
	var text []byte
	for _, span := range spans {
		b, err := r.regs.ReadBytes(ring+uint32(span.Start),
			span.End-span.Start)
		if err != nil {
			return "", err
		}
		text = append(text, b...)
	}
	return string(text), nil
}

// Run polls until the context is done, sending each new fragment of text
// to the sink. The first poll sets the baseline. Without follow, Run
// returns after the next poll, and a bad signature is returned instead of
// retried.
func (r *Reader) Run(ctx context.Context, sink sch.In, follow bool) error {
	for {
		ring, offset, err := r.cursor(ctx, !follow)
		if err != nil {
			if !follow {
				return err
			}
			if err = r.retry(ctx, err); err != nil {
				return err
			}
			continue
		}
		r.mu.Lock()
		last, primed := r.last.offset, r.last.ok
		r.last.offset, r.last.ok = offset, true
		r.mu.Unlock()
		if !primed {
			continue
		}
		spans := Delta(last, offset, BufferSize)
		if len(spans) > 0 {
			text, err := r.read(ring, spans)
			if err != nil {
				return err
			}
			r.poll.Reset()
			select {
			case sink <- text:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if !follow {
			return nil
		}
		if len(spans) == 0 {
			if err = r.poll.Wait(ctx); err != nil {
				return err
			}
		}
	}
}

// Snapshot returns the whole ring starting at the write cursor, i.e.
// oldest text first, without touching the streaming cursor.
func (r *Reader) Snapshot(ctx context.Context) (string, error) {
	ring, offset, err := r.cursor(ctx, true)
	if err != nil {
		return "", err
	}
	spans := []Span{{offset, BufferSize}}
	if offset > 0 {
		spans = append(spans, Span{0, offset})
	}
	return r.read(ring, spans)
}
