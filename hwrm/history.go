// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hwrm streams the firmware's circular history of HWRM requests
// and responses.
//
// The firmware captures messages on the channels enabled by the list
// header's filter mask into a ring of MaxEntries slots. There is no
// producer index to trust, so the newest slot is the one with the latest
// timestamp. A Reader remembers the newest slot of its previous poll and
// emits the slots written since.
package hwrm

import (
	"context"
	"sync"

	"github.com/platinasystems/log"
	"github.com/platinasystems/nitro/internal/poll"
	"github.com/platinasystems/nitro/shmem"
)

// State of a Reader's streaming session.
type State int

const (
	Idle      State = iota // no baseline cursor
	Primed                 // baseline set, nothing emitted
	Streaming              // emitting new slots
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Primed:
		return "primed"
	case Streaming:
		return "streaming"
	}
	return "unknown"
}

// NewestIndex returns the slot with the greatest timestamp, the highest
// such slot on ties, or -1 for an empty ring.
func NewestIndex(entries []Entry) int {
	newest := -1
	var max uint32
	for i, e := range entries {
		if newest < 0 || e.Timestamp >= max {
			max = e.Timestamp
			newest = i
		}
	}
	return newest
}

// Delta returns the slots written after last through newest of an n slot
// ring, in the order written.
func Delta(last, newest, n int) []int {
	var indices []int
	if newest == last {
		return indices
	}
	if newest > last {
		for i := last + 1; i <= newest; i++ {
			indices = append(indices, i)
		}
		return indices
	}
	for i := last + 1; i < n; i++ {
		indices = append(indices, i)
	}
	for i := 0; i <= newest; i++ {
		indices = append(indices, i)
	}
	return indices
}

// Reader streams new history entries of one device.
type Reader struct {
	regs       shmem.Registers
	loc        *shmem.Locator
	poll       *poll.Policy
	filterMask uint16

	mu    sync.Mutex
	state State
	last  int
}

// NewReader with a nil policy polls at the default interval.
func NewReader(regs shmem.Registers, loc *shmem.Locator, p *poll.Policy,
	filterMask uint16) *Reader {
	if p == nil {
		p = poll.Fixed(poll.DefaultInterval)
	}
	return &Reader{
		regs:       regs,
		loc:        loc,
		poll:       p,
		filterMask: filterMask,
	}
}

// State of the session.
func (r *Reader) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset drops the baseline cursor.
func (r *Reader) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Idle
	r.last = 0
}

// List writes the filter mask then reads and validates the list header.
// On signature mismatch it invalidates the shared memory pointer and this
// reader's cursor, waits, and retries from resolution.
func (r *Reader) List(ctx context.Context) (ListHeader, error) {
	for {
		h, err := r.loc.Resolve(ctx, r.poll)
		if err != nil {
			return ListHeader{}, err
		}
		at := h.HwrmHistoryOffset.Host()
		err = r.regs.WriteBytes(at+FilterMaskOffset,
			FilterMaskBytes(r.filterMask))
		if err != nil {
			return ListHeader{}, err
		}
		b, err := r.regs.ReadBytes(at, ListSize)
		if err != nil {
			return ListHeader{}, err
		}
		list, err := DecodeListHeader(b)
		if err != nil {
			return ListHeader{}, err
		}
		if err = list.Check(); err == nil {
			return list, nil
		}
		log.Print("warn", err, "; resetting history")
		r.loc.Invalidate()
		r.Reset()
		if err = r.poll.Wait(ctx); err != nil {
			return ListHeader{}, err
		}
	}
}

// Ring reads every slot of the list's ring.
func (r *Reader) Ring(list ListHeader) ([]Entry, error) {
	n := int(list.MaxEntries)
	b, err := r.regs.ReadBytes(list.Ring.Host(), n*EntrySize)
	if err != nil {
		return nil, err
	}
	return DecodeEntries(b, n)
}

// scan reads the list and every slot, returning the newest slot or -1.
func (r *Reader) scan(ctx context.Context) ([]Entry, int, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, -1, err
	}
	entries, err := r.Ring(list)
	if err != nil {
		return nil, -1, err
	}
	return entries, NewestIndex(entries), nil
}

// prime sets the baseline cursor of an idle session.
func (r *Reader) prime(newest int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Idle {
		return false
	}
	r.state = Primed
	r.last = newest
	return true
}

// advance moves the cursor to newest and returns the records after the
// previous cursor.
func (r *Reader) advance(entries []Entry, newest int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	var records []Record
	for _, i := range Delta(r.last, newest, len(entries)) {
		records = append(records, NewRecord(i, len(entries), entries[i]))
	}
	if len(records) > 0 {
		r.state = Streaming
	}
	r.last = newest
	return records
}

// Poll reads the ring once. The first poll of a session only sets the
// baseline and returns primed; later polls return the records written
// since the previous poll, none if the newest slot is unchanged.
func (r *Reader) Poll(ctx context.Context) (records []Record, primed bool,
	err error) {
	entries, newest, err := r.scan(ctx)
	if err != nil || newest < 0 {
		return
	}
	if r.prime(newest) {
		return nil, true, nil
	}
	return r.advance(entries, newest), false, nil
}

// Run polls until the context is done, sending each non-empty batch of
// new records to the sink.
//
// Without follow, Run stops after one poll past the baseline. If this
// call had to set the baseline, that poll is read but not emitted, so a
// fresh Reader sends nothing until Run is called again; the second call
// emits what was written since the first.
func (r *Reader) Run(ctx context.Context, sink chan<- []Record,
	follow bool) error {
	wasPrimed := r.State() != Idle
	for {
		entries, newest, err := r.scan(ctx)
		if err != nil {
			return err
		}
		if newest < 0 {
			if err = r.poll.Wait(ctx); err != nil {
				return err
			}
			continue
		}
		if r.prime(newest) {
			continue
		}
		if !follow && !wasPrimed {
			return nil
		}
		records := r.advance(entries, newest)
		if len(records) > 0 {
			r.poll.Reset()
			select {
			case sink <- records:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if !follow {
			return nil
		}
		if len(records) == 0 {
			if err = r.poll.Wait(ctx); err != nil {
				return err
			}
		}
	}
}

// Snapshot returns the whole ring, oldest first, without touching the
// streaming cursor.
func (r *Reader) Snapshot(ctx context.Context) ([]Record, error) {
	entries, newest, err := r.scan(ctx)
	if err != nil || newest < 0 {
		return nil, err
	}
	n := len(entries)
	records := make([]Record, 0, n)
	for k := 1; k <= n; k++ {
		i := (newest + k) % n
		records = append(records, NewRecord(i, n, entries[i]))
	}
	return records, nil
}
