// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pci

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/platinasystems/memio"
	"golang.org/x/sys/unix"
)

// Resource is a memory mapped BAR.
type Resource struct {
	Path string
	Mem  []byte
}

// MapResource maps the whole of the named resource file read/write and
// shared so that stores reach the device.
func MapResource(path string) (*Resource, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%s: empty resource", path)
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %s", path)
	}
	return &Resource{Path: path, Mem: mem}, nil
}

// Len of the mapping in bytes.
func (r *Resource) Len() int { return len(r.Mem) }

func (r *Resource) ptr(off uintptr) uintptr {
	if off&3 != 0 || off+4 > uintptr(len(r.Mem)) {
		panic(fmt.Errorf("%s: offset %#x outside of %#x byte map",
			r.Path, off, len(r.Mem)))
	}
	return uintptr(unsafe.Pointer(&r.Mem[off]))
}

// Load32 reads the 32-bit register at the byte offset.
func (r *Resource) Load32(off uintptr) uint32 {
	return memio.LoadUint32(r.ptr(off))
}

// Store32 writes the 32-bit register at the byte offset.
func (r *Resource) Store32(off uintptr, v uint32) {
	memio.StoreUint32(r.ptr(off), v)
}

// Close unmaps the resource.
func (r *Resource) Close() error {
	if r.Mem == nil {
		return nil
	}
	err := unix.Munmap(r.Mem)
	r.Mem = nil
	if err != nil {
		return errors.Wrapf(err, "munmap %s", r.Path)
	}
	return nil
}
