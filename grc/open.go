// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package grc

import (
	"fmt"

	"github.com/platinasystems/log"
	"github.com/platinasystems/nitro/internal/pci"
)

// MappingError is returned by Open when BAR0 can't be mapped, most often
// because a loaded driver holds the device.
type MappingError struct {
	Path string
	Err  error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s: unable to map the PCI BAR: %v; "+
		"release the device driver first (e.g. -u to unload it) "+
		"then retry", e.Path, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// Open maps BAR0 of the PCI function named by bdf, "bb:dd.f" or
// "dddd:bb:dd.f", and returns an Access through the given window.
func Open(bdf string, window int) (*Access, error) {
	addr, err := pci.ParseAddr(bdf)
	if err != nil {
		return nil, err
	}
	fn := addr.ResourcePath(0)
	res, err := pci.MapResource(fn)
	if err != nil {
		log.Print("crit", "unable to map ", fn,
			"; unload the driver then map the PCI BAR")
		return nil, &MappingError{Path: fn, Err: err}
	}
	if need := WindowRegister + (window+1)*WindowSize; res.Len() < need {
		res.Close()
		return nil, &MappingError{
			Path: fn,
			Err: fmt.Errorf("%#x byte BAR too small for window %d",
				res.Len(), window),
		}
	}
	a, err := New(res, window)
	if err != nil {
		res.Close()
		return nil, err
	}
	a.close = res.Close
	return a, nil
}
