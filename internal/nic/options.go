// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package nic

import (
	"fmt"
	"strconv"
	"time"

	"github.com/platinasystems/nitro/grc"
)

const (
	DfltWindow   = "14"
	DfltInterval = "100ms"
)

// ParseOptions from command parameters; empty strings take the defaults.
func ParseOptions(bdf, window, interval, reload string,
	unload bool) (Options, error) {
	opt := Options{BDF: bdf, Unload: unload, Reload: reload}
	if len(window) == 0 {
		window = DfltWindow
	}
	if len(interval) == 0 {
		interval = DfltInterval
	}
	w, err := strconv.Atoi(window)
	if err != nil || w < 0 || w >= grc.Windows {
		return opt, fmt.Errorf("-window %s: must be 0 to %d", window,
			grc.Windows-1)
	}
	opt.Window = w
	if opt.Interval, err = time.ParseDuration(interval); err != nil {
		return opt, fmt.Errorf("-interval %s: %v", interval, err)
	}
	if opt.Interval <= 0 {
		return opt, fmt.Errorf("-interval %s: must be positive", interval)
	}
	if len(reload) > 0 && !unload {
		return opt, fmt.Errorf("-reload: requires -u")
	}
	return opt, nil
}
