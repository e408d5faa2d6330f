// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package nic opens a device for the nitro commands: it releases the
// driver if asked, maps the register window, and undoes both on Close.
package nic

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platinasystems/log"
	"github.com/platinasystems/nitro/grc"
	"github.com/platinasystems/nitro/hwrm"
	"github.com/platinasystems/nitro/internal/kmod"
	"github.com/platinasystems/nitro/internal/poll"
	"github.com/platinasystems/nitro/shmem"
	"github.com/platinasystems/nitro/trace"
)

type Options struct {
	BDF    string
	Window int
	// Unload the drivers that hold the BAR before mapping it.
	Unload bool
	// Reload is a driver image inserted on Close, only with Unload.
	Reload   string
	Interval time.Duration
}

// Device is an opened NIC shared by every reader of a command.
type Device struct {
	BDF      string
	Access   *grc.Access
	Locator  *shmem.Locator
	Interval time.Duration

	released *kmod.Released
}

// Open the device described by opt.
func Open(opt Options) (*Device, error) {
	var released *kmod.Released
	if opt.Unload {
		var err error
		released, err = kmod.Release(opt.Reload, kmod.Drivers...)
		if err != nil {
			if rerr := released.Restore(); rerr != nil {
				log.Print("err", rerr)
			}
			return nil, err
		}
	}
	access, err := grc.Open(opt.BDF, opt.Window)
	if err != nil {
		if rerr := released.Restore(); rerr != nil {
			log.Print("err", rerr)
		}
		return nil, err
	}
	d := New(opt.BDF, access, opt.Interval)
	d.released = released
	return d, nil
}

// New wraps an existing Access.
func New(bdf string, access *grc.Access, interval time.Duration) *Device {
	d := &Device{
		BDF:      bdf,
		Access:   access,
		Interval: interval,
	}
	d.Locator = shmem.NewLocator(access)
	return d
}

// Policy returns a new poll policy at the device interval.
func (d *Device) Policy() *poll.Policy { return poll.Fixed(d.Interval) }

// RetryLimit caps the wait between one-off resolution attempts.
const RetryLimit = 2 * time.Second

// Retry returns a new policy that backs off from the device interval to
// RetryLimit, for waiting on firmware that is restarting.
func (d *Device) Retry() *poll.Policy {
	max := RetryLimit
	if d.Interval > max {
		max = d.Interval
	}
	return poll.Exponential(d.Interval, max)
}

func (d *Device) HWRM(filterMask uint16) *hwrm.Reader {
	return hwrm.NewReader(d.Access, d.Locator, d.Policy(), filterMask)
}

func (d *Device) Trace() *trace.Reader {
	return trace.NewReader(d.Access, d.Locator, d.Policy())
}

// Close waits for the in-flight register transaction, unmaps the BAR,
// then restores any released driver.
func (d *Device) Close() error {
	err := d.Access.Close()
	if rerr := d.released.Restore(); err == nil {
		err = rerr
	}
	return err
}

// Context is canceled by SIGINT or SIGTERM.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
