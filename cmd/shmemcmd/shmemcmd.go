// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package shmemcmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/nitro/internal/nic"
	"github.com/platinasystems/nitro/internal/sink"
	"github.com/platinasystems/nitro/lang"
	"github.com/platinasystems/parms"
)

type Command struct {
	// Open is nic.Open unless replaced.
	Open   func(nic.Options) (*nic.Device, error)
	Stdout io.Writer
}

func (Command) String() string { return "shmem" }

func (Command) Usage() string {
	return "shmem BDF [-window N] [-interval D] [-u [-reload URL]]"
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "print the NIC firmware shared memory header",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Find and print the firmware's shared memory header, which locates
	the HWRM history and the trace log. An invalid header is retried,
	first after one interval then backing off to 2s, until the firmware
	publishes one or the command is interrupted.

	Output is text on a terminal, otherwise JSON.

OPTIONS
	-window N	BAR0 window, 0 to 14 (default 14)
	-interval D	first retry interval (default 100ms)
	-u		unload the NIC drivers first
	-reload URL	insert this driver image on exit`,
	}
}

func (c Command) Main(args ...string) error {
	flag, args := flags.New(args, "-u")
	parm, args := parms.New(args, "-window", "-interval", "-reload")
	switch len(args) {
	case 0:
		return fmt.Errorf("BDF: missing")
	case 1:
	default:
		return fmt.Errorf("%v: unexpected", args[1:])
	}
	opt, err := nic.ParseOptions(args[0], parm.ByName["-window"],
		parm.ByName["-interval"], parm.ByName["-reload"],
		flag.ByName["-u"])
	if err != nil {
		return err
	}
	open := c.Open
	if open == nil {
		open = nic.Open
	}
	d, err := open(opt)
	if err != nil {
		return err
	}
	defer d.Close()
	ctx, cancel := nic.Context(context.Background())
	defer cancel()
	h, err := d.Locator.Resolve(ctx, d.Retry())
	if err != nil {
		return err
	}
	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}
	return sink.New(w, d.BDF).Value(h)
}
