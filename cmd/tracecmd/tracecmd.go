// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package tracecmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/nitro/internal/nic"
	"github.com/platinasystems/nitro/internal/sink"
	"github.com/platinasystems/nitro/lang"
	"github.com/platinasystems/nitro/sch"
	"github.com/platinasystems/parms"
)

type Command struct {
	// Open is nic.Open unless replaced.
	Open   func(nic.Options) (*nic.Device, error)
	Stdout io.Writer
}

func (Command) String() string { return "trace" }

func (Command) Usage() string {
	return `
	trace BDF [-f | -a] [-interval D] [-redis ADDR -publish CHANNEL]
		[-window N] [-u [-reload URL]]`
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "print the NIC firmware trace log",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Print the text that the firmware writes to its circular trace log.
	Without -f or -a, print what's written during one interval.

	Output is text on a terminal, otherwise one JSON fragment per line.

OPTIONS
	-f		follow, print new text until interrupted
	-a		print the whole log, oldest first
	-interval D	poll interval (default 100ms)
	-redis ADDR	redis server, host:port or socket path
	-publish CHANNEL
			also publish JSON fragments to this redis channel
	-window N	BAR0 window, 0 to 14 (default 14)
	-u		unload the NIC drivers first
	-reload URL	insert this driver image on exit`,
	}
}

func (c Command) Main(args ...string) error {
	flag, args := flags.New(args, "-f", "-a", "-u")
	parm, args := parms.New(args, "-interval", "-redis", "-publish",
		"-window", "-reload")
	switch len(args) {
	case 0:
		return fmt.Errorf("BDF: missing")
	case 1:
	default:
		return fmt.Errorf("%v: unexpected", args[1:])
	}
	if flag.ByName["-f"] && flag.ByName["-a"] {
		return fmt.Errorf("-f and -a: mutually exclusive")
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
	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}
	out := sink.New(w, d.BDF)
	if err = out.Publish(parm.ByName["-redis"],
		parm.ByName["-publish"]); err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Print("warn", "publish: ", err)
		}
	}()
	ctx, cancel := nic.Context(context.Background())
	defer cancel()

	r := d.Trace()
	if flag.ByName["-a"] {
		text, err := r.Snapshot(ctx)
		if err != nil {
			return err
		}
		return out.Text(text)
	}

	run := func(follow bool) error {
		in, texts := sch.New(16)
		errc := make(chan error, 1)
		go func() {
			errc <- r.Run(ctx, in, follow)
			close(in)
		}()
		_, werr := texts.WriteTo(out)
		if werr != nil {
			cancel()
			for range texts {
			}
		}
		if err := <-errc; werr == nil {
			werr = err
		}
		return werr
	}
	if flag.ByName["-f"] {
		err = run(true)
	} else if err = run(false); err == nil {
		if err = d.Policy().Wait(ctx); err == nil {
			err = run(false)
		}
	}
	if err == context.Canceled {
		err = nil
	}
	return err
}
