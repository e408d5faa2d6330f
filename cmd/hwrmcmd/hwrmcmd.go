// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package hwrmcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/nitro/hwrm"
	"github.com/platinasystems/nitro/internal/nic"
	"github.com/platinasystems/nitro/internal/sink"
	"github.com/platinasystems/nitro/lang"
	"github.com/platinasystems/parms"
)

const DfltFilter = "f000"

type Command struct {
	// Open is nic.Open unless replaced.
	Open   func(nic.Options) (*nic.Device, error)
	Stdout io.Writer
}

func (Command) String() string { return "hwrm" }

func (Command) Usage() string {
	return `
	hwrm BDF [-f | -a] [-filter HEX] [-i TYPES | -e TYPES] [-interval D]
		[-redis ADDR -publish CHANNEL] [-window N] [-u [-reload URL]]`
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "print NIC firmware HWRM message history",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Print the HWRM requests and responses that the firmware captures in
	its history ring. Without -f or -a, print those captured during one
	interval.

	Output is text on a terminal, otherwise one JSON record per line.

OPTIONS
	-f		follow, print new messages until interrupted
	-a		print the whole ring, oldest first
	-filter HEX	channel capture mask written to the firmware
			(default f000)
	-i TYPES	only these comma separated request types
	-e TYPES	all but these request types
	-interval D	poll interval (default 100ms)
	-redis ADDR	redis server, host:port or socket path
	-publish CHANNEL
			also publish JSON batches to this redis channel
	-window N	BAR0 window, 0 to 14 (default 14)
	-u		unload the NIC drivers first
	-reload URL	insert this driver image on exit`,
	}
}

// ParseTypes of a comma separated list, e.g. "0x17,0x18,25".
func ParseTypes(s string) (map[uint16]bool, error) {
	types := make(map[uint16]bool)
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if len(field) == 0 {
			continue
		}
		u, err := strconv.ParseUint(field, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", field, err)
		}
		types[uint16(u)] = true
	}
	return types, nil
}

// Filter returns the records with type in types if include, otherwise
// those without.
func Filter(records []hwrm.Record, types map[uint16]bool,
	include bool) []hwrm.Record {
	if types == nil {
		return records
	}
	var filtered []hwrm.Record
	for _, r := range records {
		if types[r.Type()] == include {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (c Command) Main(args ...string) error {
	flag, args := flags.New(args, "-f", "-a", "-u")
	parm, args := parms.New(args, "-filter", "-i", "-e", "-interval",
		"-redis", "-publish", "-window", "-reload")
	if len(parm.ByName["-filter"]) == 0 {
		parm.ByName["-filter"] = DfltFilter
	}
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
	mask, err := strconv.ParseUint(strings.TrimPrefix(parm.ByName["-filter"],
		"0x"), 16, 16)
	if err != nil {
		return fmt.Errorf("-filter %s: %v", parm.ByName["-filter"], err)
	}
	var types map[uint16]bool
	include := len(parm.ByName["-i"]) > 0
	switch {
	case include && len(parm.ByName["-e"]) > 0:
		return fmt.Errorf("-i and -e: mutually exclusive")
	case include:
		types, err = ParseTypes(parm.ByName["-i"])
	case len(parm.ByName["-e"]) > 0:
		types, err = ParseTypes(parm.ByName["-e"])
	}
	if err != nil {
		return err
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

	r := d.HWRM(uint16(mask))
	if flag.ByName["-a"] {
		records, err := r.Snapshot(ctx)
		if err != nil {
			return err
		}
		return out.Records(Filter(records, types, include))
	}

	run := func(follow bool) error {
		batches := make(chan []hwrm.Record, 4)
		errc := make(chan error, 1)
		go func() {
			errc <- r.Run(ctx, batches, follow)
			close(batches)
		}()
		var werr error
		for records := range batches {
			if werr == nil {
				werr = out.Records(Filter(records, types, include))
				if werr != nil {
					cancel()
				}
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
		// the first pass only sets the baseline
		if err = d.Policy().Wait(ctx); err == nil {
			err = run(false)
		}
	}
	if err == context.Canceled {
		err = nil
	}
	return err
}
