// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package grccmd

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/nitro/internal/nic"
	"github.com/platinasystems/nitro/lang"
	"github.com/platinasystems/parms"
)

const DfltCount = "1"

type Command struct {
	// Open is nic.Open unless replaced.
	Open   func(nic.Options) (*nic.Device, error)
	Stdout io.Writer
}

func (Command) String() string { return "grc" }

func (Command) Usage() string {
	return `
	grc BDF ADDR [-n COUNT] [-b] [-window N] [-u [-reload URL]]
	grc BDF ADDR -w HEX [-window N] [-u [-reload URL]]`
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "read or write NIC GRC registers",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Read COUNT 32-bit registers from the 4-byte aligned GRC address ADDR
	of the PCI function BDF, through a BAR0 register window.

	BDF is bb:dd.f or dddd:bb:dd.f in hex. ADDR is a number in C syntax,
	e.g. 0xa0000000.

OPTIONS
	-n COUNT	registers, or bytes with -b (default 1)
	-b		read bytes from any address
	-w HEX		write the hex encoded bytes at ADDR, first byte first;
			whole words at an aligned ADDR are stored without
			reading them back first
	-window N	BAR0 window, 0 to 14 (default 14)
	-u		unload the NIC drivers first
	-reload URL	insert this driver image on exit`,
	}
}

func (c Command) Main(args ...string) error {
	flag, args := flags.New(args, "-b", "-u")
	parm, args := parms.New(args, "-n", "-w", "-window", "-reload")
	if len(parm.ByName["-n"]) == 0 {
		parm.ByName["-n"] = DfltCount
	}
	switch len(args) {
	case 0:
		return fmt.Errorf("BDF: missing")
	case 1:
		return fmt.Errorf("ADDR: missing")
	case 2:
	default:
		return fmt.Errorf("%v: unexpected", args[2:])
	}
	addr, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		return fmt.Errorf("%s: %v", args[1], err)
	}
	count, err := strconv.Atoi(parm.ByName["-n"])
	if err != nil || count < 1 {
		return fmt.Errorf("-n %s: invalid", parm.ByName["-n"])
	}
	var data []byte
	if s := parm.ByName["-w"]; len(s) > 0 {
		data, err = hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return fmt.Errorf("-w %s: %v", s, err)
		}
	}
	opt, err := nic.ParseOptions(args[0], parm.ByName["-window"], "",
		parm.ByName["-reload"], flag.ByName["-u"])
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
	switch {
	case data != nil && addr&3 == 0 && len(data)&3 == 0:
		words := make([]uint32, len(data)/4)
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(data[4*i:])
		}
		return d.Access.WriteWords(uint32(addr), words...)
	case data != nil:
		return d.Access.WriteBytes(uint32(addr), data)
	case flag.ByName["-b"]:
		b, err := d.Access.ReadBytes(uint32(addr), count)
		if err != nil {
			return err
		}
		for i := 0; i < len(b); i += 16 {
			end := i + 16
			if end > len(b) {
				end = len(b)
			}
			fmt.Fprintf(w, "%08x: % x\n", uint32(addr)+uint32(i),
				b[i:end])
		}
	default:
		words, err := d.Access.ReadWords(uint32(addr), count)
		if err != nil {
			return err
		}
		for i, word := range words {
			fmt.Fprintf(w, "%08x: %08x\n", uint32(addr)+uint32(4*i),
				word)
		}
	}
	return nil
}
