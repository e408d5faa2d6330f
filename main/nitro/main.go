// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// nitro reads and streams NIC firmware debug state through BAR0.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/platinasystems/nitro"
	"github.com/platinasystems/nitro/cmd"
	"github.com/platinasystems/nitro/cmd/grccmd"
	"github.com/platinasystems/nitro/cmd/hwrmcmd"
	"github.com/platinasystems/nitro/cmd/shmemcmd"
	"github.com/platinasystems/nitro/cmd/tracecmd"
	"github.com/platinasystems/nitro/lang"
)

var Args = os.Args
var Exit = os.Exit
var Stderr io.Writer = os.Stderr

func Goes() *nitro.Goes {
	return &nitro.Goes{
		NAME: "nitro",
		APROPOS: lang.Alt{
			lang.EnUS: "NIC firmware introspection",
		},
		MAN: lang.Alt{
			lang.EnUS: `
DESCRIPTION
	Read the registers, shared memory header, HWRM message history and
	trace log of a NIC's firmware through a BAR0 register window.

	The BAR can't be mapped while a driver holds it; use -u to unload
	the drivers first and -reload URL to insert one on exit.

SEE ALSO
	nitro apropos [COMMAND], nitro man COMMAND`,
		},
		ByName: map[string]cmd.Cmd{
			"grc":   grccmd.Command{},
			"hwrm":  hwrmcmd.Command{},
			"shmem": shmemcmd.Command{},
			"trace": tracecmd.Command{},
		},
	}
}

func main() {
	if err := Goes().Main(Args[1:]...); err != nil {
		fmt.Fprintln(Stderr, "nitro:", err)
		Exit(1)
	}
}
