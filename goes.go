// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package nitro dispatches a multi-command program,
//
//	NAME COMMAND [ ARGS ]...
//	NAME COMMAND -[-]HELPER [ ARGS ]...
//	NAME HELPER [ COMMAND ] [ ARGS ]...
package nitro

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/platinasystems/nitro/cmd"
	"github.com/platinasystems/nitro/lang"
)

// Stdout receives helper text.
var Stdout io.Writer = os.Stdout

type Goes struct {
	NAME    string
	USAGE   string
	APROPOS lang.Alt
	MAN     lang.Alt
	ByName  map[string]cmd.Cmd
}

func (g *Goes) String() string { return g.NAME }

// Names returns the sorted command names.
func (g *Goes) Names() []string {
	names := make([]string, 0, len(g.ByName))
	for name := range g.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Main runs the args[0] command, or a helper, with the remaining args.
func (g *Goes) Main(args ...string) error {
	cmd.Swap(args)
	if len(args) == 0 {
		return g.usage()
	}
	name, args := args[0], args[1:]
	switch name {
	case "apropos":
		return g.apropos(args...)
	case "help":
		return g.help(args...)
	case "man":
		return g.man(args...)
	case "usage":
		return g.usage(args...)
	}
	v, found := g.ByName[name]
	if !found {
		return fmt.Errorf("%s: command not found", name)
	}
	return v.Main(args...)
}
