// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package nitro

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/platinasystems/nitro/cmd"
	"github.com/platinasystems/nitro/lang"
)

// Usager is anything with a synopsis, e.g. the program or a command.
type Usager interface {
	Usage() string
}

type maner interface {
	Man() lang.Alt
}

var section = struct {
	name, synopsis lang.Alt
}{
	name:     lang.Alt{lang.EnUS: "NAME"},
	synopsis: lang.Alt{lang.EnUS: "SYNOPSIS"},
}

// Usage is the one line, or indented block, synopsis of v.
func Usage(v Usager) string {
	return "usage:\t" + strings.TrimSpace(v.Usage())
}

func (g *Goes) Usage() string {
	if len(g.USAGE) > 0 {
		return g.USAGE
	}
	return strings.Replace(`
	NAME COMMAND [ ARGS ]...
	NAME COMMAND -[-]HELPER [ ARGS ]...
	NAME HELPER [ COMMAND ] [ ARGS ]...

	HELPER := { apropos | help | man | usage }`, "NAME", g.NAME, -1)
}

func (g *Goes) Apropos() lang.Alt {
	if g.APROPOS != nil {
		return g.APROPOS
	}
	return lang.Alt{lang.EnUS: "NIC firmware introspection"}
}

func (g *Goes) Man() lang.Alt {
	if g.MAN != nil {
		return g.MAN
	}
	return lang.Alt{lang.EnUS: fmt.Sprintf(`
SEE ALSO
	%[1]s apropos [COMMAND], %[1]s man COMMAND`, g.NAME)}
}

// commands named by the leading args; an unknown first name is an error,
// an unknown later name ends the list.
func (g *Goes) commands(args []string) ([]cmd.Cmd, error) {
	var cmds []cmd.Cmd
	for i, name := range args {
		v, found := g.ByName[name]
		if !found {
			if i == 0 {
				return nil, fmt.Errorf("%s: not found", name)
			}
			break
		}
		cmds = append(cmds, v)
	}
	return cmds, nil
}

func (g *Goes) apropos(args ...string) error {
	if len(args) == 0 {
		args = g.Names()
	}
	cmds, err := g.commands(args)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(Stdout, 16, 8, 0, ' ', 0)
	for _, v := range cmds {
		fmt.Fprintf(tw, "%s\t%s\n", v, v.Apropos())
	}
	return tw.Flush()
}

func (g *Goes) help(args ...string) error {
	return g.usage(args...)
}

func (g *Goes) usage(args ...string) error {
	var u Usager = g
	if len(args) > 0 {
		cmds, err := g.commands(args[:1])
		if err != nil {
			return err
		}
		u = cmds[0]
	}
	_, err := fmt.Fprintln(Stdout, Usage(u))
	return err
}

func (g *Goes) man(args ...string) error {
	cmds, err := g.commands(args)
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		cmds = []cmd.Cmd{g}
	}
	for i, v := range cmds {
		if i > 0 {
			fmt.Fprintln(Stdout)
		}
		fmt.Fprintf(Stdout, "%s\n\t%s - %s\n\n%s\n\t%s\n", section.name,
			v, v.Apropos(), section.synopsis,
			strings.TrimSpace(v.Usage()))
		m, ok := v.(maner)
		if !ok {
			continue
		}
		text := m.Man().String()
		if !strings.HasPrefix(text, "\n") {
			text = "\n" + text
		}
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		fmt.Fprint(Stdout, text)
	}
	return nil
}
