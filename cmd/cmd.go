// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package cmd is the interface of every nitro command.
package cmd

import (
	"strings"

	"github.com/platinasystems/nitro/lang"
)

var Helpers = map[string]struct{}{
	"apropos": struct{}{},
	"help":    struct{}{},
	"man":     struct{}{},
	"usage":   struct{}{},
}

// Swap hyphen prefaced helper flags with command, so,
//
//	COMMAND -[-]HELPER [ARGS]...
//
// becomes
//
//	HELPER COMMAND [ARGS]...
//
// and
//
//	-[-]HELPER [ARGS]...
//
// becomes
//
//	HELPER [ARGS]...
//
// "-h" is an alias of "-help".
func Swap(args []string) {
	helper := func(s string) (string, bool) {
		if !strings.HasPrefix(s, "-") {
			return "", false
		}
		opt := strings.TrimLeft(s, "-")
		if opt == "h" {
			opt = "help"
		}
		_, found := Helpers[opt]
		return opt, found
	}
	n := len(args)
	if n > 0 {
		if opt, found := helper(args[0]); found {
			args[0] = opt
			return
		}
	}
	if n > 1 {
		if opt, found := helper(args[1]); found {
			args[1] = args[0]
			args[0] = opt
		}
	}
}

type Cmd interface {
	Apropos() lang.Alt
	Main(...string) error
	// String returns the command name.
	String() string
	Usage() string
	/* Optional
	Man() lang.Alt
	*/
}
