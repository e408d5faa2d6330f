// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/platinasystems/nitro"
)

func TestApropos(t *testing.T) {
	buf := new(bytes.Buffer)
	nitro.Stdout = buf
	if err := Goes().Main("apropos"); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()),
		"\n") {
		names = append(names, strings.Fields(line)[0])
	}
	if s := strings.Join(names, " "); s != "grc hwrm shmem trace" {
		t.Error("wrong:", s)
	}
}

func TestMan(t *testing.T) {
	for _, name := range []string{"grc", "hwrm", "shmem", "trace"} {
		buf := new(bytes.Buffer)
		nitro.Stdout = buf
		if err := Goes().Main(name, "-man"); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\nOPTIONS\n") {
			t.Errorf("%s: %q", name, buf.String())
		}
	}
}

func TestExit(t *testing.T) {
	var code int
	stderr := new(bytes.Buffer)
	Args, Exit, Stderr = []string{"nitro", "grc"},
		func(c int) { code = c }, stderr
	main()
	if code != 1 || stderr.String() != "nitro: BDF: missing\n" {
		t.Errorf("wrong: %d %q", code, stderr.String())
	}
}
