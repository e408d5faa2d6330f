// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package sch provides the string channel that carries trace text from a
// reader to its consumers.
package sch

import (
	"fmt"
	"io"
)

type In chan<- string
type Out <-chan string

// New makes a string channel with the given buffer depth or unbuffered if 0.
func New(depth int) (In, Out) {
	sch := make(chan string, depth)
	return In(sch), Out(sch)
}

func (in In) Print(args ...interface{}) {
	in <- fmt.Sprint(args...)
}

// WriteTo copies each string to w until the channel is closed or a write
// fails.
func (out Out) WriteTo(w io.Writer) (n int64, err error) {
	for s := range out {
		var i int
		i, err = io.WriteString(w, s)
		n += int64(i)
		if err != nil {
			break
		}
	}
	return
}
