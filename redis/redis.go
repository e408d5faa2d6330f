// Copyright 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

// Package redis forwards sink output to a redis channel.
package redis

import (
	"strings"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/platinasystems/nitro/sch"
)

const Timeout = 500 * time.Millisecond

// Connect to a redis server at a host:port or, if addr is a path, a unix
// socket.
func Connect(addr string) (redis.Conn, error) {
	network := "tcp"
	if strings.HasPrefix(addr, "/") {
		network = "unix"
	}
	return redis.Dial(network, addr,
		redis.DialConnectTimeout(Timeout),
		redis.DialReadTimeout(Timeout),
		redis.DialWriteTimeout(Timeout))
}

// Publish messages to the named redis channel. Messages sent through the
// returned channel are forwarded to the redis server until the channel is
// closed. The connection is closed after the last message is flushed, then
// the first error, if any, is sent to done before it's closed.
//
//	pub, done := redis.Publish(conn, NAME)
//	pub.Print("hello world")
//	close(pub)
//	err := <-done
func Publish(conn redis.Conn, name string) (sch.In, <-chan error) {
	in, out := sch.New(16)
	done := make(chan error, 1)
	go func(name string, out sch.Out, conn redis.Conn) {
		var err error
		flush := func() {
			if _, t := conn.Do(""); err == nil {
				err = t
			}
		}
		defer func() {
			if t := conn.Close(); err == nil {
				err = t
			}
			if err != nil {
				done <- err
			}
			close(done)
		}()

		for {
			// block until next message
			msg, opened := <-out
			if !opened {
				return
			}
			conn.Send("PUBLISH", name, msg)

		drain: // drain buffer of up to 64 total messages
			for n := 1; n < 64; n++ {
				select {
				case msg, opened = <-out:
					if !opened {
						flush()
						return
					}
					conn.Send("PUBLISH", name, msg)
				default:
					break drain
				}
			}
			flush()
		}
	}(name, out, conn)
	return in, done
}
