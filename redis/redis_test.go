// Copyright 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style license described in the
// LICENSE file.

package redis

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

type conn struct {
	mu      sync.Mutex
	sent    []string
	flushed []string
	closed  bool
	err     error
}

func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *conn) Err() error { return nil }

func (c *conn) Do(cmd string, args ...interface{}) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cmd != "" {
		return nil, errors.New("unexpected " + cmd)
	}
	c.flushed = append(c.flushed, c.sent...)
	c.sent = nil
	return nil, c.err
}

func (c *conn) Send(cmd string, args ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cmd != "PUBLISH" || len(args) != 2 || args[0] != "nitro" {
		return errors.New("unexpected " + cmd)
	}
	c.sent = append(c.sent, args[1].(string))
	return nil
}

func (c *conn) Flush() error                 { return nil }
func (c *conn) Receive() (interface{}, error) { return nil, nil }

func TestPublish(t *testing.T) {
	c := new(conn)
	pub, done := Publish(c, "nitro")
	pub.Print("hello ", "world")
	pub.Print(42)
	close(pub)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if want := []string{"hello world", "42"}; !reflect.DeepEqual(c.flushed,
		want) {
		t.Error("wrong:", c.flushed)
	}
	if len(c.sent) != 0 || !c.closed {
		t.Error("not flushed and closed")
	}
}

func TestPublishError(t *testing.T) {
	c := &conn{err: errors.New("connection reset")}
	pub, done := Publish(c, "nitro")
	pub.Print("x")
	close(pub)
	if err := <-done; err == nil || err.Error() != "connection reset" {
		t.Fatal("wrong:", err)
	}
}
