// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package sink prints and publishes what the nitro commands read: text
// on a terminal, otherwise one JSON object per line, and optionally JSON
// batches to a redis channel.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/platinasystems/nitro/hwrm"
	"github.com/platinasystems/nitro/redis"
	"github.com/platinasystems/nitro/sch"
	uuid "github.com/satori/go.uuid"
)

// Batch is the published message.
type Batch struct {
	Session string        `json:"session"`
	Device  string        `json:"device"`
	Records []hwrm.Record `json:"records,omitempty"`
	Text    string        `json:"text,omitempty"`
}

type Sink struct {
	W       io.Writer
	JSON    bool
	Session string
	Device  string

	pub  sch.In
	done <-chan error
}

// New prints JSON lines unless w is a terminal.
func New(w io.Writer, device string) *Sink {
	s := &Sink{
		W:       w,
		JSON:    true,
		Session: uuid.NewV4().String(),
		Device:  device,
	}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		s.JSON = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	}
	return s
}

// Publish each batch to the redis channel at addr as well.
func (s *Sink) Publish(addr, channel string) error {
	if len(addr) == 0 && len(channel) == 0 {
		return nil
	}
	if len(addr) == 0 || len(channel) == 0 {
		return fmt.Errorf("-redis and -publish: both or neither")
	}
	conn, err := redis.Connect(addr)
	if err != nil {
		return err
	}
	s.pub, s.done = redis.Publish(conn, channel)
	return nil
}

func (s *Sink) publish(b Batch) error {
	if s.pub == nil {
		return nil
	}
	b.Session, b.Device = s.Session, s.Device
	buf, err := json.Marshal(b)
	if err != nil {
		return err
	}
	s.pub.Print(string(buf))
	return nil
}

func (s *Sink) line(v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.W, "%s\n", buf)
	return err
}

// Records prints then publishes a batch of history records.
func (s *Sink) Records(records []hwrm.Record) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		var err error
		if s.JSON {
			err = s.line(r)
		} else {
			_, err = fmt.Fprintln(s.W, r)
		}
		if err != nil {
			return err
		}
	}
	return s.publish(Batch{Records: records})
}

// Text prints then publishes a fragment of trace text.
func (s *Sink) Text(text string) error {
	if len(text) == 0 {
		return nil
	}
	var err error
	if s.JSON {
		err = s.line(struct {
			Device string `json:"device"`
			Text   string `json:"text"`
		}{s.Device, text})
	} else {
		_, err = io.WriteString(s.W, text)
	}
	if err != nil {
		return err
	}
	return s.publish(Batch{Text: text})
}

// Write prints and publishes p as trace text so that a text stream can
// be copied to the sink.
func (s *Sink) Write(p []byte) (int, error) {
	if err := s.Text(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Value prints v as text or JSON; it isn't published.
func (s *Sink) Value(v fmt.Stringer) error {
	if s.JSON {
		return s.line(v)
	}
	_, err := fmt.Fprintln(s.W, v)
	return err
}

// Close flushes and closes the publisher.
func (s *Sink) Close() error {
	if s.pub == nil {
		return nil
	}
	close(s.pub)
	s.pub = nil
	return <-s.done
}
