// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sink

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/platinasystems/nitro/hwrm"
	"github.com/platinasystems/nitro/internal/test"
	"github.com/platinasystems/nitro/redis"
	"github.com/platinasystems/nitro/sch"
)

type conn struct {
	mu   sync.Mutex
	msgs []string
}

func (c *conn) Close() error { return nil }
func (c *conn) Err() error   { return nil }
func (c *conn) Flush() error { return nil }

func (c *conn) Do(string, ...interface{}) (interface{}, error) {
	return nil, nil
}

func (c *conn) Send(cmd string, args ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, args[1].(string))
	return nil
}

func (c *conn) Receive() (interface{}, error) { return nil, nil }

func records() []hwrm.Record {
	var e hwrm.Entry
	e.ChnlAndLen = hwrm.ChnlAndLen(1, 24)
	e.Timestamp = 10
	return []hwrm.Record{hwrm.NewRecord(2, 4, e)}
}

func TestJSONLines(t *testing.T) {
	assert := test.Assert{TB: t}
	buf := new(bytes.Buffer)
	s := New(buf, "0000:65:00.0")
	assert.True(s.JSON)
	assert.True(len(s.Session) == 36)
	assert.Nil(s.Records(records()))
	assert.Nil(s.Text("link up\n"))
	assert.Nil(s.Text(""))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(len(lines) == 2)
	var r hwrm.Record
	assert.Nil(json.Unmarshal([]byte(lines[0]), &r))
	assert.True(r.Index == 2 && r.Request && r.Time == "0W0d00:00:01.0")
	assert.Equal(lines[1], `{"device":"0000:65:00.0","text":"link up\n"}`)
	assert.Nil(s.Close())
}

func TestText(t *testing.T) {
	assert := test.Assert{TB: t}
	buf := new(bytes.Buffer)
	s := New(buf, "0000:65:00.0")
	s.JSON = false
	assert.Nil(s.Records(records()))
	assert.Nil(s.Text("link up\n"))
	assert.Match(buf.String(), "^REQUEST chan:1 length:24 time:0W0d00:00:01.0 .*\nlink up\n$")
}

func TestWriteTo(t *testing.T) {
	assert := test.Assert{TB: t}
	buf := new(bytes.Buffer)
	s := New(buf, "0000:65:00.0")
	s.JSON = false
	in, out := sch.New(2)
	in <- "link "
	in <- "up\n"
	close(in)
	n, err := out.WriteTo(s)
	assert.Nil(err)
	assert.True(n == int64(len("link up\n")))
	assert.Equal(buf.String(), "link up\n")
}

func TestPublish(t *testing.T) {
	assert := test.Assert{TB: t}
	c := new(conn)
	s := New(new(bytes.Buffer), "0000:65:00.0")
	s.pub, s.done = redis.Publish(c, "nitro")
	assert.Nil(s.Records(records()))
	assert.Nil(s.Text("boot\n"))
	assert.Nil(s.Close())
	assert.True(len(c.msgs) == 2)
	var b Batch
	assert.Nil(json.Unmarshal([]byte(c.msgs[0]), &b))
	assert.Equal(b.Session, s.Session)
	assert.Equal(b.Device, "0000:65:00.0")
	assert.True(len(b.Records) == 1 && b.Records[0].Index == 2)
	assert.Nil(json.Unmarshal([]byte(c.msgs[1]), &b))
	assert.Equal(b.Text, "boot\n")
}

func TestPublishArgs(t *testing.T) {
	assert := test.Assert{TB: t}
	s := New(new(bytes.Buffer), "0000:65:00.0")
	assert.Nil(s.Publish("", ""))
	assert.True(s.Publish("localhost:6379", "") != nil)
	assert.True(s.Publish("", "nitro") != nil)
}
