// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package tracecmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/platinasystems/nitro/grc"
	"github.com/platinasystems/nitro/internal/fwsim"
	"github.com/platinasystems/nitro/internal/nic"
	"github.com/platinasystems/nitro/internal/test"
	"github.com/platinasystems/nitro/shmem"
	"github.com/platinasystems/nitro/trace"
)

func command(dev *fwsim.Device) (Command, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return Command{
		Open: func(opt nic.Options) (*nic.Device, error) {
			access, err := grc.New(dev.Bar, opt.Window)
			if err != nil {
				return nil, err
			}
			return nic.New(opt.BDF, access, opt.Interval), nil
		},
		Stdout: buf,
	}, buf
}

func TestSnapshot(t *testing.T) {
	assert := test.Assert{TB: t}
	dev := fwsim.NewDevice(4)
	dev.SetTraceCursor(trace.BufferSize - 5)
	dev.Trace("boot\nlink up\n")
	c, buf := command(dev)
	assert.Nil(c.Main("65:00.0", "-a"))
	var fragment struct {
		Device string `json:"device"`
		Text   string `json:"text"`
	}
	assert.Nil(json.Unmarshal(buf.Bytes(), &fragment))
	assert.Equal(fragment.Device, "65:00.0")
	assert.True(len(fragment.Text) == trace.BufferSize)
	assert.True(strings.HasSuffix(fragment.Text, "boot\nlink up\n"))
}

func TestOnce(t *testing.T) {
	assert := test.Assert{TB: t}
	dev := fwsim.NewDevice(4)
	dev.Trace("boot\n")
	c, buf := command(dev)
	assert.Nil(c.Main("65:00.0", "-interval", "1ms"))
	assert.True(buf.Len() == 0)
}

func TestSignature(t *testing.T) {
	assert := test.Assert{TB: t}
	dev := fwsim.NewDevice(4)
	dev.CorruptTrace()
	c, _ := command(dev)
	assert.Error(c.Main("65:00.0", "-interval", "1ms"), shmem.ErrSignature)
}

func TestErrors(t *testing.T) {
	assert := test.Assert{TB: t}
	c, _ := command(fwsim.NewDevice(4))
	assert.Error(c.Main(), "BDF: missing")
	assert.Error(c.Main("65:00.0", "-f", "-a"),
		"-f and -a: mutually exclusive")
	assert.True(c.Main("65:00.0", "x") != nil)
}
