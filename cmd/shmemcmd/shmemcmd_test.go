// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package shmemcmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/platinasystems/nitro/grc"
	"github.com/platinasystems/nitro/internal/fwsim"
	"github.com/platinasystems/nitro/internal/nic"
	"github.com/platinasystems/nitro/internal/test"
	"github.com/platinasystems/nitro/shmem"
)

func TestMainJSON(t *testing.T) {
	assert := test.Assert{TB: t}
	dev := fwsim.NewDevice(4)
	buf := new(bytes.Buffer)
	c := Command{
		Open: func(opt nic.Options) (*nic.Device, error) {
			access, err := grc.New(dev.Bar, opt.Window)
			if err != nil {
				return nil, err
			}
			return nic.New(opt.BDF, access, opt.Interval), nil
		},
		Stdout: buf,
	}
	assert.Nil(c.Main("65:00.0", "-interval", "1ms"))
	var h shmem.Header
	assert.Nil(json.Unmarshal(buf.Bytes(), &h))
	assert.DeepEqual(h, dev.Header)

	assert.Error(c.Main(), "BDF: missing")
	assert.True(c.Main("65:00.0", "-reload", "bnxt_en.ko") != nil)
}

func TestHeaderText(t *testing.T) {
	assert := test.Assert{TB: t}
	dev := fwsim.NewDevice(4)
	s := dev.Header.String()
	assert.Match(s, "(?m)^signature: +0xbeef1234$")
	assert.Match(s, "(?m)^fw_version: +1.2.3.4$")
	assert.Match(s, "(?m)^hwrm_history_offset: +0x20002000$")
}
