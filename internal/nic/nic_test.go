// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package nic

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/platinasystems/nitro/grc"
	"github.com/platinasystems/nitro/hwrm"
	"github.com/platinasystems/nitro/internal/fwsim"
	"github.com/platinasystems/nitro/internal/kmod"
	"github.com/platinasystems/nitro/internal/pci"
	"github.com/platinasystems/nitro/internal/test"
	"github.com/platinasystems/nitro/sch"
)

func TestOpen(t *testing.T) {
	assert := test.Assert{TB: t}
	root := t.TempDir()
	dir := filepath.Join(root, "0000:65:00.0")
	assert.Nil(os.MkdirAll(dir, 0755))
	assert.Nil(ioutil.WriteFile(filepath.Join(dir, "resource0"),
		make([]byte, 0x10000), 0600))
	proc := filepath.Join(root, "modules")
	assert.Nil(ioutil.WriteFile(proc, nil, 0644))
	oldSysfs, oldProc, oldSys := pci.SysfsRoot, kmod.ProcModules,
		kmod.SysModule
	pci.SysfsRoot, kmod.ProcModules, kmod.SysModule = root, proc,
		filepath.Join(root, "module")
	defer func() {
		pci.SysfsRoot, kmod.ProcModules, kmod.SysModule = oldSysfs,
			oldProc, oldSys
	}()

	d, err := Open(Options{
		BDF:    "65:00.0",
		Window: grc.DefaultWindow,
		Unload: true,
	})
	assert.Nil(err)
	assert.True(d.Access.Window() == grc.DefaultWindow)
	assert.Nil(d.Close())
	_, err = d.Access.ReadWord(0)
	assert.Error(err, grc.ErrClosed)

	_, err = Open(Options{BDF: "66:00.0", Window: grc.DefaultWindow})
	var merr *grc.MappingError
	assert.True(errors.As(err, &merr))
	assert.Match(err.Error(), "release the device driver")
}

func TestReaders(t *testing.T) {
	assert := test.Assert{TB: t}
	dev := fwsim.NewDevice(4)
	d := New("0000:65:00.0", dev.Access, time.Millisecond)
	h, err := d.Locator.Resolve(context.Background(), nil)
	assert.Nil(err)
	assert.True(h.HwrmHistoryOffset == fwsim.HistoryAddr)
	_, err = d.HWRM(0xf000).List(context.Background())
	assert.Nil(err)
	assert.True(dev.FilterMask() == 0xf000)
	s, err := d.Trace().Snapshot(context.Background())
	assert.Nil(err)
	assert.True(len(s) > 0)
	assert.Nil(d.Close())
}

func TestRetry(t *testing.T) {
	assert := test.Assert{TB: t}
	d := New("0000:65:00.0", nil, 10*time.Millisecond)
	p := d.Retry()
	assert.True(p.Backoff.Min == 10*time.Millisecond)
	assert.True(p.Backoff.Max == RetryLimit)
	d.Interval = 5 * time.Second
	assert.True(d.Retry().Backoff.Max == d.Interval)
}

// Both readers of one device wait out an invalid shared memory header
// together, then stream from the same register window.
func TestConcurrentReaders(t *testing.T) {
	assert := test.Assert{TB: t}
	dev := fwsim.NewDevice(4)
	dev.Capture(0, 1)
	dev.Capture(1, 2)
	dev.CorruptHeader()
	d := New("0000:65:00.0", dev.Access, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hr, tr := d.HWRM(0xf000), d.Trace()
	records := make(chan []hwrm.Record, 16)
	in, texts := sch.New(16)
	errs := make(chan error, 2)
	go func() { errs <- hr.Run(ctx, records, true) }()
	go func() { errs <- tr.Run(ctx, in, true) }()

	time.Sleep(50 * time.Millisecond)
	dev.PublishHeader()
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, primed := tr.Cursor()
		if primed && hr.State() != hwrm.Idle {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("readers never primed")
		}
		time.Sleep(time.Millisecond)
	}
	dev.Capture(2, 3)
	dev.Trace("link up\n")
	select {
	case batch := <-records:
		assert.True(len(batch) == 1 && batch[0].Index == 2)
	case <-time.After(5 * time.Second):
		t.Fatal("no history")
	}
	select {
	case text := <-texts:
		assert.Equal(text, "link up\n")
	case <-time.After(5 * time.Second):
		t.Fatal("no trace")
	}
	cancel()
	for i := 0; i < 2; i++ {
		assert.Error(<-errs, context.Canceled)
	}
	assert.True(dev.FilterMask() == 0xf000)
}

func TestContext(t *testing.T) {
	ctx, cancel := Context(context.Background())
	defer cancel()
	syscall.Kill(os.Getpid(), syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("not canceled by SIGTERM")
	}
}
