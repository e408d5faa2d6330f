// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package kmod unloads the kernel drivers that hold a NIC's BAR and
// reloads them afterwards.
package kmod

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/platinasystems/log"
	"github.com/platinasystems/url"
	"golang.org/x/sys/unix"
)

var (
	ProcModules = "/proc/modules"
	SysModule   = "/sys/module"

	// Drivers that may hold a bnxt BAR, in unload order.
	Drivers = []string{"bnxt_re", "bnxt_en", "bnxtmtdrv", "devlink"}

	deleteModule = unix.DeleteModule
	initModule   = unix.InitModule
)

// Module is a line of /proc/modules.
type Module struct {
	Name      string
	Size      uint64
	Instances int
	UsedBy    []string
	State     string
}

// ParseModules reads the /proc/modules format,
//
//	NAME SIZE INSTANCES USED_BY,... STATE [ADDRESS]
func ParseModules(r io.Reader) ([]Module, error) {
	var modules []Module
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		x := strings.Fields(scanner.Text())
		if len(x) == 0 {
			continue
		}
		if len(x) < 3 {
			return nil, fmt.Errorf("%q: too few fields", scanner.Text())
		}
		m := Module{Name: x[0]}
		var err error
		if m.Size, err = strconv.ParseUint(x[1], 10, 64); err != nil {
			return nil, fmt.Errorf("%s: size: %v", x[0], err)
		}
		if m.Instances, err = strconv.Atoi(x[2]); err != nil {
			return nil, fmt.Errorf("%s: instances: %v", x[0], err)
		}
		if len(x) > 3 && x[3] != "-" {
			m.UsedBy = strings.Split(strings.TrimSuffix(x[3], ","), ",")
		}
		if len(x) > 4 {
			m.State = x[4]
		}
		modules = append(modules, m)
	}
	return modules, scanner.Err()
}

// Modules lists the loaded modules.
func Modules() ([]Module, error) {
	f, err := os.Open(ProcModules)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseModules(f)
}

// Builtin is true if name is compiled into the kernel rather than loaded.
func Builtin(name string, loaded []Module) bool {
	for _, m := range loaded {
		if m.Name == name {
			return false
		}
	}
	_, err := os.Stat(filepath.Join(SysModule, name))
	return err == nil
}

// Unload removes the named module.
func Unload(name string, force bool) error {
	flags := unix.O_NONBLOCK
	if force {
		flags |= unix.O_TRUNC
	}
	if err := deleteModule(name, flags); err != nil {
		return errors.Wrapf(err, "rmmod %s", name)
	}
	return nil
}

// Load inserts the module image read from src, a file name or URL, with
// the space separated params.
func Load(src, params string) error {
	r, err := url.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	image, err := ioutil.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "read %s", src)
	}
	if len(image) == 0 {
		return fmt.Errorf("%s: empty module image", src)
	}
	if err = initModule(image, params); err != nil {
		return errors.Wrapf(err, "insmod %s", src)
	}
	return nil
}

// Released records the drivers unloaded by Release.
type Released struct {
	Modules []string
	// Reload is the image inserted by Restore, if any.
	Reload string
}

// Release unloads those of names that are loaded, in order. A built-in
// driver can't be released so that's an error.
func Release(reload string, names ...string) (*Released, error) {
	loaded, err := Modules()
	if err != nil {
		return nil, err
	}
	r := &Released{Reload: reload}
	for _, name := range names {
		if Builtin(name, loaded) {
			return r, fmt.Errorf("%s: built-in, can't unload", name)
		}
		found := false
		for _, m := range loaded {
			found = found || m.Name == name
		}
		if !found {
			continue
		}
		if err = Unload(name, false); err != nil {
			return r, err
		}
		log.Print("info", "unloaded ", name)
		r.Modules = append(r.Modules, name)
	}
	return r, nil
}

// Pending lists the released drivers that Restore won't bring back.
func (r *Released) Pending() []string {
	if r == nil || len(r.Reload) > 0 {
		return nil
	}
	return r.Modules
}

// Restore inserts the Reload image, if any, after the device is released.
// Without one, the drivers left unloaded are logged.
func (r *Released) Restore() error {
	if pending := r.Pending(); len(pending) > 0 {
		log.Print("warn", "left unloaded: ", strings.Join(pending, " "))
	}
	if r == nil || len(r.Reload) == 0 {
		return nil
	}
	if err := Load(r.Reload, ""); err != nil {
		return err
	}
	log.Print("info", "reloaded ", r.Reload)
	return nil
}
