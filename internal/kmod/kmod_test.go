// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package kmod

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const procModules = `bnxt_re 192512 0 - Live 0x0000000000000000
ib_uverbs 139264 1 bnxt_re, Live 0x0000000000000000
bnxt_en 270336 1 bnxt_re, Live 0x0000000000000000
devlink 65536 2 bnxt_en,mlx5_core, Live 0x0000000000000000
`

func TestParseModules(t *testing.T) {
	modules, err := ParseModules(strings.NewReader(procModules))
	if err != nil {
		t.Fatal(err)
	}
	if len(modules) != 4 {
		t.Fatal("wrong count:", len(modules))
	}
	want := Module{
		Name:      "devlink",
		Size:      65536,
		Instances: 2,
		UsedBy:    []string{"bnxt_en", "mlx5_core"},
		State:     "Live",
	}
	if !reflect.DeepEqual(modules[3], want) {
		t.Errorf("wrong: %+v", modules[3])
	}
	if modules[0].UsedBy != nil {
		t.Error("wrong:", modules[0].UsedBy)
	}
	if _, err = ParseModules(strings.NewReader("x y\n")); err == nil {
		t.Error("accepted short line")
	}
	if _, err = ParseModules(strings.NewReader("x y 1\n")); err == nil {
		t.Error("accepted bad size")
	}
}

type fakeKernel struct {
	deleted []string
	images  []string
}

func setup(t *testing.T, modules string, builtin ...string) *fakeKernel {
	dir := t.TempDir()
	proc := filepath.Join(dir, "modules")
	if err := ioutil.WriteFile(proc, []byte(modules), 0644); err != nil {
		t.Fatal(err)
	}
	sys := filepath.Join(dir, "sys")
	for _, name := range builtin {
		if err := os.MkdirAll(filepath.Join(sys, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	k := new(fakeKernel)
	oldProc, oldSys, oldDelete, oldInit := ProcModules, SysModule,
		deleteModule, initModule
	ProcModules, SysModule = proc, sys
	deleteModule = func(name string, flags int) error {
		k.deleted = append(k.deleted, name)
		return nil
	}
	initModule = func(image []byte, params string) error {
		k.images = append(k.images, string(image))
		return nil
	}
	t.Cleanup(func() {
		ProcModules, SysModule, deleteModule, initModule = oldProc,
			oldSys, oldDelete, oldInit
	})
	return k
}

func TestRelease(t *testing.T) {
	k := setup(t, procModules, "bnxt_re", "bnxt_en", "devlink")
	dir := t.TempDir()
	image := filepath.Join(dir, "bnxt_en.ko")
	if err := ioutil.WriteFile(image, []byte("ELF"), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := Release(image, Drivers...)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bnxt_re", "bnxt_en", "devlink"}
	if !reflect.DeepEqual(r.Modules, want) {
		t.Error("wrong:", r.Modules)
	}
	if !reflect.DeepEqual(k.deleted, want) {
		t.Error("wrong:", k.deleted)
	}
	if r.Pending() != nil {
		t.Error("wrong:", r.Pending())
	}
	if err = r.Restore(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(k.images, []string{"ELF"}) {
		t.Error("wrong:", k.images)
	}
}

func TestReleaseWithoutReload(t *testing.T) {
	k := setup(t, procModules, "bnxt_re", "bnxt_en", "devlink")
	r, err := Release("", Drivers...)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bnxt_re", "bnxt_en", "devlink"}
	if !reflect.DeepEqual(r.Pending(), want) {
		t.Error("wrong:", r.Pending())
	}
	if err = r.Restore(); err != nil {
		t.Fatal(err)
	}
	if len(k.images) != 0 {
		t.Error("wrong:", k.images)
	}
	var nothing *Released
	if nothing.Pending() != nil || nothing.Restore() != nil {
		t.Error("nil Released")
	}
}

func TestReleaseBuiltin(t *testing.T) {
	k := setup(t, "", "bnxt_en")
	_, err := Release("", Drivers...)
	if err == nil || !strings.Contains(err.Error(), "built-in") {
		t.Fatal("wrong:", err)
	}
	if len(k.deleted) != 0 {
		t.Error("wrong:", k.deleted)
	}
}

func TestReleaseNothing(t *testing.T) {
	k := setup(t, "")
	r, err := Release("", Drivers...)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Modules) != 0 || len(k.deleted) != 0 {
		t.Error("wrong:", r.Modules)
	}
	if err = r.Restore(); err != nil {
		t.Fatal(err)
	}
	if len(k.images) != 0 {
		t.Error("wrong:", k.images)
	}
}

func TestUnloadError(t *testing.T) {
	setup(t, procModules)
	deleteModule = func(string, int) error { return os.ErrPermission }
	err := Unload("bnxt_en", true)
	if !errors.Is(err, os.ErrPermission) {
		t.Fatal("wrong:", err)
	}
	if !strings.HasPrefix(err.Error(), "rmmod bnxt_en") {
		t.Error("wrong:", err)
	}
}

func TestLoadEmpty(t *testing.T) {
	setup(t, "")
	image := filepath.Join(t.TempDir(), "empty.ko")
	if err := ioutil.WriteFile(image, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(image, ""); err == nil {
		t.Fatal("loaded empty image")
	}
}
