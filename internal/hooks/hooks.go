/*
SPDX-FileCopyrightText: Copyright 2025 the virtstack contributors
SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package hooks dispatches pluggable lifecycle scripts. Operators drop
// executables under <root>/<event>/ and the agent runs them, in name
// order, with the domain XML on stdin and the VM config in the
// environment.
package hooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	logger "sigs.k8s.io/controller-runtime/pkg/log"
)

// Hook event names. The directory layout under the hooks root follows
// these names.
const (
	EventBeforeVMHibernate         = "before_vm_hibernate"
	EventBeforeVMMigrateSource     = "before_vm_migrate_source"
	EventBeforeDeviceMigrateSource = "before_device_migrate_source"
)

// Dispatcher runs lifecycle hooks for VM events.
type Dispatcher interface {
	// BeforeVMHibernate runs before the VM state is saved to a file.
	BeforeVMHibernate(domXML string, conf map[string]any) error

	// BeforeVMMigrateSource runs on the source before an outbound
	// migration starts.
	BeforeVMMigrateSource(domXML string, conf map[string]any) error

	// BeforeDeviceMigrateSource runs per custom device before an
	// outbound migration starts.
	BeforeDeviceMigrateSource(deviceXML string, conf map[string]any, custom map[string]string) error
}

// ScriptDispatcher runs hook executables from a directory tree.
type ScriptDispatcher struct {
	Root string
}

var _ Dispatcher = &ScriptDispatcher{}

func NewScriptDispatcher(root string) *ScriptDispatcher {
	return &ScriptDispatcher{Root: root}
}

func (d *ScriptDispatcher) BeforeVMHibernate(domXML string, conf map[string]any) error {
	return d.dispatch(EventBeforeVMHibernate, domXML, conf, nil)
}

func (d *ScriptDispatcher) BeforeVMMigrateSource(domXML string, conf map[string]any) error {
	return d.dispatch(EventBeforeVMMigrateSource, domXML, conf, nil)
}

func (d *ScriptDispatcher) BeforeDeviceMigrateSource(deviceXML string, conf map[string]any, custom map[string]string) error {
	return d.dispatch(EventBeforeDeviceMigrateSource, deviceXML, conf, custom)
}

func (d *ScriptDispatcher) dispatch(event, payloadXML string, conf map[string]any, custom map[string]string) error {
	dir := filepath.Join(d.Root, event)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read hook dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	confJSON, err := json.Marshal(conf)
	if err != nil {
		return fmt.Errorf("failed to encode vm config for hook %s: %w", event, err)
	}

	log := logger.Log.WithName("hooks").WithValues("event", event)
	for _, name := range names {
		cmd := exec.Command(filepath.Join(dir, name))
		cmd.Stdin = bytes.NewReader([]byte(payloadXML))
		cmd.Env = append(os.Environ(), "VM_CONF="+string(confJSON))
		for k, v := range custom {
			cmd.Env = append(cmd.Env, "HOOK_CUSTOM_"+k+"="+v)
		}
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("hook %s/%s failed: %w: %s", event, name, err, out)
		}
		log.V(1).Info("hook executed", "script", name)
	}
	return nil
}

// NopDispatcher ignores all hook events.
type NopDispatcher struct{}

var _ Dispatcher = NopDispatcher{}

func (NopDispatcher) BeforeVMHibernate(string, map[string]any) error     { return nil }
func (NopDispatcher) BeforeVMMigrateSource(string, map[string]any) error { return nil }
func (NopDispatcher) BeforeDeviceMigrateSource(string, map[string]any, map[string]string) error {
	return nil
}
