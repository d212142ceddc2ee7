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

// Package virt holds the VM handle shared between the agent's
// subsystems. The handle carries the persisted-config map, the
// lifecycle status and access to the guest agent; the hypervisor
// domain itself is reached through the libvirt layer.
package virt

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/virtstack/kvm-host-agent/internal/libvirt"
)

// VM lifecycle statuses observable through the status map.
const (
	StatusUp              = "Up"
	StatusDown            = "Down"
	StatusPaused          = "Paused"
	StatusMigrationSource = "Migration Source"
	StatusSavingState     = "Saving State"
)

// StatsPauser gates statistics sampling for a single VM.
type StatsPauser interface {
	Pause(vmID string)
	Cont(vmID string)
}

// CustomDevice is a device carrying operator-defined hook properties.
type CustomDevice struct {
	DeviceXML string
	Custom    map[string]string
}

// Options wires a VM handle to its collaborators.
type Options struct {
	Hypervisor libvirt.Interface
	GuestAgent GuestAgent
	Stats      StatsPauser

	// LiveStats returns the current runtime stats of the VM (guest
	// agent data, session state, IPs). May be nil.
	LiveStats func() map[string]any

	// Persist stores the VM config map durably. May be nil.
	Persist func(conf map[string]any) error

	// ReviveTicket refreshes the display ticket with the given
	// validity window. May be nil.
	ReviveTicket func(window time.Duration) error

	CustomDevices []CustomDevice
	StartedAt     time.Time
	Log           logr.Logger
}

// VM is the host-agent handle of one virtual machine.
type VM struct {
	ID string

	hv            libvirt.Interface
	guestAgent    GuestAgent
	stats         StatsPauser
	liveStats     func() map[string]any
	persist       func(conf map[string]any) error
	reviveTicket  func(window time.Duration) error
	customDevices []CustomDevice
	startedAt     time.Time
	log           logr.Logger

	mu          sync.Mutex
	conf        map[string]any
	lastStatus  string
	pauseReason string
	exitCode    int
	exitReason  ExitReason
	exitMessage string
}

// NewVM builds a VM handle around the given persisted config map. The
// map is owned by the VM afterwards.
func NewVM(id string, conf map[string]any, opts Options) *VM {
	if conf == nil {
		conf = make(map[string]any)
	}
	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	return &VM{
		ID:            id,
		hv:            opts.Hypervisor,
		guestAgent:    opts.GuestAgent,
		stats:         opts.Stats,
		liveStats:     opts.LiveStats,
		persist:       opts.Persist,
		reviveTicket:  opts.ReviveTicket,
		customDevices: opts.CustomDevices,
		startedAt:     startedAt,
		log:           opts.Log.WithValues("vmId", id),
		conf:          conf,
		lastStatus:    StatusUp,
	}
}

// Log returns the VM-scoped logger.
func (v *VM) Log() logr.Logger { return v.log }

// StartedAt returns the wall time the VM was started on this host.
func (v *VM) StartedAt() time.Time { return v.startedAt }

// GuestAgent returns the guest agent channel, which may be nil.
func (v *VM) GuestAgent() GuestAgent { return v.guestAgent }

// CustomDevices lists the devices carrying custom hook properties.
func (v *VM) CustomDevices() []CustomDevice { return v.customDevices }

// Status returns a copy of the persisted config map with the current
// lifecycle status merged in.
func (v *VM) Status() map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()

	status := make(map[string]any, len(v.conf)+1)
	for k, val := range v.conf {
		status[k] = val
	}
	status["status"] = v.lastStatus
	return status
}

// GetStats returns the current runtime stats of the VM.
func (v *VM) GetStats() map[string]any {
	if v.liveStats == nil {
		return map[string]any{}
	}
	return v.liveStats()
}

// LastStatus returns the current lifecycle status.
func (v *VM) LastStatus() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastStatus
}

// SetLastStatus overrides the lifecycle status.
func (v *VM) SetLastStatus(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastStatus = status
}

// ConfValue reads one key from the persisted config map.
func (v *VM) ConfValue(key string) (any, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.conf[key]
	return val, ok
}

// SetConfValue writes one key of the persisted config map.
func (v *VM) SetConfValue(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conf[key] = value
}

// DeleteConfValue removes one key from the persisted config map.
func (v *VM) DeleteConfValue(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.conf, key)
}

// ConfCopy returns a shallow copy of the persisted config map.
func (v *VM) ConfCopy() map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()
	conf := make(map[string]any, len(v.conf))
	for k, val := range v.conf {
		conf[k] = val
	}
	return conf
}

// SaveState persists the current config map.
func (v *VM) SaveState() error {
	if v.persist == nil {
		return nil
	}
	return v.persist(v.ConfCopy())
}

// MemSizeMiB returns the configured guest memory in MiB.
func (v *VM) MemSizeMiB() int {
	val, ok := v.ConfValue("memSize")
	if !ok {
		return 0
	}
	switch mem := val.(type) {
	case int:
		return mem
	case int64:
		return int(mem)
	case float64:
		return int(mem)
	case string:
		n, err := strconv.Atoi(mem)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// Pause suspends the guest and records the reason.
func (v *VM) Pause(reason string) error {
	if err := v.hv.Suspend(v.ID); err != nil {
		return fmt.Errorf("failed to pause vm: %w", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastStatus = StatusPaused
	v.pauseReason = reason
	v.log.Info("vm paused", "reason", reason)
	return nil
}

// Cont resumes a paused guest.
func (v *VM) Cont() error {
	if err := v.hv.Resume(v.ID); err != nil {
		return fmt.Errorf("failed to resume vm: %w", err)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastStatus = StatusUp
	v.pauseReason = ""
	v.log.Info("vm resumed")
	return nil
}

// SetDownStatus marks the VM Down with the given exit triple.
func (v *VM) SetDownStatus(exitCode int, reason ExitReason, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastStatus = StatusDown
	v.exitCode = exitCode
	v.exitReason = reason
	v.exitMessage = message
	v.log.Info("vm is down", "exitCode", exitCode, "reason", reason.String(), "message", message)
}

// ExitStatus returns the exit triple recorded by SetDownStatus.
func (v *VM) ExitStatus() (int, ExitReason, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.exitCode, v.exitReason, v.exitMessage
}

// PauseStatsCollection stops statistics sampling for this VM.
func (v *VM) PauseStatsCollection() {
	if v.stats != nil {
		v.stats.Pause(v.ID)
	}
}

// ContStatsCollection resumes statistics sampling for this VM.
func (v *VM) ContStatsCollection() {
	if v.stats != nil {
		v.stats.Cont(v.ID)
	}
}

// ReviveTicket refreshes the display ticket so a connected client can
// follow the VM to its new home within the given window.
func (v *VM) ReviveTicket(window time.Duration) error {
	if v.reviveTicket == nil {
		return nil
	}
	return v.reviveTicket(window)
}
