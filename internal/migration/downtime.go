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

package migration

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/virtstack/kvm-host-agent/internal/libvirt"
	"github.com/virtstack/kvm-host-agent/internal/virt"
)

// downtimeRamp steps the hypervisor's max-allowed downtime from a
// small initial value up to the requested ceiling while the transfer
// runs, trading convergence speed for guest pauses only when needed.
// Its lifetime is strictly contained in the driver's transfer phase.
type downtimeRamp struct {
	vm  *virt.VM
	hv  libvirt.Interface
	log logr.Logger

	downtimeMs int
	steps      int
	stepWait   time.Duration

	stopCh chan struct{}
	done   chan struct{}
}

// startDowntimeRamp launches the ramp worker. The total ramp window is
// proportional to the guest memory: delayPerGibMs per GiB, with a
// 2 GiB floor. The computed window is an approximate budget, not a
// tight schedule.
func startDowntimeRamp(vm *virt.VM, hv libvirt.Interface, downtimeMs, steps, delayPerGibMs int, log logr.Logger) *downtimeRamp {
	memMiB := vm.MemSizeMiB()
	if memMiB < 2048 {
		memMiB = 2048
	}
	totalMs := (delayPerGibMs*memMiB + 1023) / 1024

	t := &downtimeRamp{
		vm:         vm,
		hv:         hv,
		log:        log,
		downtimeMs: downtimeMs,
		steps:      steps,
		stepWait:   time.Duration(totalMs/steps) * time.Millisecond,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *downtimeRamp) run() {
	defer close(t.done)
	t.log.V(1).Info("migration downtime thread started")

	for i := 0; i < t.steps; i++ {
		select {
		case <-t.stopCh:
			t.log.V(1).Info("migration downtime thread cancelled")
			return
		case <-time.After(t.stepWait):
		}

		downtime := t.downtimeMs * (i + 1) / t.steps
		t.log.V(1).Info("setting migration downtime", "downtime", downtime)
		if err := t.hv.SetMaxDowntime(t.vm.ID, uint64(downtime)); err != nil {
			t.log.Error(err, "failed to set migration downtime")
		}
	}

	t.log.V(1).Info("migration downtime thread exiting")
}

// Cancel stops the ramp. It must be called at most once (the driver has
// a single call site); the worker exits without issuing further
// downtime updates.
func (t *downtimeRamp) Cancel() {
	t.log.V(1).Info("canceling migration downtime thread")
	close(t.stopCh)
}
