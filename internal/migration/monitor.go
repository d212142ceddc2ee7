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
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/virtstack/kvm-host-agent/internal/libvirt"
	"github.com/virtstack/kvm-host-agent/internal/virt"
)

// progressMonitor samples the hypervisor job while a migration runs.
// It aborts the job on wall-clock overrun or when the remaining-data
// low watermark stops improving, and exposes a progress percentage
// that stays at or below 99 while data remains; a sample with nothing
// remaining reports 100.
type progressMonitor struct {
	vm  *virt.VM
	hv  libvirt.Interface
	log logr.Logger

	interval        time.Duration
	maxTimePerGiB   int
	progressTimeout time.Duration
	startTime       time.Time

	progress atomic.Int32

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// startProgressMonitor launches the monitor worker. startTime is the
// wall time the driver began the migration, so time already spent in
// the preparation phases counts against the overall budget.
func startProgressMonitor(vm *virt.VM, hv libvirt.Interface, interval time.Duration,
	maxTimePerGiB int, progressTimeout time.Duration, startTime time.Time, log logr.Logger) *progressMonitor {

	m := &progressMonitor{
		vm:              vm,
		hv:              hv,
		log:             log,
		interval:        interval,
		maxTimePerGiB:   maxTimePerGiB,
		progressTimeout: progressTimeout,
		startTime:       startTime,
		stopCh:          make(chan struct{}),
		done:            make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *progressMonitor) run() {
	defer close(m.done)
	m.log.V(1).Info("starting migration monitor thread")

	memMiB := m.vm.MemSizeMiB()
	migrationMaxTime := time.Duration((m.maxTimePerGiB*memMiB+1023)/1024) * time.Second
	lastProgressTime := m.startTime
	var lowmark uint64
	haveLowmark := false

	for {
		select {
		case <-m.stopCh:
			m.log.V(1).Info("migration monitor thread exiting")
			return
		case <-time.After(m.interval):
		}

		info, err := m.hv.JobInfo(m.vm.ID)
		if err != nil {
			m.log.Error(err, "failed to sample migration job info")
			continue
		}

		abort := false
		now := time.Now()
		switch {
		case migrationMaxTime > 0 && now.Sub(m.startTime) > migrationMaxTime:
			m.log.Info("The migration took longer than the configured maximum time "+
				"for migrations. The migration will be aborted.",
				"elapsed", now.Sub(m.startTime), "migrationMaxTime", migrationMaxTime)
			abort = true
		case !haveLowmark || lowmark > info.DataRemaining:
			lowmark = info.DataRemaining
			haveLowmark = true
			lastProgressTime = now
		case now.Sub(lastProgressTime) > m.progressTimeout:
			// Migration is stuck, abort
			m.log.Info("Migration is stuck: hasn't progressed, aborting.",
				"stalled", now.Sub(lastProgressTime))
			abort = true
		}

		if abort {
			if err := m.hv.AbortJob(m.vm.ID); err != nil {
				m.log.Error(err, "failed to abort the stuck migration")
			}
			m.Stop()
			return
		}

		if info.DataRemaining > lowmark {
			m.log.Info("Migration stalling: remaining bytes exceed the low watermark",
				"remaining", info.DataRemaining, "lowmark", lowmark)
			migrationStallsTotal.WithLabelValues(m.vm.ID).Inc()
		}

		if info.Type == 0 {
			// stale sample, no job running yet
			continue
		}

		progress := calcProgress(info.DataRemaining, info.DataTotal)
		if progress > int(m.progress.Load()) {
			m.progress.Store(int32(progress))
			migrationProgress.WithLabelValues(m.vm.ID).Set(float64(progress))
		}

		m.log.Info("Migration progress",
			"elapsed", time.Duration(info.TimeElapsedMs)*time.Millisecond,
			"progress", m.progress.Load())
	}
}

// Progress returns the last observed progress percentage.
func (m *progressMonitor) Progress() int {
	return int(m.progress.Load())
}

// Stop terminates the monitor. Safe to call multiple times and from
// the monitor itself.
func (m *progressMonitor) Stop() {
	m.stopOnce.Do(func() {
		m.log.V(1).Info("stopping migration monitor thread")
		close(m.stopCh)
	})
}

// calcProgress maps job byte counters to a percentage. A zero
// remaining count is completion; anything else is clamped to 99 so
// only terminal success reports 100.
func calcProgress(remaining, total uint64) int {
	if remaining == 0 {
		return 100
	}
	progress := 0
	if total > 0 {
		progress = int(100 - 100*remaining/total)
	}
	if progress >= 100 {
		progress = 99
	}
	return progress
}
