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

// Package migration implements the source side of VM live migration
// and state save. One SourceDriver owns the full lifecycle of a single
// outbound migration: peer handshake, guest preparation, the
// hypervisor transfer with its downtime ramp and progress monitor, and
// recovery of local state when anything fails.
package migration

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	golibvirt "github.com/digitalocean/go-libvirt"
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"

	api "github.com/virtstack/kvm-host-agent/api/v1alpha1"
	"github.com/virtstack/kvm-host-agent/internal/hooks"
	"github.com/virtstack/kvm-host-agent/internal/libvirt"
	"github.com/virtstack/kvm-host-agent/internal/peer"
	"github.com/virtstack/kvm-host-agent/internal/virt"
	"github.com/virtstack/kvm-host-agent/internal/volume"
)

// How long a responsive guest agent gets to lock the desktop before a
// state save proceeds without it.
const guestLockTimeout = 30 * time.Second

// Validity window of a refreshed display ticket during the handover.
const displayHandoverWindow = 120 * time.Second

// Tunables is the subset of agent configuration the driver consumes.
type Tunables struct {
	// Port is the local control port, assumed for peers given without
	// one.
	Port int
	// SSL selects TLS peer connections and the tls transport for the
	// hypervisor control connection.
	SSL bool
	// DowntimeMs is the default downtime ceiling when the request
	// carries none.
	DowntimeMs int
	// DowntimeSteps is the number of ramp increments.
	DowntimeSteps int
	// DowntimeDelayMs is the ramp budget in milliseconds per GiB.
	DowntimeDelayMs int
	// MaxBandwidthMiB caps the transfer rate in MiB/s.
	MaxBandwidthMiB int
	// MonitorInterval is the progress sampling period; 0 disables the
	// monitor.
	MonitorInterval time.Duration
	// MaxTimePerGiBMem bounds total migration wall time in seconds
	// per GiB of guest memory; 0 disables the bound.
	MaxTimePerGiBMem int
	// ProgressTimeout aborts the migration when the low watermark has
	// not improved for this long.
	ProgressTimeout time.Duration
}

// Deps wires a SourceDriver to its collaborators.
type Deps struct {
	Hypervisor libvirt.Interface
	Hooks      hooks.Dispatcher
	Volumes    volume.Manager

	// Dial opens peer connections; overridable in tests.
	Dial peer.Dialer

	// TLS is the client TLS config used when Tunables.SSL is set.
	TLS *tls.Config
}

// SourceDriver runs one outbound migration. Start may be called once;
// GetStat is safe to call concurrently at any time; Stop may be called
// at any time after Start.
type SourceDriver struct {
	vm   *virt.VM
	req  api.MigrationRequest
	tun  Tunables
	deps Deps
	log  logr.Logger

	downtimeMs int

	mu      sync.Mutex
	status  api.MigrationStatus
	monitor *progressMonitor

	machineParams map[string]any
	destServer    peer.Client
	remoteHost    string

	// preparingMigration is true until just before the hypervisor
	// call; it gates whether Stop propagates an abort-job failure.
	preparingMigration atomic.Bool
	canceled           atomic.Bool

	started atomic.Bool
	done    chan struct{}
}

// NewSourceDriver builds a driver for the given request. The request's
// VMID must match the handle.
func NewSourceDriver(vm *virt.VM, req api.MigrationRequest, tun Tunables, deps Deps) *SourceDriver {
	downtime := req.Downtime
	if downtime <= 0 {
		downtime = tun.DowntimeMs
	}
	if deps.Dial == nil {
		deps.Dial = peer.Dial
	}
	if deps.Hooks == nil {
		deps.Hooks = hooks.NopDispatcher{}
	}
	if deps.Volumes == nil {
		deps.Volumes = volume.LocalManager{}
	}

	d := &SourceDriver{
		vm:         vm,
		req:        req,
		tun:        tun,
		deps:       deps,
		log:        vm.Log().WithName("migration"),
		downtimeMs: downtime,
		status: api.MigrationStatus{
			Status: api.Status{Code: 0, Message: "Migration in progress"},
		},
		done: make(chan struct{}),
	}
	d.preparingMigration.Store(true)
	return d
}

// Start launches the migration lifecycle. Subsequent calls are no-ops.
func (d *SourceDriver) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	go d.run()
}

// Wait blocks until the migration reached a terminal status.
func (d *SourceDriver) Wait() {
	<-d.done
}

// GetStat returns the current migration status. While the progress
// monitor is live its percentage wins over the driver's; terminal
// success reports 100 either way.
func (d *SourceDriver) GetStat() api.MigrationStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := d.status
	if d.monitor != nil && d.monitor.Progress() > status.Progress {
		status.Progress = d.monitor.Progress()
	}
	return status
}

// Stop cancels the migration. Before the hypervisor call the abort-job
// failure is swallowed since there is no job yet; afterwards it is
// propagated.
func (d *SourceDriver) Stop() error {
	d.canceled.Store(true)
	if err := d.deps.Hypervisor.AbortJob(d.req.VMID); err != nil {
		if !d.preparingMigration.Load() {
			return err
		}
	}
	return nil
}

func (d *SourceDriver) setStatus(code int, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status.Status.Code = code
	d.status.Status.Message = message
}

func (d *SourceDriver) statusCode() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status.Status.Code
}

func (d *SourceDriver) run() {
	defer close(d.done)

	startTime := time.Now()
	err := d.migrate(context.Background(), startTime)
	if err == nil {
		migrationsTotal.WithLabelValues(string(d.req.Mode), "success").Inc()
		return
	}

	migrationsTotal.WithLabelValues(string(d.req.Mode), "failure").Inc()
	if errors.Is(err, errVMExistsOnPeer) {
		// nothing was touched yet, the VM keeps running here
		d.log.Error(err, "Machine already exists on the destination")
		return
	}
	d.recover(err.Error())
	d.log.Error(err, "Failed to migrate")
}

func (d *SourceDriver) migrate(ctx context.Context, startTime time.Time) error {
	if err := d.setupPeerConnection(ctx); err != nil {
		return err
	}
	if err := d.setupMachineParams(); err != nil {
		return err
	}
	if err := d.prepareGuest(ctx); err != nil {
		return err
	}

	if err := ongoingMigrations.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire migration slot: %w", err)
	}
	migrationsActive.Inc()
	d.log.V(1).Info("migration semaphore acquired")

	err := func() error {
		defer func() {
			d.vm.DeleteConfValue(confKeyMigrationParams)
			migrationsActive.Dec()
			ongoingMigrations.Release(1)
		}()

		if d.canceled.Load() {
			return libvirt.AbortError()
		}

		d.vm.SetConfValue(confKeyMigrationParams, map[string]any{
			"dst":       d.req.Destination,
			"mode":      string(d.req.Mode),
			"method":    string(d.req.Method),
			"dstparams": d.req.DestinationParams,
			"dstqemu":   d.req.DestinationQemuAddress,
		})
		if err := d.vm.SaveState(); err != nil {
			return fmt.Errorf("failed to persist vm state: %w", err)
		}

		if err := d.startUnderlyingMigration(ctx, startTime); err != nil {
			return err
		}
		return d.finishSuccessfully()
	}()

	if err != nil && libvirt.IsOperationAborted(err) {
		d.setStatus(CodeMigCancelErr, msgCanceled)
	}
	return err
}

// setupPeerConnection opens the control connection to the destination
// agent and probes for a conflicting VM. Skipped entirely for state
// saves.
func (d *SourceDriver) setupPeerConnection(ctx context.Context) error {
	if d.req.Mode == api.MigrationModeFile {
		return nil
	}

	hostport, err := peer.CanonicalizeHostPort(d.req.Destination, d.tun.Port)
	if err != nil {
		d.setStatus(CodeNoConPeer, msgNoConPeer)
		return fmt.Errorf("invalid destination %q: %w", d.req.Destination, err)
	}
	d.remoteHost = hostport[:strings.LastIndex(hostport, ":")]

	var tlsConf *tls.Config
	if d.tun.SSL {
		tlsConf = d.deps.TLS
	}
	d.log.V(1).Info("Destination server is", "hostport", hostport)

	destServer, err := d.deps.Dial(hostport, tlsConf)
	if err != nil {
		d.setStatus(CodeNoConPeer, msgNoConPeer)
		return fmt.Errorf("failed to connect to destination host agent: %w", err)
	}

	d.log.V(1).Info("Initiating connection with destination")
	resp, err := destServer.GetVmStats(ctx, d.req.VMID)
	if err != nil {
		_ = destServer.Close()
		d.setStatus(CodeNoConPeer, msgNoConPeer)
		return fmt.Errorf("error initiating connection with destination: %w", err)
	}
	if resp.Status.Code == 0 {
		_ = destServer.Close()
		d.setStatus(CodeExist, msgExist)
		return errVMExistsOnPeer
	}

	d.destServer = destServer
	return nil
}

// setupMachineParams snapshots the VM status map and decorates it with
// everything the destination needs to take over.
func (d *SourceDriver) setupMachineParams() error {
	params := d.vm.Status()

	// patch the VM config for old destinations
	patchConfigForLegacy(params)

	params["elapsedTimeOffset"] = time.Since(d.vm.StartedAt()).Seconds()

	stats := d.vm.GetStats()
	for _, key := range []string{"username", "guestIPs", "guestFQDN"} {
		if val, ok := stats[key]; ok {
			params[key] = val
		}
	}
	delete(params, confKeyMigrationParams)
	delete(params, "pid")

	if d.req.Mode != api.MigrationModeFile {
		params["migrationDest"] = "libvirt"
	}

	domXML, err := d.deps.Hypervisor.DescribeDomain(d.req.VMID)
	if err != nil {
		return fmt.Errorf("failed to describe domain: %w", err)
	}
	params["_srcDomXML"] = domXML

	d.machineParams = params
	return nil
}

// prepareGuest gets the guest into the right state for the transfer:
// locked and paused for a state save, flagged as migration source for
// a live migration.
func (d *SourceDriver) prepareGuest(ctx context.Context) error {
	if d.req.Mode == api.MigrationModeFile {
		d.log.V(1).Info("Save State begins")

		if agent := d.vm.GuestAgent(); agent != nil {
			if err := agent.DesktopLock(); err != nil {
				d.log.Error(err, "failed to request desktop lock")
			}
			if agent.IsResponsive() {
				// wait for lock or timeout
				err := wait.PollUntilContextTimeout(ctx, time.Second, guestLockTimeout, false,
					func(context.Context) (bool, error) {
						session, _ := d.vm.GetStats()["session"].(string)
						return session == virt.SessionLocked || session == virt.SessionLoggedOff, nil
					})
				if err != nil {
					d.log.Info("Guest agent unresponsive. Hibernating without desktopLock.")
				}
			} else {
				d.log.Info("Guest agent unresponsive. Hibernating without desktopLock.")
			}
		}
		return d.vm.Pause("Saving State")
	}

	d.log.V(1).Info("Migration started")
	d.vm.SetLastStatus(virt.StatusMigrationSource)
	return nil
}

// startUnderlyingMigration hands the transfer to the hypervisor, with
// the background workers running for the remote case.
func (d *SourceDriver) startUnderlyingMigration(ctx context.Context, startTime time.Time) error {
	if d.req.Mode == api.MigrationModeFile {
		return d.saveToFile()
	}
	return d.migrateToPeer(ctx, startTime)
}

func (d *SourceDriver) saveToFile() error {
	domXML, err := d.deps.Hypervisor.DescribeDomain(d.req.VMID)
	if err != nil {
		return fmt.Errorf("failed to describe domain: %w", err)
	}
	if err := d.deps.Hooks.BeforeVMHibernate(domXML, d.vm.ConfCopy()); err != nil {
		return fmt.Errorf("before_vm_hibernate hook failed: %w", err)
	}

	d.vm.PauseStatsCollection()
	err = func() error {
		fname, err := d.deps.Volumes.PrepareVolumePath(d.req.Destination)
		if err != nil {
			return fmt.Errorf("failed to prepare state volume: %w", err)
		}
		defer func() {
			if err := d.deps.Volumes.TeardownVolumePath(d.req.Destination); err != nil {
				d.log.Error(err, "failed to tear down state volume")
			}
		}()
		return d.deps.Hypervisor.Save(d.req.VMID, fname)
	}()
	if err != nil {
		d.vm.ContStatsCollection()
		return err
	}
	return nil
}

func (d *SourceDriver) migrateToPeer(ctx context.Context, startTime time.Time) error {
	for _, dev := range d.vm.CustomDevices() {
		if err := d.deps.Hooks.BeforeDeviceMigrateSource(dev.DeviceXML, d.vm.ConfCopy(), dev.Custom); err != nil {
			return fmt.Errorf("before_device_migrate_source hook failed: %w", err)
		}
	}
	domXML, err := d.deps.Hypervisor.DescribeDomain(d.req.VMID)
	if err != nil {
		return fmt.Errorf("failed to describe domain: %w", err)
	}
	if err := d.deps.Hooks.BeforeVMMigrateSource(domXML, d.vm.ConfCopy()); err != nil {
		return fmt.Errorf("before_vm_migrate_source hook failed: %w", err)
	}

	resp, err := d.destServer.MigrationCreate(ctx, d.machineParams)
	if err != nil {
		return fmt.Errorf("migrationCreate failed: %w", err)
	}
	if resp.Status.Code != 0 {
		// adopt the peer's refusal verbatim
		d.mu.Lock()
		d.status.Status = resp.Status
		d.mu.Unlock()
		return fmt.Errorf("migration destination error: %s", resp.Status.Message)
	}

	transport := "tcp"
	if d.tun.SSL {
		transport = "tls"
	}
	duri := fmt.Sprintf("qemu+%s://%s/system", transport, d.remoteHost)
	muri := "tcp://" + d.remoteHost
	if d.req.DestinationQemuAddress != "" {
		muri = "tcp://" + d.req.DestinationQemuAddress
	}
	d.log.V(1).Info("starting migration", "duri", duri, "muri", muri)

	ramp := startDowntimeRamp(d.vm, d.deps.Hypervisor,
		d.downtimeMs, d.tun.DowntimeSteps, d.tun.DowntimeDelayMs, d.log)
	if d.tun.MonitorInterval > 0 {
		monitor := startProgressMonitor(d.vm, d.deps.Hypervisor, d.tun.MonitorInterval,
			d.tun.MaxTimePerGiBMem, d.tun.ProgressTimeout, startTime, d.log)
		d.mu.Lock()
		d.monitor = monitor
		d.mu.Unlock()
	}

	defer func() {
		ramp.Cancel()
		d.mu.Lock()
		monitor := d.monitor
		d.mu.Unlock()
		if monitor != nil {
			monitor.Stop()
		}
	}()

	d.reviveDisplayTicket()

	d.preparingMigration.Store(false)
	if d.canceled.Load() {
		return libvirt.AbortError()
	}

	flags := golibvirt.MigrateLive | golibvirt.MigratePeer2peer
	if d.req.Tunneled {
		flags |= golibvirt.MigrateTunnelled
	}
	if d.req.AbortOnError {
		flags |= golibvirt.MigrateAbortOnError
	}
	return d.deps.Hypervisor.MigrateToURI(d.req.VMID, duri, muri,
		uint64(d.tun.MaxBandwidthMiB), flags)
}

// reviveDisplayTicket extends the display ticket so a connected client
// can reconnect to the destination within the handover window.
func (d *SourceDriver) reviveDisplayTicket() {
	display, _ := d.vm.ConfValue("display")
	clientIP, _ := d.vm.ConfValue("clientIp")
	displayType, _ := display.(string)
	ip, _ := clientIP.(string)
	if strings.Contains(displayType, "qxl") && ip != "" {
		if err := d.vm.ReviveTicket(displayHandoverWindow); err != nil {
			d.log.Error(err, "failed to revive display ticket")
		}
	}
}

func (d *SourceDriver) finishSuccessfully() error {
	d.mu.Lock()
	d.status.Progress = 100
	d.mu.Unlock()

	if d.req.Mode != api.MigrationModeFile {
		d.vm.SetDownStatus(virt.ExitCodeNormal, virt.ExitReasonMigrationSucceeded, "Migration done")
		d.setStatus(0, "Migration done")
		return nil
	}

	// don't persist transient params
	stripTransientParams(d.machineParams)

	fname, err := d.deps.Volumes.PrepareVolumePath(d.req.DestinationParams)
	if err != nil {
		return fmt.Errorf("failed to prepare params volume: %w", err)
	}
	err = func() error {
		defer func() {
			if err := d.deps.Volumes.TeardownVolumePath(d.req.DestinationParams); err != nil {
				d.log.Error(err, "failed to tear down params volume")
			}
		}()
		return writeParamsFile(fname, d.machineParams)
	}()
	if err != nil {
		return err
	}

	d.vm.SetDownStatus(virt.ExitCodeNormal, virt.ExitReasonSaveStateSucceeded, "SaveState done")
	d.setStatus(0, "SaveState done")
	return nil
}

// recover puts the local VM back into service after a failed transfer.
func (d *SourceDriver) recover(message string) {
	if d.statusCode() == 0 {
		d.setStatus(CodeMigrateErr, msgMigrateErr)
	}
	d.log.Info("recovering from failed migration", "message", message)

	if d.req.Mode != api.MigrationModeFile && d.destServer != nil {
		if _, err := d.destServer.Destroy(context.Background(), d.req.VMID); err != nil {
			d.log.Error(err, "Failed to destroy remote VM")
		}
	}

	// if the guest was stopped before migration, we need to cont it
	if d.req.Mode == api.MigrationModeFile || d.req.Method != api.MigrationMethodOnline {
		if err := d.vm.Cont(); err != nil {
			d.log.Error(err, "failed to resume vm")
		}
	}

	// either way, migration has finished
	d.vm.SetLastStatus(virt.StatusUp)
}
