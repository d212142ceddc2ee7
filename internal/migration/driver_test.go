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
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	golibvirt "github.com/digitalocean/go-libvirt"
	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/virtstack/kvm-host-agent/api/v1alpha1"
	"github.com/virtstack/kvm-host-agent/internal/libvirt"
	"github.com/virtstack/kvm-host-agent/internal/peer"
	"github.com/virtstack/kvm-host-agent/internal/virt"
)

const testVMID = "6695eb01-f6a4-8304-79aa-97f2502e193f"

// fakePeer implements peer.Client against canned responses.
type fakePeer struct {
	getVmStats      func(ctx context.Context, vmID string) (*api.Response, error)
	migrationCreate func(ctx context.Context, params map[string]any) (*api.Response, error)

	destroyCalls atomic.Int32
	lastParams   map[string]any
}

func (f *fakePeer) GetVmStats(ctx context.Context, vmID string) (*api.Response, error) {
	if f.getVmStats == nil {
		// VM not present on the peer
		return &api.Response{Status: api.Status{Code: 1, Message: "Virtual machine does not exist"}}, nil
	}
	return f.getVmStats(ctx, vmID)
}

func (f *fakePeer) MigrationCreate(ctx context.Context, params map[string]any) (*api.Response, error) {
	f.lastParams = params
	if f.migrationCreate == nil {
		return &api.Response{Status: api.Status{Code: 0}}, nil
	}
	return f.migrationCreate(ctx, params)
}

func (f *fakePeer) Destroy(ctx context.Context, vmID string) (*api.Response, error) {
	f.destroyCalls.Add(1)
	return &api.Response{Status: api.Status{Code: 0}}, nil
}

func (f *fakePeer) Close() error { return nil }

func dialerFor(p peer.Client, err error) peer.Dialer {
	return func(hostport string, tlsConf *tls.Config) (peer.Client, error) {
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// defaultHv returns a mock hypervisor where every operation succeeds.
func defaultHv() *libvirt.InterfaceMock {
	return &libvirt.InterfaceMock{
		DescribeDomainFunc: func(vmID string) (string, error) {
			return "<domain type='kvm'><name>" + vmID + "</name></domain>", nil
		},
		MigrateToURIFunc: func(vmID, destURI, migrateURI string, bandwidthMiB uint64, flags golibvirt.DomainMigrateFlags) error {
			return nil
		},
		SaveFunc:           func(vmID, path string) error { return nil },
		SetMaxDowntimeFunc: func(vmID string, downtimeMs uint64) error { return nil },
		AbortJobFunc:       func(vmID string) error { return nil },
		SuspendFunc:        func(vmID string) error { return nil },
		ResumeFunc:         func(vmID string) error { return nil },
		JobInfoFunc: func(vmID string) (*libvirt.JobInfo, error) {
			return &libvirt.JobInfo{Type: 2, DataTotal: 100, DataRemaining: 50}, nil
		},
	}
}

type pauseRecorder struct {
	pauses atomic.Int32
	conts  atomic.Int32
}

func (p *pauseRecorder) Pause(string) { p.pauses.Add(1) }
func (p *pauseRecorder) Cont(string)  { p.conts.Add(1) }

func testTunables() Tunables {
	return Tunables{
		Port:             54321,
		SSL:              false,
		DowntimeMs:       500,
		DowntimeSteps:    2,
		DowntimeDelayMs:  1,
		MaxBandwidthMiB:  32,
		MonitorInterval:  0, // monitor off unless a spec opts in
		MaxTimePerGiBMem: 0,
		ProgressTimeout:  time.Hour,
	}
}

func newDriverVM(hv libvirt.Interface, conf map[string]any, stats virt.StatsPauser) *virt.VM {
	if conf == nil {
		conf = map[string]any{"memSize": 2048}
	}
	return virt.NewVM(testVMID, conf, virt.Options{
		Hypervisor: hv,
		Stats:      stats,
		Log:        logr.Discard(),
		LiveStats: func() map[string]any {
			return map[string]any{"username": "operator", "session": virt.SessionActive}
		},
	})
}

func waitDone(driver *SourceDriver) {
	done := make(chan struct{})
	go func() {
		driver.Wait()
		close(done)
	}()
	Eventually(done, "5s").Should(BeClosed())
}

func slotIsFree() bool {
	if !ongoingMigrations.TryAcquire(1) {
		return false
	}
	ongoingMigrations.Release(1)
	return true
}

var _ = Describe("SourceDriver", func() {
	var hv *libvirt.InterfaceMock

	BeforeEach(func() {
		SetMaxOutgoingMigrations(1)
		hv = defaultHv()
	})

	Context("when the VM already exists on the destination", func() {
		It("aborts before acquiring the slot and leaves the VM up", func() {
			fp := &fakePeer{
				getVmStats: func(ctx context.Context, vmID string) (*api.Response, error) {
					return &api.Response{Status: api.Status{Code: 0}}, nil
				},
			}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, testTunables(), Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			driver.Start()
			waitDone(driver)

			stat := driver.GetStat()
			Expect(stat.Status.Code).To(Equal(CodeExist))
			Expect(hv.MigrateToURICalls()).To(BeEmpty())
			Expect(vm.LastStatus()).To(Equal(virt.StatusUp))
			Expect(fp.destroyCalls.Load()).To(BeZero())
			Expect(slotIsFree()).To(BeTrue())
		})
	})

	Context("when the peer is unreachable", func() {
		It("reports noConPeer and recovers the VM", func() {
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, testTunables(), Deps{
				Hypervisor: hv,
				Dial:       dialerFor(nil, errors.New("connection refused")),
			})

			driver.Start()
			waitDone(driver)

			stat := driver.GetStat()
			Expect(stat.Status.Code).To(Equal(CodeNoConPeer))
			Expect(vm.LastStatus()).To(Equal(virt.StatusUp))
			Expect(hv.MigrateToURICalls()).To(BeEmpty())
			Expect(slotIsFree()).To(BeTrue())
		})

		It("reports noConPeer when the stats probe errors", func() {
			fp := &fakePeer{
				getVmStats: func(ctx context.Context, vmID string) (*api.Response, error) {
					return nil, errors.New("rpc timeout")
				},
			}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, testTunables(), Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			driver.Start()
			waitDone(driver)

			Expect(driver.GetStat().Status.Code).To(Equal(CodeNoConPeer))
		})
	})

	Context("when a remote migration succeeds", func() {
		It("reports progress 100 and marks the VM down", func() {
			fp := &fakePeer{}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, testTunables(), Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			driver.Start()
			waitDone(driver)

			stat := driver.GetStat()
			Expect(stat.Status.Code).To(BeZero())
			Expect(stat.Status.Message).To(Equal("Migration done"))
			Expect(stat.Progress).To(Equal(100))

			Expect(vm.LastStatus()).To(Equal(virt.StatusDown))
			code, reason, message := vm.ExitStatus()
			Expect(code).To(Equal(virt.ExitCodeNormal))
			Expect(reason).To(Equal(virt.ExitReasonMigrationSucceeded))
			Expect(message).To(Equal("Migration done"))

			// the machine params went over the wire without local-only keys
			Expect(fp.lastParams).To(HaveKey("_srcDomXML"))
			Expect(fp.lastParams).To(HaveKey("afterMigrationStatus"))
			Expect(fp.lastParams).To(HaveKey("username"))
			Expect(fp.lastParams).NotTo(HaveKey("_migrationParams"))
			Expect(fp.lastParams).NotTo(HaveKey("pid"))
			Expect(fp.lastParams).To(HaveKeyWithValue("migrationDest", "libvirt"))

			// migration URIs follow the plain transport
			calls := hv.MigrateToURICalls()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].DestURI).To(Equal("qemu+tcp://peer-host/system"))
			Expect(calls[0].MigrateURI).To(Equal("tcp://peer-host"))

			// config is clean again
			_, ok := vm.ConfValue("_migrationParams")
			Expect(ok).To(BeFalse())
			Expect(slotIsFree()).To(BeTrue())
		})

		It("uses the direct qemu address when requested", func() {
			fp := &fakePeer{}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:                   testVMID,
				Destination:            "peer-host:54322",
				Mode:                   api.MigrationModeRemote,
				Method:                 api.MigrationMethodOnline,
				DestinationQemuAddress: "10.1.2.3",
				Tunneled:               true,
				AbortOnError:           true,
			}, testTunables(), Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			driver.Start()
			waitDone(driver)

			calls := hv.MigrateToURICalls()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].DestURI).To(Equal("qemu+tcp://peer-host/system"))
			Expect(calls[0].MigrateURI).To(Equal("tcp://10.1.2.3"))
			Expect(calls[0].Flags & golibvirt.MigrateTunnelled).NotTo(BeZero())
			Expect(calls[0].Flags & golibvirt.MigrateAbortOnError).NotTo(BeZero())
		})
	})

	Context("when the peer refuses migrationCreate", func() {
		It("adopts the peer status verbatim and tears down", func() {
			fp := &fakePeer{
				migrationCreate: func(ctx context.Context, params map[string]any) (*api.Response, error) {
					return &api.Response{Status: api.Status{Code: 77, Message: "not enough free memory"}}, nil
				},
			}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, testTunables(), Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			driver.Start()
			waitDone(driver)

			stat := driver.GetStat()
			Expect(stat.Status.Code).To(Equal(77))
			Expect(stat.Status.Message).To(Equal("not enough free memory"))
			Expect(hv.MigrateToURICalls()).To(BeEmpty())
			Expect(fp.destroyCalls.Load()).To(Equal(int32(1)))
			Expect(vm.LastStatus()).To(Equal(virt.StatusUp))
			Expect(slotIsFree()).To(BeTrue())
		})
	})

	Context("when a state save succeeds", func() {
		It("writes the params file without transient fields", func() {
			tmp := GinkgoT().TempDir()
			stateFile := filepath.Join(tmp, "state.img")
			paramsFile := filepath.Join(tmp, "params.json")

			stats := &pauseRecorder{}
			conf := map[string]any{
				"memSize":   2048,
				"display":   "qxl",
				"displayIp": "10.9.8.7",
				"pid":       4711,
			}
			vm := newDriverVM(hv, conf, stats)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:              testVMID,
				Destination:       stateFile,
				DestinationParams: paramsFile,
				Mode:              api.MigrationModeFile,
				Method:            api.MigrationMethodOffline,
			}, testTunables(), Deps{Hypervisor: hv})

			driver.Start()
			waitDone(driver)

			stat := driver.GetStat()
			Expect(stat.Status.Code).To(BeZero())
			Expect(stat.Status.Message).To(Equal("SaveState done"))
			Expect(stat.Progress).To(Equal(100))

			Expect(hv.SaveCalls()).To(HaveLen(1))
			Expect(hv.SaveCalls()[0].Path).To(Equal(stateFile))
			Expect(hv.SuspendCalls()).To(HaveLen(1))
			Expect(stats.pauses.Load()).To(Equal(int32(1)))

			raw, err := os.ReadFile(paramsFile)
			Expect(err).NotTo(HaveOccurred())
			var persisted map[string]any
			Expect(json.Unmarshal(raw, &persisted)).To(Succeed())
			Expect(persisted).NotTo(HaveKey("display"))
			Expect(persisted).NotTo(HaveKey("displayIp"))
			Expect(persisted).NotTo(HaveKey("pid"))
			Expect(persisted).To(HaveKey("afterMigrationStatus"))

			code, reason, message := vm.ExitStatus()
			Expect(code).To(Equal(virt.ExitCodeNormal))
			Expect(reason).To(Equal(virt.ExitReasonSaveStateSucceeded))
			Expect(message).To(Equal("SaveState done"))
			Expect(slotIsFree()).To(BeTrue())
		})

		It("resumes the stats collector when the save fails", func() {
			hv.SaveFunc = func(vmID, path string) error {
				return errors.New("no space left on device")
			}
			tmp := GinkgoT().TempDir()
			stats := &pauseRecorder{}
			vm := newDriverVM(hv, map[string]any{"memSize": 2048}, stats)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:              testVMID,
				Destination:       filepath.Join(tmp, "state.img"),
				DestinationParams: filepath.Join(tmp, "params.json"),
				Mode:              api.MigrationModeFile,
				Method:            api.MigrationMethodOffline,
			}, testTunables(), Deps{Hypervisor: hv})

			driver.Start()
			waitDone(driver)

			Expect(driver.GetStat().Status.Code).To(Equal(CodeMigrateErr))
			Expect(stats.pauses.Load()).To(Equal(int32(1)))
			Expect(stats.conts.Load()).To(Equal(int32(1)))
			// recovery resumes the paused guest
			Expect(hv.ResumeCalls()).To(HaveLen(1))
			Expect(vm.LastStatus()).To(Equal(virt.StatusUp))
			Expect(slotIsFree()).To(BeTrue())
		})
	})

	Context("cancellation", func() {
		It("cancels before the slot without touching the hypervisor", func() {
			fp := &fakePeer{}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, testTunables(), Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			// abortJob has nothing to abort yet; the failure must be
			// swallowed while we are still preparing
			hv.AbortJobFunc = func(vmID string) error {
				return errors.New("Requested operation is not valid: domain is not running")
			}
			Expect(driver.Stop()).To(Succeed())

			driver.Start()
			waitDone(driver)

			stat := driver.GetStat()
			Expect(stat.Status.Code).To(Equal(CodeMigCancelErr))
			Expect(stat.Status.Message).To(Equal("Migration canceled"))
			Expect(hv.MigrateToURICalls()).To(BeEmpty())
			Expect(slotIsFree()).To(BeTrue())
		})

		It("cancels between the slot and the hypervisor call", func() {
			entered := make(chan struct{})
			release := make(chan struct{})
			fp := &fakePeer{
				migrationCreate: func(ctx context.Context, params map[string]any) (*api.Response, error) {
					close(entered)
					<-release
					return &api.Response{Status: api.Status{Code: 0}}, nil
				},
			}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, testTunables(), Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			hv.AbortJobFunc = func(vmID string) error {
				return errors.New("Requested operation is not valid: domain is not running")
			}

			driver.Start()
			Eventually(entered, "5s").Should(BeClosed())
			Expect(driver.Stop()).To(Succeed())
			close(release)
			waitDone(driver)

			stat := driver.GetStat()
			Expect(stat.Status.Code).To(Equal(CodeMigCancelErr))
			Expect(stat.Status.Message).To(Equal("Migration canceled"))
			Expect(hv.MigrateToURICalls()).To(BeEmpty())
			Expect(slotIsFree()).To(BeTrue())
		})

		It("aborts a running hypervisor migration exactly once", func() {
			entered := make(chan struct{})
			aborted := make(chan struct{})
			hv.MigrateToURIFunc = func(vmID, destURI, migrateURI string, bandwidthMiB uint64, flags golibvirt.DomainMigrateFlags) error {
				close(entered)
				<-aborted
				return libvirt.AbortError()
			}
			hv.AbortJobFunc = func(vmID string) error {
				close(aborted)
				return nil
			}

			fp := &fakePeer{}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, testTunables(), Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			driver.Start()
			Eventually(entered, "5s").Should(BeClosed())
			Expect(driver.Stop()).To(Succeed())
			waitDone(driver)

			stat := driver.GetStat()
			Expect(stat.Status.Code).To(Equal(CodeMigCancelErr))
			Expect(stat.Status.Message).To(Equal("Migration canceled"))
			Expect(hv.AbortJobCalls()).To(HaveLen(1))
			Expect(vm.LastStatus()).To(Equal(virt.StatusUp))
			Expect(slotIsFree()).To(BeTrue())
		})
	})

	Context("status surface", func() {
		It("mirrors the monitor progress while the transfer runs", func() {
			tun := testTunables()
			tun.MonitorInterval = 5 * time.Millisecond

			migrating := make(chan struct{})
			release := make(chan struct{})
			hv.MigrateToURIFunc = func(vmID, destURI, migrateURI string, bandwidthMiB uint64, flags golibvirt.DomainMigrateFlags) error {
				close(migrating)
				<-release
				return nil
			}
			hv.JobInfoFunc = func(vmID string) (*libvirt.JobInfo, error) {
				return &libvirt.JobInfo{Type: 2, DataTotal: 1000, DataRemaining: 250}, nil
			}

			fp := &fakePeer{}
			vm := newDriverVM(hv, nil, nil)
			driver := NewSourceDriver(vm, api.MigrationRequest{
				VMID:        testVMID,
				Destination: "peer-host",
				Mode:        api.MigrationModeRemote,
				Method:      api.MigrationMethodOnline,
			}, tun, Deps{Hypervisor: hv, Dial: dialerFor(fp, nil)})

			driver.Start()
			Eventually(migrating, "5s").Should(BeClosed())
			Eventually(func() int {
				return driver.GetStat().Progress
			}, "5s").Should(Equal(75))

			close(release)
			waitDone(driver)
			Expect(driver.GetStat().Progress).To(Equal(100))
		})
	})
})
