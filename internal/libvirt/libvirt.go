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

package libvirt

import (
	"fmt"
	"os"
	"time"

	"github.com/digitalocean/go-libvirt"
	"github.com/digitalocean/go-libvirt/socket/dialers"
	"github.com/google/uuid"
	logger "sigs.k8s.io/controller-runtime/pkg/log"
)

// Typed parameter discriminants of the libvirt wire protocol.
const (
	// VIR_TYPED_PARAM_ULLONG
	typedParamULLong uint32 = 4
	// VIR_TYPED_PARAM_STRING
	typedParamString uint32 = 7
)

// Migration typed parameter names understood by the daemon.
const (
	migrateParamURI       = "migrate_uri"
	migrateParamBandwidth = "bandwidth"
)

type LibVirt struct {
	virt    *libvirt.Libvirt
	version string
}

func NewLibVirt() *LibVirt {
	socketPath := os.Getenv("LIBVIRT_SOCKET")
	if socketPath == "" {
		socketPath = "/run/libvirt/libvirt-sock"
	}
	logger.Log.Info("Using libvirt unix domain socket", "socket", socketPath)
	return &LibVirt{
		virt: libvirt.NewWithDialer(
			dialers.NewLocal(
				dialers.WithSocket(socketPath),
				dialers.WithLocalTimeout(15*time.Second),
			),
		),
		version: "N/A",
	}
}

func (l *LibVirt) Connect() error {
	// Check if already connected
	if l.virt.IsConnected() {
		return nil
	}

	var libVirtUri = libvirt.ConnectURI("qemu:///system")
	if uri, present := os.LookupEnv("LIBVIRT_DEFAULT_URI"); present {
		libVirtUri = libvirt.ConnectURI(uri)
	}
	if err := l.virt.ConnectToURI(libVirtUri); err != nil {
		return err
	}

	// Update the version
	if version, err := l.virt.ConnectGetVersion(); err != nil {
		logger.Log.Error(err, "unable to fetch libvirt version")
	} else {
		major, minor, release := version/1000000, (version/1000)%1000, version%1000
		l.version = fmt.Sprintf("%d.%d.%d", major, minor, release)
	}

	return nil
}

func (l *LibVirt) Close() error {
	if err := l.virt.ConnectRegisterCloseCallback(); err != nil {
		return err
	}
	return l.virt.Disconnect()
}

func (l *LibVirt) IsConnected() bool {
	return l.virt.IsConnected()
}

// Version returns the libvirt daemon version discovered at connect
// time.
func (l *LibVirt) Version() string {
	return l.version
}

// Disconnected exposes the connection-loss channel of the underlying
// client for background loops that must shut down with the daemon.
func (l *LibVirt) Disconnected() <-chan struct{} {
	return l.virt.Disconnected()
}

// ListActiveDomainUUIDs enumerates the running domains on this host.
func (l *LibVirt) ListActiveDomainUUIDs() ([]string, error) {
	domains, _, err := l.virt.ConnectListAllDomains(1, libvirt.ConnectListDomainsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active domains: %w", err)
	}
	ids := make([]string, 0, len(domains))
	for _, domain := range domains {
		ids = append(ids, DomainUUID(domain))
	}
	return ids, nil
}

func (l *LibVirt) lookup(vmID string) (libvirt.Domain, error) {
	id, err := uuid.Parse(vmID)
	if err != nil {
		return libvirt.Domain{}, fmt.Errorf("invalid domain uuid %q: %w", vmID, err)
	}
	dom, err := l.virt.DomainLookupByUUID(libvirt.UUID(id))
	if err != nil {
		return libvirt.Domain{}, fmt.Errorf("failed to look up domain %s: %w", vmID, err)
	}
	return dom, nil
}

func (l *LibVirt) DescribeDomain(vmID string) (string, error) {
	dom, err := l.lookup(vmID)
	if err != nil {
		return "", err
	}
	return l.virt.DomainGetXMLDesc(dom, 0)
}

func (l *LibVirt) Save(vmID, path string) error {
	dom, err := l.lookup(vmID)
	if err != nil {
		return err
	}
	return l.virt.DomainSave(dom, path)
}

func (l *LibVirt) MigrateToURI(vmID, destURI, migrateURI string, bandwidthMiB uint64, flags libvirt.DomainMigrateFlags) error {
	dom, err := l.lookup(vmID)
	if err != nil {
		return err
	}

	params := []libvirt.TypedParam{
		{
			Field: migrateParamURI,
			Value: libvirt.TypedParamValue{D: typedParamString, I: migrateURI},
		},
	}
	if bandwidthMiB > 0 {
		params = append(params, libvirt.TypedParam{
			Field: migrateParamBandwidth,
			Value: libvirt.TypedParamValue{D: typedParamULLong, I: bandwidthMiB},
		})
	}

	_, err = l.virt.DomainMigratePerform3Params(
		dom,
		libvirt.OptString{destURI},
		params,
		nil,
		flags,
	)
	return err
}

func (l *LibVirt) SetMaxDowntime(vmID string, downtimeMs uint64) error {
	dom, err := l.lookup(vmID)
	if err != nil {
		return err
	}
	return l.virt.DomainMigrateSetMaxDowntime(dom, downtimeMs, 0)
}

func (l *LibVirt) AbortJob(vmID string) error {
	dom, err := l.lookup(vmID)
	if err != nil {
		return err
	}
	return l.virt.DomainAbortJob(dom)
}

func (l *LibVirt) JobInfo(vmID string) (*JobInfo, error) {
	dom, err := l.lookup(vmID)
	if err != nil {
		return nil, err
	}

	jobType, timeElapsed, timeRemaining,
		dataTotal, dataProcessed, dataRemaining,
		memTotal, memProcessed, memRemaining,
		fileTotal, fileProcessed, fileRemaining, err := l.virt.DomainGetJobInfo(dom)
	if err != nil {
		return nil, err
	}

	// from libvirt sources: data* = file* + mem*.
	return &JobInfo{
		Type:            jobType,
		TimeElapsedMs:   timeElapsed,
		TimeRemainingMs: timeRemaining,
		DataTotal:       dataTotal,
		DataProcessed:   dataProcessed,
		DataRemaining:   dataRemaining,
		MemTotal:        memTotal,
		MemProcessed:    memProcessed,
		MemRemaining:    memRemaining,
		FileTotal:       fileTotal,
		FileProcessed:   fileProcessed,
		FileRemaining:   fileRemaining,
	}, nil
}

func (l *LibVirt) Suspend(vmID string) error {
	dom, err := l.lookup(vmID)
	if err != nil {
		return err
	}
	return l.virt.DomainSuspend(dom)
}

func (l *LibVirt) Resume(vmID string) error {
	dom, err := l.lookup(vmID)
	if err != nil {
		return err
	}
	return l.virt.DomainResume(dom)
}
