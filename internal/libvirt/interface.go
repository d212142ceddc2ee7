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

//go:generate moq -out libvirt_mock.go . Interface

package libvirt

import (
	"github.com/digitalocean/go-libvirt"
)

// JobInfo is the domain job progress snapshot as reported by libvirt.
// DataTotal and DataRemaining are the sums of the respective mem and
// file counters; all byte counters refer to the running migration or
// save job.
type JobInfo struct {
	// Type is one of the VIR_DOMAIN_JOB_* values; 0 means no job is
	// active and the sample carries no progress information.
	Type int32

	TimeElapsedMs   uint64
	TimeRemainingMs uint64

	DataTotal     uint64
	DataProcessed uint64
	DataRemaining uint64

	MemTotal     uint64
	MemProcessed uint64
	MemRemaining uint64

	FileTotal     uint64
	FileProcessed uint64
	FileRemaining uint64
}

type Interface interface {
	// Connect connects to the libvirt daemon.
	Connect() error

	// Close closes the connection to the libvirt daemon.
	Close() error

	// IsConnected returns true while the connection to the libvirt
	// daemon is open.
	IsConnected() bool

	// DescribeDomain returns the live domain XML of the VM with the
	// given UUID.
	DescribeDomain(vmID string) (string, error)

	// Save serializes the full state of the domain to the given path.
	// The domain must be paused; it stays down afterwards.
	Save(vmID, path string) error

	// MigrateToURI performs a peer-to-peer live migration. destURI is
	// the libvirt control connection to the destination, migrateURI
	// the qemu data-plane address. bandwidthMiB caps the transfer rate
	// in MiB/s; 0 means unlimited. The call blocks until the migration
	// finishes, fails, or is aborted.
	MigrateToURI(vmID, destURI, migrateURI string, bandwidthMiB uint64, flags libvirt.DomainMigrateFlags) error

	// SetMaxDowntime adjusts the maximum tolerable downtime of the
	// running migration job, in milliseconds.
	SetMaxDowntime(vmID string, downtimeMs uint64) error

	// AbortJob aborts the active domain job. Fails if no job is
	// running.
	AbortJob(vmID string) error

	// JobInfo samples the progress of the active domain job.
	JobInfo(vmID string) (*JobInfo, error)

	// Suspend pauses the domain.
	Suspend(vmID string) error

	// Resume continues a paused domain.
	Resume(vmID string) error
}
