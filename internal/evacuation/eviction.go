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

// Package evacuation drains running VMs off this host before it goes
// down.
package evacuation

import (
	"context"
	"fmt"

	logger "sigs.k8s.io/controller-runtime/pkg/log"

	api "github.com/virtstack/kvm-host-agent/api/v1alpha1"
	"github.com/virtstack/kvm-host-agent/internal/sys"
)

// Migrator submits one outbound migration and reports its terminal
// status. Implemented by the agent on top of migration.SourceDriver.
type Migrator interface {
	// Migrate runs the request to completion and returns the terminal
	// status.
	Migrate(ctx context.Context, req api.MigrationRequest) (api.MigrationStatus, error)
}

// EvictionController migrates all running VMs to the configured
// standby peer.
type EvictionController struct {
	// Target is the peer receiving the VMs. Empty disables evacuation.
	Target string

	// RunningVMs enumerates the VM UUIDs currently active on this
	// host.
	RunningVMs func() ([]string, error)

	Migrator Migrator
}

// EvictCurrentHost callback is allowed to block. It is called when the
// host is about to be rebooted and should migrate all VMs away. It may
// block up to InhibitDelayMaxSec seconds; see
// `systemd-analyze cat-config systemd/logind.conf` for the current
// setting.
func (e *EvictionController) EvictCurrentHost(ctx context.Context) error {
	log := logger.FromContext(ctx).WithValues("host", sys.Hostname)

	if e.Target == "" {
		log.Info("EvictCurrentHost due shutdown: no evacuation target configured, skipping")
		return nil
	}

	vms, err := e.RunningVMs()
	if err != nil {
		return fmt.Errorf("could not enumerate running VMs: %w", err)
	}
	if len(vms) == 0 {
		log.Info("EvictCurrentHost due shutdown: no running VMs found on current host, no eviction needed")
		return nil
	}

	log.Info("evacuating host", "target", e.Target, "vms", len(vms))

	var failed int
	for _, vmID := range vms {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		status, err := e.Migrator.Migrate(ctx, api.MigrationRequest{
			VMID:        vmID,
			Destination: e.Target,
			Mode:        api.MigrationModeRemote,
			Method:      api.MigrationMethodOnline,
		})
		if err != nil {
			failed++
			log.Error(err, "failed to submit evacuation migration", "vmId", vmID)
			continue
		}
		if status.Status.Code != 0 {
			failed++
			log.Info("evacuation migration failed", "vmId", vmID,
				"code", status.Status.Code, "message", status.Status.Message)
			continue
		}
		log.Info("evacuation migration done", "vmId", vmID)
	}

	if failed > 0 {
		return fmt.Errorf("evacuation finished with %d of %d migrations failed", failed, len(vms))
	}
	return nil
}
