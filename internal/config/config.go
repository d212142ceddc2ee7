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

// Package config loads the agent configuration from an INI file. All
// migration tunables live in the [vars] section, mirroring the layout
// shipped to operators.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-ini/ini"
)

// DefaultPath is where the agent config is installed on hosts. The
// HOST_AGENT_CONFIG environment variable overrides it.
const DefaultPath = "/etc/kvm-host-agent/agent.conf"

// Config carries the agent tunables from the [vars] section.
type Config struct {
	// Port is the control port this agent binds; it is also the
	// default port assumed for peers given without one.
	Port int

	// SSL selects TLS for peer connections and the tls transport for
	// the hypervisor's control connection to the destination.
	SSL bool

	// MigrationDowntime is the default ceiling, in milliseconds, for
	// the final stop-the-world pause.
	MigrationDowntime int

	// MigrationDowntimeSteps is the number of increments the downtime
	// ramp uses to reach the ceiling.
	MigrationDowntimeSteps int

	// MigrationDowntimeDelay is the ramp budget in milliseconds per
	// GiB of guest memory.
	MigrationDowntimeDelay int

	// MigrationMaxBandwidth caps the transfer rate in MiB/s.
	MigrationMaxBandwidth int

	// MigrationMonitorInterval is the progress sampling period in
	// seconds. Zero disables the monitor.
	MigrationMonitorInterval int

	// MigrationMaxTimePerGiBMem bounds the total migration wall time,
	// in seconds per GiB of guest memory. Zero disables the bound.
	MigrationMaxTimePerGiBMem int

	// MigrationProgressTimeout aborts a migration whose remaining-data
	// low watermark has not improved for this many seconds.
	MigrationProgressTimeout int

	// MaxOutgoingMigrations caps concurrent outbound migrations
	// process-wide.
	MaxOutgoingMigrations int

	// MigrationCertDir holds the PEM material used for TLS peer
	// connections (cacert.pem, cert.pem, key.pem).
	MigrationCertDir string

	// HooksDir is the root directory of the lifecycle hook scripts.
	HooksDir string

	// EvacuationTarget is the peer that receives this host's VMs when
	// the node prepares for shutdown. Empty disables evacuation.
	EvacuationTarget string
}

// Default returns the built-in configuration used when no config file
// is present.
func Default() *Config {
	return &Config{
		Port:                      54321,
		SSL:                       true,
		MigrationDowntime:         500,
		MigrationDowntimeSteps:    10,
		MigrationDowntimeDelay:    75000,
		MigrationMaxBandwidth:     32,
		MigrationMonitorInterval:  10,
		MigrationMaxTimePerGiBMem: 64,
		MigrationProgressTimeout:  150,
		MaxOutgoingMigrations:     1,
		MigrationCertDir:          "/etc/pki/kvm-host-agent",
		HooksDir:                  "/usr/libexec/kvm-host-agent/hooks",
	}
}

// Load reads the config file at path. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
		if env, ok := os.LookupEnv("HOST_AGENT_CONFIG"); ok {
			path = env
		}
	}

	file, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	vars := file.Section("vars")
	cfg.Port = vars.Key("port").MustInt(cfg.Port)
	cfg.SSL = vars.Key("ssl").MustBool(cfg.SSL)
	cfg.MigrationDowntime = vars.Key("migration_downtime").MustInt(cfg.MigrationDowntime)
	cfg.MigrationDowntimeSteps = vars.Key("migration_downtime_steps").MustInt(cfg.MigrationDowntimeSteps)
	cfg.MigrationDowntimeDelay = vars.Key("migration_downtime_delay").MustInt(cfg.MigrationDowntimeDelay)
	cfg.MigrationMaxBandwidth = vars.Key("migration_max_bandwidth").MustInt(cfg.MigrationMaxBandwidth)
	cfg.MigrationMonitorInterval = vars.Key("migration_monitor_interval").MustInt(cfg.MigrationMonitorInterval)
	cfg.MigrationMaxTimePerGiBMem = vars.Key("migration_max_time_per_gib_mem").MustInt(cfg.MigrationMaxTimePerGiBMem)
	cfg.MigrationProgressTimeout = vars.Key("migration_progress_timeout").MustInt(cfg.MigrationProgressTimeout)
	cfg.MaxOutgoingMigrations = vars.Key("max_outgoing_migrations").MustInt(cfg.MaxOutgoingMigrations)
	cfg.MigrationCertDir = vars.Key("migration_cert_dir").MustString(cfg.MigrationCertDir)
	cfg.HooksDir = vars.Key("hooks_dir").MustString(cfg.HooksDir)
	cfg.EvacuationTarget = vars.Key("evacuation_target").MustString(cfg.EvacuationTarget)

	if cfg.MigrationDowntimeSteps < 1 {
		return nil, fmt.Errorf("migration_downtime_steps must be >= 1, got %d", cfg.MigrationDowntimeSteps)
	}
	if cfg.MaxOutgoingMigrations < 1 {
		return nil, fmt.Errorf("max_outgoing_migrations must be >= 1, got %d", cfg.MaxOutgoingMigrations)
	}

	return cfg, nil
}
