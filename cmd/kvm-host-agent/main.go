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

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	api "github.com/virtstack/kvm-host-agent/api/v1alpha1"
	"github.com/virtstack/kvm-host-agent/internal/certificates"
	"github.com/virtstack/kvm-host-agent/internal/config"
	"github.com/virtstack/kvm-host-agent/internal/evacuation"
	"github.com/virtstack/kvm-host-agent/internal/hooks"
	"github.com/virtstack/kvm-host-agent/internal/kernel"
	"github.com/virtstack/kvm-host-agent/internal/libvirt"
	"github.com/virtstack/kvm-host-agent/internal/libvirt/dominfo"
	"github.com/virtstack/kvm-host-agent/internal/migration"
	"github.com/virtstack/kvm-host-agent/internal/sys"
	"github.com/virtstack/kvm-host-agent/internal/systemd"
	"github.com/virtstack/kvm-host-agent/internal/virt"
	"github.com/virtstack/kvm-host-agent/internal/volume"
)

func main() {
	var configPath string
	var metricsAddr string
	var emulate bool
	flag.StringVar(&configPath, "config", "", "Path to the agent configuration file.")
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8443", "The address the metrics endpoint binds to.")
	flag.BoolVar(&emulate, "emulate", false, "Run against emulated libvirt and systemd backends.")
	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	logger.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	log := logger.Log.WithName("agent")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, configPath, metricsAddr, emulate); err != nil {
		log.Error(err, "agent failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, log logr.Logger, configPath, metricsAddr string, emulate bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log.Info("configuration loaded", "host", sys.Hostname,
		"maxOutgoingMigrations", cfg.MaxOutgoingMigrations, "ssl", cfg.SSL)

	if params, err := kernel.NewSystemReader().ReadParameters(); err != nil {
		log.Error(err, "failed to read kernel parameters")
	} else {
		log.Info("kernel command line", "cmdline", params.CommandLine,
			"hugepages", params.Value("hugepages"))
	}

	// the slot capacity is fixed before any migration may start
	migration.SetMaxOutgoingMigrations(int64(cfg.MaxOutgoingMigrations))

	var hv libvirt.Interface
	var stats *libvirt.StatsCollector
	if emulate {
		hv = libvirt.NewLibVirtEmulator(ctx)
	} else {
		lv := libvirt.NewLibVirt()
		if err := lv.Connect(); err != nil {
			return fmt.Errorf("failed to connect to libvirt: %w", err)
		}
		defer func() { _ = lv.Close() }()
		hv = lv

		stats = libvirt.NewStatsCollector(lv)
		metrics.Registry.MustRegister(stats)
	}

	var tlsConf *tls.Config
	if cfg.SSL {
		if tlsConf, err = certificates.ClientTLSConfig(cfg.MigrationCertDir); err != nil {
			return fmt.Errorf("failed to load peer TLS material: %w", err)
		}
	}

	agent := &hostAgent{
		log:   log,
		cfg:   cfg,
		hv:    hv,
		stats: stats,
		hooks: hooks.NewScriptDispatcher(cfg.HooksDir),
		tls:   tlsConf,
	}

	var sd systemd.Interface
	if emulate {
		sd = systemd.NewSystemdEmulator(ctx)
	} else {
		guard, err := systemd.NewShutdownGuard(ctx)
		if err != nil {
			return fmt.Errorf("failed to connect to logind: %w", err)
		}
		defer guard.Close()
		sd = guard
	}

	evict := &evacuation.EvictionController{
		Target:     cfg.EvacuationTarget,
		RunningVMs: agent.runningVMs,
		Migrator:   agent,
	}
	if err := sd.HoldShutdown(ctx, evict); err != nil {
		log.Error(err, "failed to hold host shutdown")
	}
	defer func() {
		if err := sd.ReleaseShutdown(); err != nil {
			log.Error(err, "failed to release the shutdown guard")
		}
	}()

	server := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("serving metrics", "addr", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Error(err, "failed to notify systemd")
	}

	log.Info("agent ready")
	<-ctx.Done()
	log.Info("shutting down")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	return nil
}

// hostAgent binds the migration driver to the host's live VM handles.
type hostAgent struct {
	log   logr.Logger
	cfg   *config.Config
	hv    libvirt.Interface
	stats *libvirt.StatsCollector
	hooks hooks.Dispatcher
	tls   *tls.Config
}

// runningVMs enumerates the active domains on this host.
func (a *hostAgent) runningVMs() ([]string, error) {
	lv, ok := a.hv.(*libvirt.LibVirt)
	if !ok {
		return nil, nil
	}
	return lv.ListActiveDomainUUIDs()
}

// Migrate implements evacuation.Migrator: run one migration to its
// terminal status.
func (a *hostAgent) Migrate(ctx context.Context, req api.MigrationRequest) (api.MigrationStatus, error) {
	conf, err := a.domainConf(req.VMID)
	if err != nil {
		return api.MigrationStatus{}, err
	}

	vm := virt.NewVM(req.VMID, conf, virt.Options{
		Hypervisor: a.hv,
		Stats:      statsPauser(a.stats),
		Log:        a.log,
	})

	driver := migration.NewSourceDriver(vm, req, migration.Tunables{
		Port:             a.cfg.Port,
		SSL:              a.cfg.SSL,
		DowntimeMs:       a.cfg.MigrationDowntime,
		DowntimeSteps:    a.cfg.MigrationDowntimeSteps,
		DowntimeDelayMs:  a.cfg.MigrationDowntimeDelay,
		MaxBandwidthMiB:  a.cfg.MigrationMaxBandwidth,
		MonitorInterval:  time.Duration(a.cfg.MigrationMonitorInterval) * time.Second,
		MaxTimePerGiBMem: a.cfg.MigrationMaxTimePerGiBMem,
		ProgressTimeout:  time.Duration(a.cfg.MigrationProgressTimeout) * time.Second,
	}, migration.Deps{
		Hypervisor: a.hv,
		Hooks:      a.hooks,
		Volumes:    volume.LocalManager{},
		TLS:        a.tls,
	})

	driver.Start()
	driver.Wait()
	return driver.GetStat(), nil
}

// domainConf derives a minimal config map from the live domain XML.
func (a *hostAgent) domainConf(vmID string) (map[string]any, error) {
	domXML, err := a.hv.DescribeDomain(vmID)
	if err != nil {
		return nil, err
	}
	info, err := dominfo.Parse(domXML)
	if err != nil {
		return nil, err
	}
	conf := map[string]any{
		"vmName":  info.Name,
		"memSize": info.Memory.MemoryMiB(),
	}
	if info.Devices != nil && len(info.Devices.Graphics) > 0 {
		conf["display"] = info.Devices.Graphics[0].Type
	}
	return conf, nil
}

// statsPauser adapts the optional collector to the VM handle. A nil
// collector (emulated runs) disables the gates.
func statsPauser(c *libvirt.StatsCollector) virt.StatsPauser {
	if c == nil {
		return nil
	}
	return c
}
