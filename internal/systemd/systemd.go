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

// Package systemd holds the logind shutdown guard of the agent. While
// the guard is held, a host poweroff is delayed until the running VMs
// have been migrated to the standby peer and no outbound migration
// still holds a slot.
package systemd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"syscall"

	"github.com/godbus/dbus/v5"
	logger "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/virtstack/kvm-host-agent/internal/migration"
)

const (
	login1Dest      = "org.freedesktop.login1"
	login1Path      = "/org/freedesktop/login1"
	login1Manager   = "org.freedesktop.login1.Manager"
	inhibitWhat     = "shutdown"
	inhibitWho      = "kvm-host-agent"
	inhibitWhy      = "Live-migrating virtual machines to the standby host."
	shutdownSignal  = "PrepareForShutdown"
	inhibitModeWait = "delay"
)

// ShutdownGuard delays host shutdown while VMs can still be drained.
type ShutdownGuard struct {
	conn    *dbus.Conn
	login1  dbus.BusObject
	signals chan *dbus.Signal
	doneCh  chan struct{}

	mu sync.Mutex
	// inhibitor file descriptor handed out by logind; -1 when the
	// guard is not held
	fd int
}

var _ Interface = &ShutdownGuard{}

// login1 only accepts EXTERNAL or anonymous auth on the private
// system bus, so the default session handshake cannot be used.
func dialSystemBus() (*dbus.Conn, error) {
	conn, err := dbus.SystemBusPrivate()
	if err != nil {
		return nil, err
	}
	methods := []dbus.Auth{
		dbus.AuthExternal("0"),
		dbus.AuthExternal(strconv.Itoa(os.Getuid())),
		dbus.AuthAnonymous(),
	}
	if err = conn.Auth(methods); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err = conn.Hello(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// NewShutdownGuard connects to logind.
func NewShutdownGuard(ctx context.Context) (*ShutdownGuard, error) {
	log := logger.FromContext(ctx)
	log.Info("Connecting to logind for shutdown inhibition")

	conn, err := dialSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to dbus: %w", err)
	}

	return &ShutdownGuard{
		conn:    conn,
		login1:  conn.Object(login1Dest, login1Path),
		signals: make(chan *dbus.Signal, 1),
		doneCh:  make(chan struct{}),
		fd:      -1,
	}, nil
}

// HoldShutdown takes the delay inhibitor and arms the drain sequence:
// on PrepareForShutdown the drainer evicts all running guests, then
// the guard waits until no outbound migration holds a slot before it
// lets the shutdown continue.
func (g *ShutdownGuard) HoldShutdown(ctx context.Context, drainer Drainer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fd != -1 {
		return fmt.Errorf("shutdown already held")
	}

	log := logger.Log.WithName("systemd")
	if err := g.login1.CallWithContext(
		ctx,
		login1Manager+".Inhibit",
		0,
		inhibitWhat,
		inhibitWho,
		inhibitWhy,
		inhibitModeWait,
	).Store(&g.fd); err != nil {
		return fmt.Errorf("failed to take shutdown inhibitor: %w", err)
	}
	log.Info("holding host shutdown while VMs can be drained", "fd", g.fd)

	if err := g.conn.AddMatchSignal(
		dbus.WithMatchInterface(login1Manager),
		dbus.WithMatchObjectPath(login1Path),
		dbus.WithMatchMember(shutdownSignal),
	); err != nil {
		_ = g.releaseLocked()
		return fmt.Errorf("failed to match %s: %w", shutdownSignal, err)
	}
	g.conn.Signal(g.signals)

	go g.watch(drainer, g.doneCh)
	return nil
}

// watch waits for the shutdown announcement and runs the drain
// sequence exactly once.
func (g *ShutdownGuard) watch(drainer Drainer, done <-chan struct{}) {
	log := logger.Log.WithName("systemd")
	for {
		select {
		case <-done:
			return
		case sig, ok := <-g.signals:
			if !ok {
				log.Info("logind signal channel closed")
				return
			}
			// PrepareForShutdown fires with false again when a
			// shutdown is cancelled
			if len(sig.Body) == 1 {
				if starting, ok := sig.Body[0].(bool); ok && !starting {
					log.Info("shutdown cancelled, keeping the guard")
					continue
				}
			}

			log.Info("host is going down, draining virtual machines")
			ctx := context.Background()
			if err := drainer.EvictCurrentHost(ctx); err != nil {
				log.Error(err, "failed to drain the host")
			}
			// migrations submitted by other callers may still be in
			// flight; do not drop the inhibitor under them
			if err := migration.Quiesce(ctx); err != nil {
				log.Error(err, "failed to wait for outbound migrations")
			}

			if err := g.ReleaseShutdown(); err != nil {
				log.Error(err, "failed to release the shutdown guard")
			}
			return
		}
	}
}

// ReleaseShutdown gives the inhibitor back without draining.
func (g *ShutdownGuard) ReleaseShutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.releaseLocked()
}

func (g *ShutdownGuard) releaseLocked() error {
	if g.fd == -1 {
		// nothing held
		return nil
	}
	logger.Log.WithName("systemd").Info("releasing the shutdown guard")

	g.conn.RemoveSignal(g.signals)
	close(g.doneCh)
	g.doneCh = make(chan struct{})

	if err := syscall.Close(g.fd); err != nil {
		return fmt.Errorf("failed to close inhibitor fd: %w", err)
	}
	g.fd = -1
	return nil
}

func (g *ShutdownGuard) Close() {
	_ = g.conn.Close()
}

func (g *ShutdownGuard) IsConnected() bool {
	return g.conn.Connected()
}
