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

//go:generate moq -out systemd_mock.go . Interface

package systemd

import (
	"context"
)

// Drainer empties the host of running guests. The shutdown guard runs
// it when logind announces the host is going down.
type Drainer interface {
	// EvictCurrentHost migrates all running VMs away. Allowed to
	// block up to the logind inhibit delay.
	EvictCurrentHost(ctx context.Context) error
}

type Interface interface {
	// Close closes the connection to the logind D-Bus API.
	Close()

	// IsConnected returns true if the connection to the logind D-Bus API is open.
	IsConnected() bool

	// HoldShutdown takes a delay inhibitor on the host shutdown. When
	// PrepareForShutdown fires, the drainer evicts the guests, the
	// guard waits for outbound migrations to quiesce, and the
	// inhibitor is released so the shutdown can proceed.
	HoldShutdown(ctx context.Context, drainer Drainer) error

	// ReleaseShutdown gives the inhibitor back without draining.
	ReleaseShutdown() error
}
