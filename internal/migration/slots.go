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

	"golang.org/x/sync/semaphore"
)

// ongoingMigrations caps concurrent outbound migrations process-wide.
// Each driver holds one slot between the post-prepare acquire and its
// final release.
var (
	ongoingMigrations = semaphore.NewWeighted(1)
	slotCapacity      = int64(1)
)

// SetMaxOutgoingMigrations replaces the global migration slot with one
// of the given capacity.
//
// Must not be called after any migration has been started.
func SetMaxOutgoingMigrations(n int64) {
	ongoingMigrations = semaphore.NewWeighted(n)
	slotCapacity = n
}

// Quiesce blocks until no outbound migration holds a slot, then
// immediately gives the capacity back. Used while the host drains
// before shutdown; new migrations may still start afterwards.
func Quiesce(ctx context.Context) error {
	if err := ongoingMigrations.Acquire(ctx, slotCapacity); err != nil {
		return err
	}
	ongoingMigrations.Release(slotCapacity)
	return nil
}
