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

package virt

// Guest session states reported through the agent channel.
const (
	SessionLocked    = "Locked"
	SessionLoggedOff = "LoggedOff"
	SessionActive    = "Active"
)

// GuestAgent is the in-guest agent channel of a VM. A VM without an
// agent, or with a stale one, reports unresponsive and lock requests
// become fire-and-forget.
type GuestAgent interface {
	// IsResponsive reports whether the guest agent answered recently.
	IsResponsive() bool

	// DesktopLock asks the guest to lock the interactive session. The
	// request is asynchronous; observe the session state via stats.
	DesktopLock() error
}
