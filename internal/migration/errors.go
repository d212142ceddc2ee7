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

import "errors"

// Terminal status codes of the migration status surface. The numeric
// values are part of the management protocol and must not change.
const (
	// CodeExist - the VM already exists on the destination.
	CodeExist = 4
	// CodeNoConPeer - the destination host agent is unreachable.
	CodeNoConPeer = 10
	// CodeMigrateErr - generic failure during the transfer.
	CodeMigrateErr = 12
	// CodeMigCancelErr - the migration was aborted.
	CodeMigCancelErr = 45
)

// Default operator-facing messages per terminal code.
const (
	msgExist      = "Virtual machine already exists"
	msgNoConPeer  = "Could not connect to the destination host agent"
	msgMigrateErr = "Fatal error during migration"
	msgCanceled   = "Migration canceled"
)

// errVMExistsOnPeer aborts the lifecycle before any local state was
// touched; the driver skips recovery for it.
var errVMExistsOnPeer = errors.New("machine already exists on the destination")
