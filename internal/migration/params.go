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
	"encoding/json"
	"fmt"
	"os"
)

// Config map key holding the in-flight migration parameters. Present
// only between slot acquisition and finalization.
const confKeyMigrationParams = "_migrationParams"

// Params stripped before the machine params are sent or persisted.
var transientParams = []string{"displayIp", "display", "pid"}

// patchConfigForLegacy reshapes the machine params for old
// destinations: cdrom and floppy drives move from the drives list to
// top-level path fields, and afterMigrationStatus must exist.
func patchConfigForLegacy(params map[string]any) {
	// care only about the "drives" list, since "devices" doesn't
	// cause errors
	if rawDrives, ok := params["drives"]; ok {
		drives := toDriveList(rawDrives)
		for _, item := range []string{"cdrom", "floppy"} {
			newDrives := make([]map[string]any, 0, len(drives))
			for _, drive := range drives {
				if drive["device"] == item {
					params[item] = drive["path"]
				} else {
					newDrives = append(newDrives, drive)
				}
			}
			drives = newDrives
		}
		params["drives"] = drives
	}

	// destinations older than the status rework expect this to exist
	params["afterMigrationStatus"] = ""
}

func toDriveList(raw any) []map[string]any {
	switch drives := raw.(type) {
	case []map[string]any:
		return drives
	case []any:
		out := make([]map[string]any, 0, len(drives))
		for _, d := range drives {
			if m, ok := d.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// stripTransientParams removes the fields that must not survive a
// state save.
func stripTransientParams(params map[string]any) {
	for _, key := range transientParams {
		delete(params, key)
	}
}

// writeParamsFile serializes the machine params to the prepared volume
// path. JSON keeps the file readable by any agent version.
func writeParamsFile(path string, params map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create state params file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(params); err != nil {
		return fmt.Errorf("failed to write state params file: %w", err)
	}
	return f.Sync()
}
