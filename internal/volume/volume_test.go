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

package volume

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareVolumePathCreatesParent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "saves", "vm-1", "state.img")

	path, err := LocalManager{}.PrepareVolumePath(target)
	if err != nil {
		t.Fatalf("PrepareVolumePath() returned unexpected error: %v", err)
	}
	if path != target {
		t.Errorf("expected %s, got %s", target, path)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Errorf("expected parent directory to exist: %v", err)
	}
}

func TestPrepareVolumePathRejectsBadParams(t *testing.T) {
	for _, params := range []string{"", "relative/path"} {
		t.Run(params, func(t *testing.T) {
			if _, err := (LocalManager{}).PrepareVolumePath(params); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestTeardownVolumePath(t *testing.T) {
	if err := (LocalManager{}).TeardownVolumePath("/whatever"); err != nil {
		t.Errorf("TeardownVolumePath() returned unexpected error: %v", err)
	}
}
