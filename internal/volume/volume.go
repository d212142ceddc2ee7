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

// Package volume resolves opaque volume parameters to local paths for
// state files. Provisioning backends (block storage, shared
// filesystems) are out of scope; the local implementation covers
// host-local save targets.
package volume

import (
	"fmt"
	"os"
	"path/filepath"

	logger "sigs.k8s.io/controller-runtime/pkg/log"
)

// Manager prepares and tears down volume paths. Teardown must be
// invoked on every exit path once Prepare succeeded.
type Manager interface {
	// PrepareVolumePath resolves the opaque volume params to a
	// writable local path.
	PrepareVolumePath(params string) (string, error)

	// TeardownVolumePath releases whatever PrepareVolumePath set up.
	// Best-effort; errors are reported but paths must end up released.
	TeardownVolumePath(params string) error
}

// LocalManager maps volume params directly onto the host filesystem.
type LocalManager struct{}

var _ Manager = LocalManager{}

func (LocalManager) PrepareVolumePath(params string) (string, error) {
	if params == "" {
		return "", fmt.Errorf("empty volume params")
	}
	if !filepath.IsAbs(params) {
		return "", fmt.Errorf("volume params %q is not an absolute path", params)
	}
	if err := os.MkdirAll(filepath.Dir(params), 0o750); err != nil {
		return "", fmt.Errorf("failed to prepare volume path %s: %w", params, err)
	}
	return params, nil
}

func (LocalManager) TeardownVolumePath(params string) error {
	// nothing to release for plain files; keep the trace for parity
	// with managed backends
	logger.Log.V(1).Info("volume path torn down", "params", params)
	return nil
}
