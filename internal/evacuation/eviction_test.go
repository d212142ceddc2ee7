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

package evacuation

import (
	"context"
	"errors"
	"testing"

	api "github.com/virtstack/kvm-host-agent/api/v1alpha1"
)

type fakeMigrator struct {
	requests []api.MigrationRequest
	status   api.MigrationStatus
	err      error
}

func (f *fakeMigrator) Migrate(_ context.Context, req api.MigrationRequest) (api.MigrationStatus, error) {
	f.requests = append(f.requests, req)
	return f.status, f.err
}

func TestEvictSkipsWithoutTarget(t *testing.T) {
	m := &fakeMigrator{}
	e := &EvictionController{
		RunningVMs: func() ([]string, error) { return []string{"a"}, nil },
		Migrator:   m,
	}

	if err := e.EvictCurrentHost(context.Background()); err != nil {
		t.Fatalf("EvictCurrentHost() returned unexpected error: %v", err)
	}
	if len(m.requests) != 0 {
		t.Errorf("expected no migrations, got %d", len(m.requests))
	}
}

func TestEvictSkipsEmptyHost(t *testing.T) {
	m := &fakeMigrator{}
	e := &EvictionController{
		Target:     "standby-host-01",
		RunningVMs: func() ([]string, error) { return nil, nil },
		Migrator:   m,
	}

	if err := e.EvictCurrentHost(context.Background()); err != nil {
		t.Fatalf("EvictCurrentHost() returned unexpected error: %v", err)
	}
	if len(m.requests) != 0 {
		t.Errorf("expected no migrations, got %d", len(m.requests))
	}
}

func TestEvictMigratesEveryVM(t *testing.T) {
	m := &fakeMigrator{}
	e := &EvictionController{
		Target:     "standby-host-01",
		RunningVMs: func() ([]string, error) { return []string{"vm-1", "vm-2"}, nil },
		Migrator:   m,
	}

	if err := e.EvictCurrentHost(context.Background()); err != nil {
		t.Fatalf("EvictCurrentHost() returned unexpected error: %v", err)
	}
	if len(m.requests) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(m.requests))
	}
	for _, req := range m.requests {
		if req.Destination != "standby-host-01" {
			t.Errorf("expected destination standby-host-01, got %s", req.Destination)
		}
		if req.Mode != api.MigrationModeRemote || req.Method != api.MigrationMethodOnline {
			t.Errorf("unexpected mode/method %s/%s", req.Mode, req.Method)
		}
	}
}

func TestEvictReportsFailures(t *testing.T) {
	m := &fakeMigrator{status: api.MigrationStatus{Status: api.Status{Code: 12, Message: "boom"}}}
	e := &EvictionController{
		Target:     "standby-host-01",
		RunningVMs: func() ([]string, error) { return []string{"vm-1"}, nil },
		Migrator:   m,
	}

	if err := e.EvictCurrentHost(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestEvictEnumerationFailure(t *testing.T) {
	e := &EvictionController{
		Target:     "standby-host-01",
		RunningVMs: func() ([]string, error) { return nil, errors.New("libvirt down") },
		Migrator:   &fakeMigrator{},
	}

	if err := e.EvictCurrentHost(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}
