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

package dominfo

import (
	"encoding/xml"
	"testing"
)

func TestDomainInfoDeserialization(t *testing.T) {
	var domainInfo DomainInfo
	if err := xml.Unmarshal(exampleXML, &domainInfo); err != nil {
		t.Fatalf("Failed to unmarshal XML: %v", err)
	}

	if domainInfo.Type != "kvm" {
		t.Errorf("Expected domain type to be 'kvm', got '%s'", domainInfo.Type)
	}
	if domainInfo.ID != "42" {
		t.Errorf("Expected domain ID to be '42', got '%s'", domainInfo.ID)
	}
	if domainInfo.Name != "instance-00000042" {
		t.Errorf("Expected domain name 'instance-00000042', got '%s'", domainInfo.Name)
	}
	if domainInfo.UUID != "6695eb01-f6a4-8304-79aa-97f2502e193f" {
		t.Errorf("Unexpected domain UUID '%s'", domainInfo.UUID)
	}

	if domainInfo.Memory == nil {
		t.Fatal("Expected memory to be present")
	}
	if domainInfo.Memory.Unit != "KiB" || domainInfo.Memory.Value != 4194304 {
		t.Errorf("Unexpected memory %d %s", domainInfo.Memory.Value, domainInfo.Memory.Unit)
	}

	if domainInfo.VCPU == nil || domainInfo.VCPU.Value != 2 {
		t.Error("Expected 2 vcpus")
	}

	if domainInfo.Devices == nil {
		t.Fatal("Expected devices to be present")
	}
	if len(domainInfo.Devices.Disks) != 2 {
		t.Fatalf("Expected 2 disks, got %d", len(domainInfo.Devices.Disks))
	}
	if domainInfo.Devices.Disks[1].Device != "cdrom" {
		t.Errorf("Expected second disk to be a cdrom, got '%s'", domainInfo.Devices.Disks[1].Device)
	}
	if len(domainInfo.Devices.Interfaces) != 1 {
		t.Fatalf("Expected 1 interface, got %d", len(domainInfo.Devices.Interfaces))
	}
	if domainInfo.Devices.Interfaces[0].MAC.Address != "52:54:00:8c:34:1e" {
		t.Errorf("Unexpected MAC '%s'", domainInfo.Devices.Interfaces[0].MAC.Address)
	}
	if len(domainInfo.Devices.Graphics) != 1 {
		t.Fatalf("Expected 1 graphics device, got %d", len(domainInfo.Devices.Graphics))
	}
	if domainInfo.Devices.Graphics[0].Type != "spice" {
		t.Errorf("Expected spice graphics, got '%s'", domainInfo.Devices.Graphics[0].Type)
	}
}

func TestMemoryMiB(t *testing.T) {
	tests := []struct {
		name string
		mem  *DomainMemory
		want int
	}{
		{"nil", nil, 0},
		{"KiB", &DomainMemory{Unit: "KiB", Value: 4194304}, 4096},
		{"MiB", &DomainMemory{Unit: "MiB", Value: 2048}, 2048},
		{"GiB", &DomainMemory{Unit: "GiB", Value: 8}, 8192},
		{"unknown unit", &DomainMemory{Unit: "bytes", Value: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mem.MemoryMiB(); got != tt.want {
				t.Errorf("expected %d MiB, got %d", tt.want, got)
			}
		})
	}
}
