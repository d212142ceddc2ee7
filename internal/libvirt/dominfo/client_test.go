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

func TestNewClient(t *testing.T) {
	client := NewClient()
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
}

func TestClientEmulator_Get_Success(t *testing.T) {
	client := NewClientEmulator()

	// The emulator doesn't actually use the libvirt connection,
	// so we pass nil to test it doesn't panic
	domainInfos, err := client.Get(nil)
	if err != nil {
		t.Fatalf("Get() returned unexpected error: %v", err)
	}

	if len(domainInfos) != 1 {
		t.Fatalf("Expected 1 domain info from emulator, got %d", len(domainInfos))
	}
	if domainInfos[0].Name == "" {
		t.Error("Expected domain to have a name")
	}
	if domainInfos[0].UUID == "" {
		t.Error("Expected domain to have a UUID")
	}
}

func TestClientEmulator_Get_ValidXML(t *testing.T) {
	client := NewClientEmulator()
	domainInfos, err := client.Get(nil)
	if err != nil {
		t.Fatalf("Get() returned unexpected error: %v", err)
	}

	var testInfo DomainInfo
	if err := xml.Unmarshal(exampleXML, &testInfo); err != nil {
		t.Fatalf("Failed to unmarshal example XML: %v", err)
	}

	if domainInfos[0].Name != testInfo.Name {
		t.Errorf("Expected domain name '%s', got '%s'", testInfo.Name, domainInfos[0].Name)
	}
	if domainInfos[0].UUID != testInfo.UUID {
		t.Errorf("Expected domain UUID '%s', got '%s'", testInfo.UUID, domainInfos[0].UUID)
	}
}

func TestParse(t *testing.T) {
	info, err := Parse(string(exampleXML))
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}
	if info.Memory.MemoryMiB() != 4096 {
		t.Errorf("Expected 4096 MiB, got %d", info.Memory.MemoryMiB())
	}
}

func TestParseInvalidXML(t *testing.T) {
	if _, err := Parse("<domain"); err == nil {
		t.Error("Expected error for invalid XML, got nil")
	}
}
