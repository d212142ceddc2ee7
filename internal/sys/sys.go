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

// Package sys holds host identity facts shared across the agent.
package sys

import "os"

// Hostname of the node this agent runs on. Overridable for tests.
var Hostname string

func init() {
	Hostname, _ = os.Hostname()
	if h, ok := os.LookupEnv("HOSTNAME"); ok && h != "" {
		Hostname = h
	}
}
