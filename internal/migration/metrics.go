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
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	migrationsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "migrations_active",
			Help: "Number of outbound migrations currently holding a slot.",
		},
	)
	migrationProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "migration_progress_percent",
			Help: "Progress of the running outbound migration per VM.",
		},
		[]string{"vm"},
	)
	migrationStallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migration_stalls_total",
			Help: "How many monitor samples regressed above the low watermark.",
		},
		[]string{"vm"},
	)
	migrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migrations_total",
			Help: "Finished outbound migrations by mode and result.",
		},
		[]string{"mode", "result"},
	)
)

func init() {
	metrics.Registry.MustRegister(migrationsActive)
	metrics.Registry.MustRegister(migrationProgress)
	metrics.Registry.MustRegister(migrationStallsTotal)
	metrics.Registry.MustRegister(migrationsTotal)
}
