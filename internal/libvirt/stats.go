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

package libvirt

import (
	"sync"

	"github.com/digitalocean/go-libvirt"
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/virtstack/kvm-host-agent/internal/libvirt/dominfo"
)

// StatsCollector exposes per-domain statistics as prometheus metrics.
// Sampling of a single domain can be paused while its state is being
// serialized, so a save does not race the collector on the domain.
type StatsCollector struct {
	lv *LibVirt

	mu     sync.Mutex
	paused map[string]struct{}
}

var _ prometheus.Collector = &StatsCollector{}

func NewStatsCollector(lv *LibVirt) *StatsCollector {
	return &StatsCollector{
		lv:     lv,
		paused: make(map[string]struct{}),
	}
}

// Pause stops sampling the domain with the given UUID.
func (c *StatsCollector) Pause(vmID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused[vmID] = struct{}{}
}

// Cont resumes sampling the domain with the given UUID.
func (c *StatsCollector) Cont(vmID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.paused, vmID)
}

func (c *StatsCollector) isPaused(vmID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.paused[vmID]
	return ok
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- libvirtDomainInfoMaxMemBytesDesc
	ch <- libvirtDomainInfoMemoryUsageBytesDesc
	ch <- libvirtDomainInfoNrVirtCPUDesc
	ch <- libvirtDomainInfoCPUTimeDesc
	ch <- libvirtDomainInfoVirDomainState
	ch <- libvirtDomainMetaBlockDesc
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	if !c.lv.IsConnected() {
		return
	}

	domains, _, err := c.lv.virt.ConnectListAllDomains(1, libvirt.ConnectListDomainsActive)
	if err != nil {
		log.Log.Error(err, "failed to list domains for stats collection")
		return
	}

	for _, domain := range domains {
		if c.isPaused(DomainUUID(domain)) {
			continue
		}
		c.collectDomainStats(ch, domain)
		c.collectBlockStats(ch, domain)
	}
}

func (c *StatsCollector) collectDomainStats(ch chan<- prometheus.Metric, domain libvirt.Domain) {
	state, maxmem, rmem, nvir, cputime, err := c.lv.virt.DomainGetInfo(domain)
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(
		libvirtDomainInfoMaxMemBytesDesc,
		prometheus.GaugeValue,
		float64(maxmem)*1024,
		domain.Name)
	ch <- prometheus.MustNewConstMetric(
		libvirtDomainInfoMemoryUsageBytesDesc,
		prometheus.GaugeValue,
		float64(rmem)*1024,
		domain.Name)
	ch <- prometheus.MustNewConstMetric(
		libvirtDomainInfoNrVirtCPUDesc,
		prometheus.GaugeValue,
		float64(nvir),
		domain.Name)
	ch <- prometheus.MustNewConstMetric(
		libvirtDomainInfoCPUTimeDesc,
		prometheus.CounterValue,
		float64(cputime)/1000/1000/1000, // From nsec to sec
		domain.Name)
	ch <- prometheus.MustNewConstMetric(
		libvirtDomainInfoVirDomainState,
		prometheus.GaugeValue,
		float64(state),
		domain.Name)
}

func (c *StatsCollector) collectBlockStats(ch chan<- prometheus.Metric, domain libvirt.Domain) {
	xmlDesc, err := c.lv.virt.DomainGetXMLDesc(domain, 0)
	if err != nil {
		return
	}
	info, err := dominfo.Parse(xmlDesc)
	if err != nil || info.Devices == nil {
		return
	}

	for _, disk := range info.Devices.Disks {
		if disk.Target == nil {
			continue
		}
		var path string
		if disk.Source != nil {
			path = disk.Source.File
		}
		ch <- prometheus.MustNewConstMetric(
			libvirtDomainMetaBlockDesc,
			prometheus.GaugeValue,
			float64(1),
			domain.Name,
			disk.Target.Dev,
			path,
			disk.Target.Bus,
		)
	}
}
