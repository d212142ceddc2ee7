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

// Package peer implements the RPC client towards a destination host
// agent. All calls return the {status:{code,message}} envelope; a
// transport failure is an error, a refusal is a non-zero status code.
package peer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	api "github.com/virtstack/kvm-host-agent/api/v1alpha1"
)

// Client is the control connection to a peer host agent.
type Client interface {
	// GetVmStats queries the peer for a VM. A zero status code means
	// the VM exists there.
	GetVmStats(ctx context.Context, vmID string) (*api.Response, error)

	// MigrationCreate asks the peer to prepare for an incoming
	// migration with the given machine params.
	MigrationCreate(ctx context.Context, params map[string]any) (*api.Response, error)

	// Destroy tears down a half-migrated VM on the peer.
	Destroy(ctx context.Context, vmID string) (*api.Response, error)

	// Close releases the connection.
	Close() error
}

// Dialer opens a Client towards hostport. TLS is used when tlsConf is
// non-nil.
type Dialer func(hostport string, tlsConf *tls.Config) (Client, error)

// CanonicalizeHostPort completes a destination spec with the default
// control port when none is given.
func CanonicalizeHostPort(dst string, defaultPort int) (string, error) {
	if dst == "" {
		return "", fmt.Errorf("empty destination")
	}
	if host, port, err := net.SplitHostPort(dst); err == nil && port != "" {
		return net.JoinHostPort(host, port), nil
	}
	// bare host, or bracketed IPv6 literal without a port
	host := dst
	if len(host) > 1 && host[0] == '[' && host[len(host)-1] == ']' {
		host = host[1 : len(host)-1]
	}
	return net.JoinHostPort(host, strconv.Itoa(defaultPort)), nil
}

// HTTPClient speaks the JSON host-agent protocol over HTTP(S).
type HTTPClient struct {
	base string
	http *http.Client
}

var _ Client = &HTTPClient{}

// Dial opens an HTTPClient towards hostport.
func Dial(hostport string, tlsConf *tls.Config) (Client, error) {
	scheme := "http"
	transport := &http.Transport{}
	if tlsConf != nil {
		scheme = "https"
		transport.TLSClientConfig = tlsConf
	}
	return &HTTPClient{
		base: fmt.Sprintf("%s://%s/api/v1alpha1", scheme, hostport),
		http: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}, nil
}

func (c *HTTPClient) GetVmStats(ctx context.Context, vmID string) (*api.Response, error) {
	return c.call(ctx, http.MethodGet, "/vms/"+vmID+"/stats", nil)
}

func (c *HTTPClient) MigrationCreate(ctx context.Context, params map[string]any) (*api.Response, error) {
	return c.call(ctx, http.MethodPost, "/migrations", params)
}

func (c *HTTPClient) Destroy(ctx context.Context, vmID string) (*api.Response, error) {
	return c.call(ctx, http.MethodDelete, "/vms/"+vmID, nil)
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) call(ctx context.Context, method, path string, body any) (*api.Response, error) {
	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("peer request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope api.Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode peer response: %w", err)
	}
	return &envelope, nil
}
