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

// Package certificates loads the TLS material used for peer host-agent
// connections. Provisioning and rotation happen outside the agent; we
// only consume the PEM files dropped into the configured directory.
package certificates

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

// Canonical file names inside the certificate directory.
const (
	CACertFile = "cacert.pem"
	CertFile   = "cert.pem"
	KeyFile    = "key.pem"
)

// ClientTLSConfig builds the client-side TLS config for peer
// connections from the PEM material in dir.
func ClientTLSConfig(dir string) (*tls.Config, error) {
	caPEM, err := os.ReadFile(filepath.Join(dir, CACertFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("no CA certificates found in %s", filepath.Join(dir, CACertFile))
	}

	cert, err := tls.LoadX509KeyPair(
		filepath.Join(dir, CertFile),
		filepath.Join(dir, KeyFile),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load client key pair: %w", err)
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
