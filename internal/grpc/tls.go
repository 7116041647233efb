// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package grpc

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/samber/oops"
)

// LoadClientTLS builds a TLS configuration for the identity service. An empty
// caFile trusts the system roots; otherwise only the PEM certificates in
// caFile are trusted.
func LoadClientTLS(caFile, serverName string) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,
	}
	if caFile == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(caFile) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, oops.Code("TLS_CA_READ_FAILED").With("path", caFile).Wrap(err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, oops.Code("TLS_CA_INVALID").With("path", caFile).Errorf("no certificates found in %s", caFile)
	}
	cfg.RootCAs = pool
	return cfg, nil
}
