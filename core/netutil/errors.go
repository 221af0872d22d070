// Package netutil classifies transport errors for logs and metrics.
package netutil

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
)

// Error kinds reported by Kind.
const (
	KindTimeout  = "timeout"
	KindCanceled = "canceled"
	KindDNS      = "dns"
	KindDial     = "dial"
	KindTLS      = "tls"
	KindNetwork  = "network"
	KindUnknown  = "unknown"
)

// Kind maps an error returned by an HTTP client call to a short label.
// A nil error yields an empty string.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return KindTimeout
		}
		if opErr.Op == "dial" {
			return KindDial
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	var alertErr tls.AlertError
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &alertErr) || errors.As(err, &certErr) || errors.As(err, &unknownAuth) {
		return KindTLS
	}

	return KindUnknown
}
