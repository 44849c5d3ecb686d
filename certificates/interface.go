/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package certificates builds the *tls.Config used by the fabric's service
// channel. The channel's trust model is deliberate: the server presents an
// ephemeral self-signed certificate and the client does not verify it —
// peer identity is established by the application token handshake, TLS only
// provides confidentiality and tamper resistance. This package therefore
// manages certificate pairs, protocol versions and cipher suites, but no
// CA pools and no client-certificate authentication.
//
// Subpackages:
//   - cipher: cipher suite selection and parsing
//   - tlsversion: protocol version selection and parsing
package certificates

import (
	"crypto/tls"
	"io"

	tlscpr "github.com/nabbar/svc-fabric/certificates/cipher"
	tlsvrs "github.com/nabbar/svc-fabric/certificates/tlsversion"
)

// TLSConfig accumulates certificate material and policy, then materializes
// it into a *tls.Config. Implementations are not safe for concurrent
// mutation; build the config once, then share the result.
type TLSConfig interface {
	// RegisterRand sets the source of randomness used by the TLS session;
	// nil keeps crypto/rand.
	RegisterRand(rand io.Reader)

	// AddCertificatePairString parses a PEM key/certificate pair and adds
	// it to the pair list.
	AddCertificatePairString(key, crt string) error

	// AddCertificatePairFile reads PEM key/certificate files and adds the
	// parsed pair to the pair list.
	AddCertificatePairFile(keyFile, crtFile string) error

	// LenCertificatePair returns the number of stored pairs.
	LenCertificatePair() int

	// CleanCertificatePair drops all stored pairs.
	CleanCertificatePair()

	// GetCertificatePair returns the stored pairs as tls.Certificate
	// values.
	GetCertificatePair() []tls.Certificate

	SetVersionMin(v tlsvrs.Version)
	GetVersionMin() tlsvrs.Version
	SetVersionMax(v tlsvrs.Version)
	GetVersionMax() tlsvrs.Version

	SetCipherList(c []tlscpr.Cipher)
	AddCiphers(c ...tlscpr.Cipher)
	GetCiphers() []tlscpr.Cipher

	SetDynamicSizingDisabled(flag bool)
	SetSessionTicketDisabled(flag bool)

	// Clone returns an independent copy.
	Clone() TLSConfig

	// Config materializes the current state into the marshalable Config
	// struct.
	Config() *Config

	// TLS builds a *tls.Config. serverName, if non-empty, is used for SNI
	// on the client side; it has no effect server side.
	TLS(serverName string) *tls.Config
}

// New returns a TLSConfig with the fabric defaults: TLS 1.2 minimum,
// TLS 1.3 maximum, no pinned cipher list.
func New() TLSConfig {
	return &config{
		cert:          make([]pair, 0),
		cipherList:    make([]tlscpr.Cipher, 0),
		tlsMinVersion: tlsvrs.VersionTLS12,
		tlsMaxVersion: tlsvrs.VersionTLS13,
	}
}
