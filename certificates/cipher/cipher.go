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

// Package cipher defines the TLS cipher suites the fabric's service channel
// may offer. Only AEAD suites are listed; the channel carries short control
// messages between LAN peers and has no legacy-interop requirement.
package cipher

import (
	"crypto/tls"
	"strings"
)

// Cipher is a TLS cipher suite identifier, wrapping the crypto/tls
// constants.
type Cipher uint16

const (
	Unknown Cipher = 0

	// TLS 1.2 ECDHE suites, forward secrecy.
	ECDHE_RSA_AES128_GCM          = Cipher(tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256)
	ECDHE_RSA_AES256_GCM          = Cipher(tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384)
	ECDHE_ECDSA_AES128_GCM        = Cipher(tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256)
	ECDHE_ECDSA_AES256_GCM        = Cipher(tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384)
	ECDHE_RSA_CHACHA20_POLY1305   = Cipher(tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256)
	ECDHE_ECDSA_CHACHA20_POLY1305 = Cipher(tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256)

	// TLS 1.3 suites.
	AES128_GCM        = Cipher(tls.TLS_AES_128_GCM_SHA256)
	AES256_GCM        = Cipher(tls.TLS_AES_256_GCM_SHA384)
	CHACHA20_POLY1305 = Cipher(tls.TLS_CHACHA20_POLY1305_SHA256)
)

// List returns every supported suite.
func List() []Cipher {
	return []Cipher{
		ECDHE_RSA_AES128_GCM,
		ECDHE_RSA_AES256_GCM,
		ECDHE_ECDSA_AES128_GCM,
		ECDHE_ECDSA_AES256_GCM,
		ECDHE_RSA_CHACHA20_POLY1305,
		ECDHE_ECDSA_CHACHA20_POLY1305,
		AES128_GCM,
		AES256_GCM,
		CHACHA20_POLY1305,
	}
}

func (c Cipher) Uint16() uint16 {
	return uint16(c)
}

func (c Cipher) String() string {
	for _, s := range tls.CipherSuites() {
		if s.ID == c.Uint16() {
			return s.Name
		}
	}
	return ""
}

// Check reports whether c is one of the supported suites.
func Check(id uint16) bool {
	for _, c := range List() {
		if c.Uint16() == id {
			return true
		}
	}
	return false
}

// Parse maps a configuration spelling onto a Cipher: quotes are dropped,
// separators are unified, and the "TLS_"/"_WITH_" fillers of the IANA names
// are ignored, so both "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256" and the
// openssl-style "ECDHE-RSA-AES128-GCM-SHA256" parse.
func Parse(s string) Cipher {
	for _, c := range List() {
		if normalize(s) == normalize(c.String()) {
			return c
		}
	}

	return Unknown
}

func normalize(s string) string {
	s = strings.ToUpper(s)
	s = strings.NewReplacer("\"", "", "'", "", "-", "_", " ", "_", ".", "_").Replace(s)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "TLS_")
	return strings.NewReplacer("_WITH_", "_", "AES_128", "AES128", "AES_256", "AES256").Replace(s)
}
