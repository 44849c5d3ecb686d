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

// Package tlsversion defines the TLS protocol versions the fabric's service
// channel may negotiate, with parsing from the usual configuration
// spellings ("1.2", "tls1.2", "TLS 1.2").
package tlsversion

import (
	"crypto/tls"
	"strings"
)

// Version is a TLS protocol version, wrapping the crypto/tls constants.
type Version int

const (
	VersionUnknown Version = iota

	VersionTLS10 = Version(tls.VersionTLS10)
	VersionTLS11 = Version(tls.VersionTLS11)
	VersionTLS12 = Version(tls.VersionTLS12)
	VersionTLS13 = Version(tls.VersionTLS13)
)

// List returns the known versions, highest first.
func List() []Version {
	return []Version{VersionTLS13, VersionTLS12, VersionTLS11, VersionTLS10}
}

func (v Version) String() string {
	switch v {
	case VersionTLS10:
		return "TLS 1.0"
	case VersionTLS11:
		return "TLS 1.1"
	case VersionTLS12:
		return "TLS 1.2"
	case VersionTLS13:
		return "TLS 1.3"
	default:
		return ""
	}
}

// TLS returns the crypto/tls constant for this version, 0 for unknown.
func (v Version) TLS() uint16 {
	switch v {
	case VersionTLS10, VersionTLS11, VersionTLS12, VersionTLS13:
		return uint16(v)
	default:
		return 0
	}
}

// Check reports whether v is one of the known versions.
func (v Version) Check() bool {
	return v.TLS() != 0
}

// Parse maps a configuration spelling onto a Version. Quotes, a "tls"
// prefix, spaces and dashes are stripped, so "TLS 1.2", "tls-1.2" and
// "1.2" all parse the same. Unrecognized input yields VersionUnknown.
func Parse(s string) Version {
	s = strings.ToLower(s)
	s = strings.NewReplacer("\"", "", "'", "", "tls", "", " ", "", "-", "", "_", "").Replace(s)
	s = strings.TrimSpace(s)

	switch s {
	case "1", "1.0", "10":
		return VersionTLS10
	case "1.1", "11":
		return VersionTLS11
	case "1.2", "12":
		return VersionTLS12
	case "1.3", "13":
		return VersionTLS13
	default:
		return VersionUnknown
	}
}

// ParseBytes is Parse for raw (possibly quoted) bytes.
func ParseBytes(b []byte) Version {
	return Parse(string(b))
}
