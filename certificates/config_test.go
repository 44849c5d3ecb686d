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

package certificates_test

import (
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	libmap "github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	tlscfg "github.com/nabbar/svc-fabric/certificates"
	tlscpr "github.com/nabbar/svc-fabric/certificates/cipher"
	tlsvrs "github.com/nabbar/svc-fabric/certificates/tlsversion"
)

func TestConfigDecodeJSON(t *testing.T) {
	src := `{"versionMin":"TLS 1.2","versionMax":"TLS 1.3","cipherList":["TLS_AES_128_GCM_SHA256"]}`

	var c tlscfg.Config
	if e := json.Unmarshal([]byte(src), &c); e != nil {
		t.Fatalf("unexpected error: %v", e)
	}

	if c.VersionMin != tlsvrs.VersionTLS12 || c.VersionMax != tlsvrs.VersionTLS13 {
		t.Fatalf("unexpected versions: %+v", c)
	}
	if len(c.CipherList) != 1 || c.CipherList[0] != tlscpr.AES128_GCM {
		t.Fatalf("unexpected cipher list: %+v", c.CipherList)
	}
}

func TestConfigDecodeYAML(t *testing.T) {
	src := `
versionMin: "1.2"
versionMax: "1.3"
cipherList:
  - ECDHE-RSA-AES128-GCM-SHA256
`

	var c tlscfg.Config
	if e := yaml.Unmarshal([]byte(src), &c); e != nil {
		t.Fatalf("unexpected error: %v", e)
	}

	if c.VersionMin != tlsvrs.VersionTLS12 || c.VersionMax != tlsvrs.VersionTLS13 {
		t.Fatalf("unexpected versions: %+v", c)
	}
	if len(c.CipherList) != 1 || c.CipherList[0] != tlscpr.ECDHE_RSA_AES128_GCM {
		t.Fatalf("unexpected cipher list: %+v", c.CipherList)
	}
}

func TestConfigEncodeDecodeCBOR(t *testing.T) {
	in := tlscfg.Config{
		VersionMin: tlsvrs.VersionTLS12,
		VersionMax: tlsvrs.VersionTLS13,
		CipherList: []tlscpr.Cipher{tlscpr.CHACHA20_POLY1305},
	}

	b, e := cbor.Marshal(in)
	if e != nil {
		t.Fatalf("marshal failed: %v", e)
	}

	var out tlscfg.Config
	if e := cbor.Unmarshal(b, &out); e != nil {
		t.Fatalf("unmarshal failed: %v", e)
	}

	if out.VersionMin != in.VersionMin || out.VersionMax != in.VersionMax {
		t.Fatalf("version round trip mismatch: %+v", out)
	}
	if len(out.CipherList) != 1 || out.CipherList[0] != tlscpr.CHACHA20_POLY1305 {
		t.Fatalf("cipher round trip mismatch: %+v", out.CipherList)
	}
}

// A viper-style map decodes into Config through the subpackages' decode
// hooks, the path the embedding application's config loader takes.
func TestConfigDecodeMapWithViperHooks(t *testing.T) {
	src := map[string]interface{}{
		"versionMin": "TLS 1.2",
		"versionMax": "TLS 1.3",
		"cipherList": []string{"TLS_AES_256_GCM_SHA384"},
	}

	var c tlscfg.Config

	dec, e := libmap.NewDecoder(&libmap.DecoderConfig{
		Result: &c,
		DecodeHook: libmap.ComposeDecodeHookFunc(
			tlsvrs.ViperDecoderHook(),
			tlscpr.ViperDecoderHook(),
		),
	})
	if e != nil {
		t.Fatalf("decoder setup failed: %v", e)
	}

	if e := dec.Decode(src); e != nil {
		t.Fatalf("decode failed: %v", e)
	}

	if c.VersionMin != tlsvrs.VersionTLS12 || c.VersionMax != tlsvrs.VersionTLS13 {
		t.Fatalf("unexpected versions: %+v", c)
	}
	if len(c.CipherList) != 1 || c.CipherList[0] != tlscpr.AES256_GCM {
		t.Fatalf("unexpected cipher list: %+v", c.CipherList)
	}
}

func TestConfigValidateRejectsIncompletePair(t *testing.T) {
	c := tlscfg.Config{Certs: []tlscfg.Pair{{Key: "only a key"}}}

	if e := c.Validate(); e == nil {
		t.Fatalf("expected a validation error for a pair without a certificate")
	}
}

func TestConfigNewRejectsBadPair(t *testing.T) {
	c := tlscfg.Config{Certs: []tlscfg.Pair{{Key: "bad", Pub: "bad"}}}

	if _, e := c.New(); e == nil {
		t.Fatalf("expected an error for an unparsable pair")
	}
}
