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
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	tlscfg "github.com/nabbar/svc-fabric/certificates"
	tlsvrs "github.com/nabbar/svc-fabric/certificates/tlsversion"
)

// genPair generates a throwaway self-signed RSA pair in PEM form.
func genPair(t *testing.T) (key, crt string) {
	t.Helper()

	pk, e := rsa.GenerateKey(rand.Reader, 2048)
	if e != nil {
		t.Fatalf("generate key: %v", e)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"test"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		BasicConstraintsValid: true,
	}

	der, e := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &pk.PublicKey, pk)
	if e != nil {
		t.Fatalf("create certificate: %v", e)
	}

	keyDER, e := x509.MarshalPKCS8PrivateKey(pk)
	if e != nil {
		t.Fatalf("marshal key: %v", e)
	}

	key = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}))
	crt = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	return key, crt
}

func TestAddCertificatePairString(t *testing.T) {
	key, crt := genPair(t)

	cfg := tlscfg.New()
	if e := cfg.AddCertificatePairString(key, crt); e != nil {
		t.Fatalf("unexpected error: %v", e)
	}

	if cfg.LenCertificatePair() != 1 {
		t.Fatalf("expected one stored pair, got %d", cfg.LenCertificatePair())
	}

	cnf := cfg.TLS("")
	if len(cnf.Certificates) != 1 {
		t.Fatalf("expected one certificate in the tls.Config, got %d", len(cnf.Certificates))
	}
	if cnf.MinVersion != tls.VersionTLS12 || cnf.MaxVersion != tls.VersionTLS13 {
		t.Fatalf("unexpected default versions: min=%x max=%x", cnf.MinVersion, cnf.MaxVersion)
	}
}

func TestAddCertificatePairStringRejectsGarbage(t *testing.T) {
	cfg := tlscfg.New()

	if e := cfg.AddCertificatePairString("", ""); e == nil {
		t.Fatalf("expected an error for empty input")
	}
	if e := cfg.AddCertificatePairString("not a key", "not a cert"); e == nil {
		t.Fatalf("expected an error for non-PEM input")
	}
	if cfg.LenCertificatePair() != 0 {
		t.Fatalf("expected no pair stored after failed adds")
	}
}

func TestTLSServerName(t *testing.T) {
	cfg := tlscfg.New()

	if got := cfg.TLS("fabric.local").ServerName; got != "fabric.local" {
		t.Fatalf("got server name %q", got)
	}
	if got := cfg.TLS("").ServerName; got != "" {
		t.Fatalf("expected empty server name, got %q", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	key, crt := genPair(t)

	cfg := tlscfg.New()
	if e := cfg.AddCertificatePairString(key, crt); e != nil {
		t.Fatalf("unexpected error: %v", e)
	}

	cp := cfg.Clone()
	cp.CleanCertificatePair()
	cp.SetVersionMin(tlsvrs.VersionTLS10)

	if cfg.LenCertificatePair() != 1 {
		t.Fatalf("clone mutation leaked into the original pair list")
	}
	if cfg.GetVersionMin() != tlsvrs.VersionTLS12 {
		t.Fatalf("clone mutation leaked into the original version")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	key, crt := genPair(t)

	cfg := tlscfg.New()
	if e := cfg.AddCertificatePairString(key, crt); e != nil {
		t.Fatalf("unexpected error: %v", e)
	}
	cfg.SetVersionMin(tlsvrs.VersionTLS13)

	doc := cfg.Config()
	if len(doc.Certs) != 1 || doc.VersionMin != tlsvrs.VersionTLS13 {
		t.Fatalf("unexpected materialized config: %+v", doc)
	}

	back, e := doc.New()
	if e != nil {
		t.Fatalf("rebuilding from config failed: %v", e)
	}

	if back.LenCertificatePair() != 1 || back.GetVersionMin() != tlsvrs.VersionTLS13 {
		t.Fatalf("round trip lost state")
	}
}
