package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"time"

	tlscfg "github.com/nabbar/svc-fabric/certificates"
)

const rsaKeyBits = 2048

// EphemeralServerTLS generates a fresh RSA-2048 key and self-signed X.509
// certificate, in memory only, and returns a server-side *tls.Config built
// through certificates.TLSConfig. No certificate or key ever touches disk.
func EphemeralServerTLS() (*tls.Config, error) {
	key, e := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if e != nil {
		return nil, e
	}

	serial, e := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if e != nil {
		return nil, e
	}

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"fabric"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	der, e := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if e != nil {
		return nil, e
	}

	keyDER, e := x509.MarshalPKCS8PrivateKey(key)
	if e != nil {
		return nil, e
	}

	crtPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	cnf := tlscfg.New()
	if e = cnf.AddCertificatePairString(string(keyPEM), string(crtPEM)); e != nil {
		return nil, e
	}

	return cnf.TLS(""), nil
}

// ClientTLSConfig returns a client-side *tls.Config that skips peer
// certificate verification: authentication is established by the
// application-level token handshake, not by PKI.
func ClientTLSConfig() *tls.Config {
	cnf := tlscfg.New().TLS("")
	cnf.InsecureSkipVerify = true
	return cnf
}
