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

package certificates

import (
	"crypto/tls"
	"os"
	"strings"
)

func (o *config) LenCertificatePair() int {
	return len(o.cert)
}

func (o *config) CleanCertificatePair() {
	o.cert = make([]pair, 0)
}

func (o *config) GetCertificatePair() []tls.Certificate {
	res := make([]tls.Certificate, 0, len(o.cert))

	for _, p := range o.cert {
		res = append(res, p.tls)
	}

	return res
}

func (o *config) AddCertificatePairString(key, crt string) error {
	key = strings.TrimSpace(key)
	crt = strings.TrimSpace(crt)

	if key == "" || crt == "" {
		return ErrorParamsEmpty.Error(nil)
	}

	c, e := tls.X509KeyPair([]byte(crt), []byte(key))
	if e != nil {
		return ErrorCertKeyPairParse.Error(e)
	}

	o.cert = append(o.cert, pair{pem: Pair{Key: key, Pub: crt}, tls: c})
	return nil
}

func (o *config) AddCertificatePairFile(keyFile, crtFile string) error {
	key, e := readPEMFile(keyFile)
	if e != nil {
		return e
	}

	crt, e := readPEMFile(crtFile)
	if e != nil {
		return e
	}

	return o.AddCertificatePairString(key, crt)
}

func readPEMFile(path string) (string, error) {
	if path == "" {
		return "", ErrorParamsEmpty.Error(nil)
	}

	if _, e := os.Stat(path); e != nil {
		return "", ErrorFileStat.Error(e)
	}

	/* #nosec G304 -- path comes from the operator's own configuration */
	b, e := os.ReadFile(path)
	if e != nil {
		return "", ErrorFileRead.Error(e)
	}

	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", ErrorFileEmpty.Error(nil)
	}

	return s, nil
}
