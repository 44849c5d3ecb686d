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
	"fmt"

	libval "github.com/go-playground/validator/v10"

	tlscpr "github.com/nabbar/svc-fabric/certificates/cipher"
	tlsvrs "github.com/nabbar/svc-fabric/certificates/tlsversion"
	liberr "github.com/nabbar/svc-fabric/errors"
)

// Pair is one PEM key/certificate pair in its source form.
type Pair struct {
	Key string `mapstructure:"key" json:"key" yaml:"key" toml:"key" cbor:"key" validate:"required"`
	Pub string `mapstructure:"pub" json:"pub" yaml:"pub" toml:"pub" cbor:"pub" validate:"required"`
}

// Config is the marshalable form of a TLSConfig, decodable from JSON, YAML,
// TOML and CBOR documents as well as from a viper/mapstructure map (use the
// subpackages' ViperDecoderHook for the enum fields).
type Config struct {
	Certs                []Pair          `mapstructure:"certs" json:"certs" yaml:"certs" toml:"certs" cbor:"certs" validate:"omitempty,dive"`
	CipherList           []tlscpr.Cipher `mapstructure:"cipherList" json:"cipherList" yaml:"cipherList" toml:"cipherList" cbor:"cipherList"`
	VersionMin           tlsvrs.Version  `mapstructure:"versionMin" json:"versionMin" yaml:"versionMin" toml:"versionMin" cbor:"versionMin"`
	VersionMax           tlsvrs.Version  `mapstructure:"versionMax" json:"versionMax" yaml:"versionMax" toml:"versionMax" cbor:"versionMax"`
	DynamicSizingDisable bool            `mapstructure:"dynamicSizingDisable" json:"dynamicSizingDisable" yaml:"dynamicSizingDisable" toml:"dynamicSizingDisable" cbor:"dynamicSizingDisable"`
	SessionTicketDisable bool            `mapstructure:"sessionTicketDisable" json:"sessionTicketDisable" yaml:"sessionTicketDisable" toml:"sessionTicketDisable" cbor:"sessionTicketDisable"`
}

// Validate checks the struct constraints, collecting every violated field
// into one error.
func (c *Config) Validate() liberr.Error {
	err := ErrorValidatorError.Error(nil)

	if er := libval.New().Struct(c); er != nil {
		if e, ok := er.(*libval.InvalidValidationError); ok {
			err.Add(e)
		}

		for _, e := range er.(libval.ValidationErrors) {
			//nolint goerr113
			err.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.StructNamespace(), e.ActualTag()))
		}
	}

	if err.HasParent() {
		return err
	}

	return nil
}

// New builds a TLSConfig from the decoded document: unknown versions fall
// back to the defaults, unknown ciphers are skipped, and every certificate
// pair must parse.
func (c *Config) New() (TLSConfig, error) {
	cfg := New()

	if c.VersionMin.Check() {
		cfg.SetVersionMin(c.VersionMin)
	}

	if c.VersionMax.Check() {
		cfg.SetVersionMax(c.VersionMax)
	}

	for _, s := range c.CipherList {
		if tlscpr.Check(s.Uint16()) {
			cfg.AddCiphers(s)
		}
	}

	cfg.SetDynamicSizingDisabled(c.DynamicSizingDisable)
	cfg.SetSessionTicketDisabled(c.SessionTicketDisable)

	for _, p := range c.Certs {
		if e := cfg.AddCertificatePairString(p.Key, p.Pub); e != nil {
			return nil, e
		}
	}

	return cfg, nil
}
