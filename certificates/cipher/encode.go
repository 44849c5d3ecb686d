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

package cipher

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	libmap "github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

func (c Cipher) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Cipher) UnmarshalJSON(b []byte) error {
	*c = Parse(strings.Trim(string(b), "\""))
	return nil
}

func (c Cipher) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *Cipher) UnmarshalYAML(value *yaml.Node) error {
	*c = Parse(value.Value)
	return nil
}

func (c Cipher) MarshalTOML() ([]byte, error) {
	return []byte("\"" + c.String() + "\""), nil
}

func (c *Cipher) UnmarshalTOML(i interface{}) error {
	switch p := i.(type) {
	case []byte:
		*c = Parse(string(p))
	case string:
		*c = Parse(p)
	default:
		return fmt.Errorf("tls cipher: value not in valid format")
	}
	return nil
}

func (c Cipher) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cipher) UnmarshalText(b []byte) error {
	*c = Parse(string(b))
	return nil
}

func (c Cipher) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(c.String())
}

func (c *Cipher) UnmarshalCBOR(b []byte) error {
	var t string
	if e := cbor.Unmarshal(b, &t); e != nil {
		return e
	}
	*c = Parse(t)
	return nil
}

// ViperDecoderHook maps configuration strings onto Cipher values during a
// mapstructure decode, leaving any non-matching input untouched.
func ViperDecoderHook() libmap.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		var z Cipher

		if from.Kind() != reflect.String || reflect.TypeOf(z) != to {
			return data, nil
		}

		t, k := data.(string)
		if !k {
			return data, nil
		}

		if z = Parse(t); z == Unknown {
			return data, nil
		}

		return z, nil
	}
}
