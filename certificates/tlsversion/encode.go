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

package tlsversion

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	libmap "github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Version) UnmarshalJSON(b []byte) error {
	*v = ParseBytes(b)
	return nil
}

func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

func (v *Version) UnmarshalYAML(value *yaml.Node) error {
	*v = Parse(value.Value)
	return nil
}

func (v Version) MarshalTOML() ([]byte, error) {
	return []byte("\"" + v.String() + "\""), nil
}

func (v *Version) UnmarshalTOML(i interface{}) error {
	switch p := i.(type) {
	case []byte:
		*v = ParseBytes(p)
	case string:
		*v = Parse(p)
	default:
		return fmt.Errorf("tls version: value not in valid format")
	}
	return nil
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(b []byte) error {
	*v = ParseBytes(b)
	return nil
}

func (v Version) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(v.String())
}

func (v *Version) UnmarshalCBOR(b []byte) error {
	var t string
	if e := cbor.Unmarshal(b, &t); e != nil {
		return e
	}
	*v = Parse(t)
	return nil
}

// ViperDecoderHook maps configuration strings onto Version values during a
// mapstructure decode, leaving any non-matching input untouched.
func ViperDecoderHook() libmap.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		var z Version

		if from.Kind() != reflect.String || reflect.TypeOf(z) != to {
			return data, nil
		}

		t, k := data.(string)
		if !k {
			return data, nil
		}

		if z = Parse(t); z == VersionUnknown {
			return data, nil
		}

		return z, nil
	}
}
