/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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
 */

package relay

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.Code()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	*m = Parse(string(b))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m Mode) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.Code())), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Mode) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(strings.TrimSpace(string(b)))
	if err != nil {
		s = string(b)
	}

	*m = Parse(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.Code(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string

	if err := unmarshal(&s); err != nil {
		return err
	}

	*m = Parse(s)
	return nil
}

// MarshalTOML implements toml.Marshaler.
func (m Mode) MarshalTOML() ([]byte, error) {
	return []byte(strconv.Quote(m.Code())), nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (m *Mode) UnmarshalTOML(i interface{}) error {
	switch v := i.(type) {
	case string:
		*m = Parse(v)
	case []byte:
		*m = Parse(string(v))
	case int64:
		*m = ParseInt(int(v))
	default:
		return fmt.Errorf("invalid mode value '%v'", i)
	}

	return nil
}

// ViperDecoderHook returns a mapstructure decode hook converting config
// values into a Mode, whatever scalar type the config backend produced.
func ViperDecoderHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		var m = ModeEmpty

		if to != reflect.TypeOf(m) || data == nil {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			m = Parse(v)
		case []byte:
			m = Parse(string(v))
		case int:
			m = ParseInt(v)
		case int8, int16, int32, int64:
			m = ParseInt(int(reflect.ValueOf(v).Int()))
		case uint, uint8, uint16, uint32, uint64:
			m = ParseInt(int(reflect.ValueOf(v).Uint()))
		default:
			return data, nil
		}

		return m, nil
	}
}
