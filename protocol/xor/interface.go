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

// Package xor implements a keyed XOR stream obfuscation protocol with a
// fixed four byte client to server prelude. It is not a security
// mechanism: the point is to exercise the full plugin contract (options
// decoding, handshake prelude ordering, stateful recv) with a transform
// whose round trip is trivially verifiable.
package xor

import (
	"github.com/mitchellh/mapstructure"
	liberr "github.com/nabbar/golib/errors"

	stgptc "github.com/sysrqb/stegotorus/protocol"
)

// Name is the registry name of this protocol.
const Name = "xor"

// Options is the typed form of the protocol options blob.
type Options struct {
	// Key is the XOR keystream, repeated over the payload. Required.
	Key string `mapstructure:"key" json:"key" yaml:"key" toml:"key"`
}

func init() {
	stgptc.Register(Name, New)
}

// New decodes the options blob and returns a keyed XOR plugin instance.
func New(role stgptc.Role, opt map[string]interface{}) (stgptc.Plugin, liberr.Error) {
	var cfg Options

	if err := mapstructure.Decode(opt, &cfg); err != nil {
		return nil, stgptc.ErrorInvalidOptions.ErrorParent(err)
	}

	if len(cfg.Key) == 0 {
		return nil, stgptc.ErrorInvalidOptions.Error(nil)
	}

	return &xrk{
		rol: role,
		key: []byte(cfg.Key),
	}, nil
}
