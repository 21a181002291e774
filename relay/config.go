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
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"

	stgptc "github.com/sysrqb/stegotorus/protocol"
)

// Config describes one listener. It is passed by value to
// Engine.NewListener: on failure the constructor owns nothing and the
// caller just inspects the returned error.
type Config struct {
	// Name identifies the listener in logs. Optional; defaults to the
	// bind address.
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name"`

	// Mode selects the listener behavior, see the Mode type.
	Mode Mode `mapstructure:"mode" json:"mode" yaml:"mode" toml:"mode"`

	// Bind is the local listen address, as host:port. Port 0 picks an
	// ephemeral port.
	Bind string `mapstructure:"bind" json:"bind" yaml:"bind" toml:"bind" validate:"required"`

	// Target is the fixed remote address for the simple modes. It must
	// be absent in SOCKS mode, where targets are resolved per
	// connection.
	Target string `mapstructure:"target" json:"target" yaml:"target" toml:"target" validate:"omitempty,hostname_port"`

	// Protocol names the registered obfuscation protocol applied on the
	// wire.
	Protocol string `mapstructure:"protocol" json:"protocol" yaml:"protocol" toml:"protocol" validate:"required"`

	// Options is the opaque protocol configuration blob handed to the
	// plugin factory.
	Options map[string]interface{} `mapstructure:"options" json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`

	// IdleTimeout closes a connection after this much read inactivity
	// on either side. Zero disables the timeout.
	IdleTimeout libdur.Duration `mapstructure:"idleTimeout" json:"idleTimeout,omitempty" yaml:"idleTimeout,omitempty" toml:"idleTimeout,omitempty"`
}

// GetName returns the configured name or the bind address as fallback.
func (c Config) GetName() string {
	if c.Name != "" {
		return c.Name
	}

	return c.Bind
}

// Validate checks field constraints and the cross field rules binding
// mode, target and protocol.
func (c Config) Validate() liberr.Error {
	val := validator.New()
	err := val.Struct(c)

	if e, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorValidatorError.ErrorParent(e)
	}

	out := ErrorConfigInvalid.Error(nil)

	if v, ok := err.(validator.ValidationErrors); ok {
		for _, e := range v {
			//nolint goerr113
			out.AddParent(fmt.Errorf("config field '%s' is not validated by constraint '%s'", e.Field(), e.ActualTag()))
		}
	}

	if c.Bind != "" {
		if _, p, e := net.SplitHostPort(c.Bind); e != nil {
			//nolint goerr113
			out.AddParent(fmt.Errorf("config field 'Bind' is not a host:port address"))
		} else if _, e = strconv.ParseUint(p, 10, 16); e != nil {
			//nolint goerr113
			out.AddParent(fmt.Errorf("config field 'Bind' has an invalid port '%s'", p))
		}
	}

	if !c.Mode.IsValid() {
		//nolint goerr113
		out.AddParent(fmt.Errorf("config field 'Mode' must be one of client, server, socks"))
	} else if c.Mode.HasFixedTarget() && c.Target == "" {
		//nolint goerr113
		out.AddParent(fmt.Errorf("config field 'Target' is required in mode '%s'", c.Mode))
	} else if !c.Mode.HasFixedTarget() && c.Target != "" {
		//nolint goerr113
		out.AddParent(fmt.Errorf("config field 'Target' is forbidden in mode '%s'", c.Mode))
	}

	if c.Protocol != "" && !stgptc.Exist(c.Protocol) {
		//nolint goerr113
		out.AddParent(fmt.Errorf("config field 'Protocol' references unknown protocol '%s'", c.Protocol))
	}

	if out.HasParent() {
		return out
	}

	return nil
}
