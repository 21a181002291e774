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

package protocol

import (
	"sort"
	"strings"
	"sync"

	liberr "github.com/nabbar/golib/errors"
)

var (
	rgm sync.RWMutex
	rgf = make(map[string]FuncFactory)
)

// Register binds a factory to a protocol name. Names are case
// insensitive. Registering an empty name or a nil factory is ignored;
// registering a name twice replaces the previous factory.
func Register(name string, fct FuncFactory) {
	name = strings.ToLower(strings.TrimSpace(name))

	if name == "" || fct == nil {
		return
	}

	rgm.Lock()
	defer rgm.Unlock()

	rgf[name] = fct
}

// Exist reports whether a factory is registered under the given name.
func Exist(name string) bool {
	rgm.RLock()
	defer rgm.RUnlock()

	_, ok := rgf[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// List returns the sorted names of all registered protocols.
func List() []string {
	rgm.RLock()
	defer rgm.RUnlock()

	var res = make([]string, 0, len(rgf))

	for n := range rgf {
		res = append(res, n)
	}

	sort.Strings(res)
	return res
}

// New builds a plugin instance for one connection from the registered
// factory matching the given name.
func New(name string, role Role, opt map[string]interface{}) (Plugin, liberr.Error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if name == "" {
		return nil, ErrorParamEmpty.Error(nil)
	}

	rgm.RLock()
	fct, ok := rgf[name]
	rgm.RUnlock()

	if !ok {
		return nil, ErrorNotFound.Error(nil)
	}

	return fct(role, opt)
}
