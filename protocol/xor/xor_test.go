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

package xor_test

import (
	"bytes"

	liberr "github.com/nabbar/golib/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	stgptc "github.com/sysrqb/stegotorus/protocol"
	"github.com/sysrqb/stegotorus/protocol/xor"
)

func newPair(key string) (cli, srv stgptc.Plugin) {
	var (
		err liberr.Error
		opt = map[string]interface{}{"key": key}
	)

	cli, err = stgptc.New(xor.Name, stgptc.RoleClient, opt)
	Expect(err).To(BeNil())

	srv, err = stgptc.New(xor.Name, stgptc.RoleServer, opt)
	Expect(err).To(BeNil())

	return cli, srv
}

var _ = Describe("Xor Protocol", func() {
	Context("options", func() {
		It("should refuse a missing key", func() {
			p, err := stgptc.New(xor.Name, stgptc.RoleClient, nil)

			Expect(p).To(BeNil())
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(stgptc.ErrorInvalidOptions)).To(BeTrue())
		})

		It("should refuse an empty key", func() {
			p, err := stgptc.New(xor.Name, stgptc.RoleClient, map[string]interface{}{"key": ""})

			Expect(p).To(BeNil())
			Expect(err).ToNot(BeNil())
		})
	})

	Context("handshake prelude", func() {
		It("should be emitted by the client end only", func() {
			cli, srv := newPair("sekrit")

			cbu := &bytes.Buffer{}
			Expect(cli.Handshake(cbu)).To(Succeed())
			Expect(cbu.Len()).To(Equal(4))

			sbu := &bytes.Buffer{}
			Expect(srv.Handshake(sbu)).To(Succeed())
			Expect(sbu.Len()).To(Equal(0))
		})

		It("should be consumed by the server before any payload", func() {
			cli, srv := newPair("sekrit")

			wire := &bytes.Buffer{}
			Expect(cli.Handshake(wire)).To(Succeed())
			Expect(cli.Send(bytes.NewBufferString("ping"), wire)).To(Succeed())

			rcv := &bytes.Buffer{}
			res, err := srv.Recv(wire, rcv)

			Expect(err).To(BeNil())
			Expect(res).To(Equal(stgptc.RecvOK))
			Expect(rcv.String()).To(Equal("ping"))
		})

		It("should reject a corrupted prelude", func() {
			_, srv := newPair("sekrit")

			wire := bytes.NewBuffer([]byte{0xDE, 0xAD, 0xBE, 0xEF, 'p', 'i', 'n', 'g'})
			rcv := &bytes.Buffer{}

			res, err := srv.Recv(wire, rcv)

			Expect(err).To(BeNil())
			Expect(res).To(Equal(stgptc.RecvBad))
		})

		It("should survive a prelude split across reads", func() {
			cli, srv := newPair("sekrit")

			wire := &bytes.Buffer{}
			Expect(cli.Handshake(wire)).To(Succeed())

			var (
				all = wire.Bytes()
				rcv = &bytes.Buffer{}
			)

			res, err := srv.Recv(bytes.NewBuffer(all[:2]), rcv)
			Expect(err).To(BeNil())
			Expect(res).To(Equal(stgptc.RecvOK))

			res, err = srv.Recv(bytes.NewBuffer(all[2:]), rcv)
			Expect(err).To(BeNil())
			Expect(res).To(Equal(stgptc.RecvOK))
			Expect(rcv.Len()).To(Equal(0))
		})
	})

	Context("round trip", func() {
		It("should recover the exact payload across chunk boundaries", func() {
			cli, srv := newPair("k3y")

			wire := &bytes.Buffer{}
			Expect(cli.Handshake(wire)).To(Succeed())

			var msg []byte
			for _, part := range []string{"hello ", "wor", "ld, this is a longer payload"} {
				msg = append(msg, part...)
				Expect(cli.Send(bytes.NewBufferString(part), wire)).To(Succeed())
			}

			rcv := &bytes.Buffer{}
			res, err := srv.Recv(wire, rcv)

			Expect(err).To(BeNil())
			Expect(res).To(Equal(stgptc.RecvOK))
			Expect(rcv.Bytes()).To(Equal(msg))
		})

		It("should actually transform the wire bytes", func() {
			cli, _ := newPair("k3y")

			wire := &bytes.Buffer{}
			Expect(cli.Send(bytes.NewBufferString("cleartext"), wire)).To(Succeed())
			Expect(wire.String()).ToNot(Equal("cleartext"))
		})

		It("should round trip the reverse direction independently", func() {
			cli, srv := newPair("k3y")

			wire := &bytes.Buffer{}
			Expect(srv.Send(bytes.NewBufferString("pong"), wire)).To(Succeed())

			rcv := &bytes.Buffer{}
			res, err := cli.Recv(wire, rcv)

			Expect(err).To(BeNil())
			Expect(res).To(Equal(stgptc.RecvOK))
			Expect(rcv.String()).To(Equal("pong"))
		})
	})
})
