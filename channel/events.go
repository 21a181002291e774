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

package channel

// Event is a channel state notification delivered to the event handler.
type Event uint8

const (
	// EventConnected is fired once when an asynchronous Connect succeeds.
	EventConnected Event = iota
	// EventEOF is fired when the peer half-closed the stream.
	EventEOF
	// EventError is fired on any socket error, dial failure included.
	EventError
	// EventTimeout is fired when the inactivity timeout elapsed.
	EventTimeout
)

// String returns a human readable form of the event.
func (e Event) String() string {
	switch e {
	case EventConnected:
		return "Connected"
	case EventEOF:
		return "End Of Stream"
	case EventError:
		return "Socket Error"
	case EventTimeout:
		return "Inactivity Timeout"
	}

	return "unknown channel event"
}
