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

// Step is the lifecycle stage of one connection. A connection is in
// exactly one step at any time, and steps only move forward.
type Step uint8

const (
	// StepNegotiating runs the SOCKS5 exchange; SOCKS mode only. The
	// output channel does not exist yet.
	StepNegotiating Step = iota
	// StepConnecting waits for the output channel dial to complete.
	StepConnecting
	// StepOpen shuttles bytes in both directions through the plugin.
	StepOpen
	// StepFlushing drains the surviving side's write buffer after the
	// other side failed or hit end of stream.
	StepFlushing
	// StepClosed is terminal; both sockets and the plugin are released.
	StepClosed
)

// String returns a human readable form of the step.
func (s Step) String() string {
	switch s {
	case StepNegotiating:
		return "Negotiating"
	case StepConnecting:
		return "Connecting"
	case StepOpen:
		return "Open"
	case StepFlushing:
		return "Flushing"
	case StepClosed:
		return "Closed"
	}

	return "unknown connection step"
}
