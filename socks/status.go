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

package socks

// Status is the negotiation stage of one connection.
type Status uint8

const (
	// WaitingMethods expects the client greeting with its method list.
	WaitingMethods Status = iota
	// WaitingRequest expects the CONNECT request.
	WaitingRequest
	// HaveAddress holds a parsed target address; the caller is dialing.
	HaveAddress
	// SentReply means the final reply left; the negotiator is done.
	SentReply
)

// String returns a human readable form of the status.
func (s Status) String() string {
	switch s {
	case WaitingMethods:
		return "Waiting Methods"
	case WaitingRequest:
		return "Waiting Request"
	case HaveAddress:
		return "Have Address"
	case SentReply:
		return "Sent Reply"
	}

	return "unknown socks status"
}

// Result is the outcome of one Handle call.
type Result uint8

const (
	// ResultGood means progress was made; Handle may be called again.
	ResultGood Result = iota
	// ResultIncomplete means more input bytes are needed.
	ResultIncomplete
	// ResultBroken means negotiation cannot go on; close the connection.
	// Garbage input gets no reply; a greeting without the no-auth method
	// gets the 05 FF method reject appended to out first.
	ResultBroken
	// ResultCmdNotConnect means a well formed request carried a command
	// other than CONNECT; reply "command not supported" and close.
	ResultCmdNotConnect
)

// String returns a human readable form of the result.
func (r Result) String() string {
	switch r {
	case ResultGood:
		return "Good"
	case ResultIncomplete:
		return "Incomplete"
	case ResultBroken:
		return "Broken"
	case ResultCmdNotConnect:
		return "Command Not Connect"
	}

	return "unknown socks result"
}
