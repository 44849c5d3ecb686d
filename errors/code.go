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

package errors

import "sort"

// CodeError is a numeric error code. Each package owning codes reserves a
// range in modules.go and registers one message function covering it, so a
// bare code maps back to a package and a human-readable message.
type CodeError uint16

// UNK_ERROR is the zero code: no registered package owns it and its
// message is always empty.
const UNK_ERROR CodeError = 0

// Message resolves a code to its registered message.
type Message func(code CodeError) string

var (
	idMsgFct map[CodeError]Message
	idMsgOrd []CodeError
)

// RegisterIdFctMessage registers fct as the message function for the code
// range starting at minCode. A code resolves through the function with the
// highest registered minCode not above it, mirroring how the ranges in
// modules.go nest. Re-registering a range replaces its function.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	if idMsgFct == nil {
		idMsgFct = make(map[CodeError]Message)
	}

	idMsgFct[minCode] = fct

	idMsgOrd = idMsgOrd[:0]
	for c := range idMsgFct {
		idMsgOrd = append(idMsgOrd, c)
	}
	sort.Slice(idMsgOrd, func(i, j int) bool {
		return idMsgOrd[i] > idMsgOrd[j]
	})
}

func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// Message returns the registered message for this code, or an empty string
// when no registered range covers it.
func (c CodeError) Message() string {
	if c == UNK_ERROR {
		return ""
	}

	for _, min := range idMsgOrd {
		if c >= min {
			return idMsgFct[min](c)
		}
	}

	return ""
}

// Error builds an Error carrying this code, its registered message, and
// any non-nil parents.
func (c CodeError) Error(p ...error) Error {
	return newError(c, c.Message(), p...)
}
