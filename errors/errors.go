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

// Package errors carries the fabric's coded errors: every error a fabric
// component hands upward pairs a numeric code from a reserved package
// range (modules.go) with a registered message and an optional chain of
// parent causes. Only the top-level code and message are rendered by
// Error(); parents stay reachable through Unwrap for errors.Is/As.
package errors

import "fmt"

// pattern renders a coded error as e.g. "[Error #3900] invalid or missing
// configuration".
const pattern = "[Error #%d] %s"

// Error is a coded error with an optional parent chain.
type Error interface {
	error

	// Code returns the numeric code this error carries.
	Code() CodeError

	// IsCode reports whether this error carries the given code.
	IsCode(code CodeError) bool

	// Add appends non-nil parents to the cause chain.
	Add(parent ...error)

	// HasParent reports whether at least one parent cause is attached.
	HasParent() bool

	// Unwrap exposes the parent chain to the stdlib errors helpers.
	Unwrap() []error
}

// New builds an Error from a raw code and an explicit message, bypassing
// the registered message table. Callers that need a detail the table
// cannot carry (a line number, a peer address) render it into message
// themselves.
func New(code uint16, message string, parent ...error) Error {
	return newError(CodeError(code), message, parent...)
}

type ers struct {
	code    CodeError
	message string
	parents []error
}

func newError(code CodeError, message string, parent ...error) *ers {
	e := &ers{code: code, message: message}
	e.Add(parent...)
	return e
}

func (e *ers) Error() string {
	return fmt.Sprintf(pattern, e.code.Uint16(), e.message)
}

func (e *ers) Code() CodeError {
	return e.code
}

func (e *ers) IsCode(code CodeError) bool {
	return e.code == code
}

func (e *ers) Add(parent ...error) {
	for _, p := range parent {
		if p != nil {
			e.parents = append(e.parents, p)
		}
	}
}

func (e *ers) HasParent() bool {
	return len(e.parents) > 0
}

func (e *ers) Unwrap() []error {
	return e.parents
}
