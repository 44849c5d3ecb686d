/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package errors_test

import (
	stderr "errors"
	"fmt"

	. "github.com/nabbar/svc-fabric/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Code Registration", func() {
	It("should resolve a registered code to its message", func() {
		Expect(testCodeRefused.Message()).To(Equal("peer refused the request"))
		Expect(testCodeTimeout.Message()).To(Equal("peer timed out"))
	})

	It("should resolve codes through the highest covering range", func() {
		Expect(testCodeOther.Message()).To(Equal("other range"))
	})

	It("should resolve the zero code to an empty message", func() {
		Expect(UNK_ERROR.Message()).To(BeEmpty())
	})

	It("should resolve a code below every registered range to an empty message", func() {
		Expect(CodeError(1).Message()).To(BeEmpty())
	})
})

var _ = Describe("Coded Errors", func() {
	It("should render the code and registered message", func() {
		err := testCodeRefused.Error(nil)
		Expect(err.Error()).To(Equal(fmt.Sprintf("[Error #%d] peer refused the request", testCodeRefused.Uint16())))
	})

	It("should carry its code", func() {
		err := testCodeTimeout.Error(nil)
		Expect(err.Code()).To(Equal(testCodeTimeout))
		Expect(err.IsCode(testCodeTimeout)).To(BeTrue())
		Expect(err.IsCode(testCodeRefused)).To(BeFalse())
	})

	It("should not record a nil parent", func() {
		err := testCodeRefused.Error(nil)
		Expect(err.HasParent()).To(BeFalse())
	})

	It("should record and expose parent causes", func() {
		cause := stderr.New("connection reset")
		err := testCodeRefused.Error(cause)

		Expect(err.HasParent()).To(BeTrue())
		Expect(stderr.Is(err, cause)).To(BeTrue())
	})

	It("should append parents through Add", func() {
		err := testCodeRefused.Error(nil)
		cause := stderr.New("late cause")

		err.Add(nil, cause)

		Expect(err.HasParent()).To(BeTrue())
		Expect(stderr.Is(err, cause)).To(BeTrue())
	})
})

var _ = Describe("New", func() {
	It("should keep an explicit message over the registered one", func() {
		err := New(testCodeRefused.Uint16(), "refused: line 42")

		Expect(err.IsCode(testCodeRefused)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("line 42"))
		Expect(err.Error()).ToNot(ContainSubstring("peer refused"))
	})

	It("should attach parents given at construction", func() {
		cause := stderr.New("root cause")
		err := New(testCodeTimeout.Uint16(), "timed out", cause)

		Expect(err.HasParent()).To(BeTrue())
		Expect(stderr.Is(err, cause)).To(BeTrue())
	})
})
