// Copyright (c) 2022 Exograd SAS.
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that the above
// copyright notice and this permission notice appear in all copies.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
// ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR
// IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.


package check

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
)

type Checker struct {
	Pointer Pointer
	Errors  ValidationErrors
}

type Object interface {
	Check(*Checker)
}

type ValidationError struct {
	Pointer Pointer `json:"pointer"`
	Message string  `json:"message"`
}

type ValidationErrors []*ValidationError

func (err ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", err.Pointer, err.Message)
}

func (errs ValidationErrors) Error() string {
	var buf bytes.Buffer
	for i, err := range errs {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(err.Error())
	}
	return buf.String()
}

func NewChecker() *Checker {
	return &Checker{}
}

// CheckObject runs the checks of obj and returns the resulting errors, or
// nil if there are none.
func CheckObject(obj Object) error {
	c := NewChecker()
	obj.Check(c)
	return c.Error()
}

func (c *Checker) Error() error {
	if len(c.Errors) == 0 {
		return nil
	}

	return c.Errors
}

func (c *Checker) WithChild(tokenOrIndex interface{}, fn func()) {
	var token string
	switch v := tokenOrIndex.(type) {
	case string:
		token = v
	case int:
		token = strconv.Itoa(v)
	default:
		panicf("invalid token %#v (%T)", v, v)
	}

	c.Pointer = append(c.Pointer, token)
	defer func() {
		c.Pointer = c.Pointer[:len(c.Pointer)-1]
	}()

	fn()
}

func (c *Checker) AddError(token string, format string, args ...interface{}) {
	err := ValidationError{
		Pointer: c.Pointer.Child(token),
		Message: fmt.Sprintf(format, args...),
	}

	c.Errors = append(c.Errors, &err)
}

func (c *Checker) Check(token string, v bool, format string, args ...interface{}) bool {
	if !v {
		c.AddError(token, format, args...)
	}

	return v
}

func (c *Checker) CheckIntMin(token string, i, min int) bool {
	return c.Check(token, i >= min,
		"integer %d must be greater or equal to %d", i, min)
}

func (c *Checker) CheckIntMax(token string, i, max int) bool {
	return c.Check(token, i <= max,
		"integer %d must be lower or equal to %d", i, max)
}

func (c *Checker) CheckIntMinMax(token string, i, min, max int) bool {
	if !c.CheckIntMin(token, i, min) {
		return false
	}

	return c.CheckIntMax(token, i, max)
}

func (c *Checker) CheckPort(token string, port int) bool {
	return c.Check(token, port >= 1 && port <= 65535,
		"port %d must be between 1 and 65535", port)
}

func (c *Checker) CheckStringNotEmpty(token string, s string) bool {
	return c.Check(token, s != "", "string must not be empty")
}

// CheckStringMap checks that neither keys nor values of m are empty, as
// required for tag sets.
func (c *Checker) CheckStringMap(token string, m map[string]string) bool {
	ok := true

	c.WithChild(token, func() {
		for k, v := range m {
			if !c.Check(k, k != "", "key must not be empty") {
				ok = false
				continue
			}

			ok = c.CheckStringNotEmpty(k, v) && ok
		}
	})

	return ok
}

func (c *Checker) CheckArrayNotEmpty(token string, value interface{}) bool {
	valueType := reflect.TypeOf(value)
	if valueType == nil {
		return c.Check(token, false, "array must not be empty")
	}

	var length int

	switch valueType.Kind() {
	case reflect.Slice, reflect.Array:
		length = reflect.ValueOf(value).Len()
	default:
		panicf("value %#v (%T) is not a slice or array", value, value)
	}

	return c.Check(token, length > 0, "array must not be empty")
}

func (c *Checker) CheckOptionalObject(token string, value interface{}) bool {
	if isNilObject(value) {
		return true
	}

	return c.doCheckObject(token, value)
}

func (c *Checker) CheckObject(token string, value interface{}) bool {
	if !c.Check(token, !isNilObject(value), "missing value") {
		return false
	}

	return c.doCheckObject(token, value)
}

func (c *Checker) doCheckObject(token string, value interface{}) bool {
	nbErrors := len(c.Errors)

	obj, ok := value.(Object)
	if !ok {
		panicf("value %#v (%T) does not implement Object", value, value)
	}

	c.WithChild(token, func() {
		obj.Check(c)
	})

	return len(c.Errors) == nbErrors
}

func isNilObject(value interface{}) bool {
	valueType := reflect.TypeOf(value)
	if valueType == nil {
		return true
	}

	if valueType.Kind() != reflect.Pointer {
		panicf("value %#v (%T) is not a pointer", value, value)
	}

	if valueType.Elem().Kind() != reflect.Struct {
		panicf("value %#v (%T) is not an object pointer", value, value)
	}

	return reflect.ValueOf(value).IsZero()
}

func panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}
