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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type checkTestDestination struct {
	Host string
	Port int
	Tags map[string]string
}

func (obj *checkTestDestination) Check(c *Checker) {
	c.CheckStringNotEmpty("host", obj.Host)
	c.CheckPort("port", obj.Port)
	c.CheckStringMap("tags", obj.Tags)
}

type checkTestRelay struct {
	Primary   *checkTestDestination
	Secondary *checkTestDestination
}

func (obj *checkTestRelay) Check(c *Checker) {
	c.CheckObject("primary", obj.Primary)
	c.CheckOptionalObject("secondary", obj.Secondary)
}

func TestCheck(t *testing.T) {
	assert := assert.New(t)

	var c *Checker

	// Integers
	c = NewChecker()
	assert.True(c.CheckIntMinMax("t", 42, 1, 100))
	assert.False(c.CheckIntMinMax("t", 42, 100, 120))
	assert.True(c.CheckPort("p", 4444))
	assert.False(c.CheckPort("p", 0))
	assert.False(c.CheckPort("p", 65536))
	if assert.Equal(3, len(c.Errors)) {
		assert.Equal(Pointer{"t"}, c.Errors[0].Pointer)
		assert.Equal(Pointer{"p"}, c.Errors[1].Pointer)
	}

	// Maps
	c = NewChecker()
	assert.True(c.CheckStringMap("tags", map[string]string{"a": "1"}))
	assert.False(c.CheckStringMap("tags", map[string]string{"b": ""}))
	if assert.Equal(1, len(c.Errors)) {
		assert.Equal(Pointer{"tags", "b"}, c.Errors[0].Pointer)
	}

	// Arrays
	c = NewChecker()
	assert.True(c.CheckArrayNotEmpty("t", []int{1}))
	assert.False(c.CheckArrayNotEmpty("t", []int{}))
	assert.False(c.CheckArrayNotEmpty("t", nil))
	assert.Equal(2, len(c.Errors))

	// Objects
	c = NewChecker()
	assert.True(c.CheckObject("relay", &checkTestRelay{
		Primary: &checkTestDestination{Host: "localhost", Port: 4444},
	}))

	c = NewChecker()
	assert.False(c.CheckObject("relay", &checkTestRelay{
		Primary:   &checkTestDestination{Host: "localhost", Port: 4444},
		Secondary: &checkTestDestination{Port: 4444},
	}))
	if assert.Equal(1, len(c.Errors)) {
		assert.Equal(Pointer{"relay", "secondary", "host"},
			c.Errors[0].Pointer)
	}

	c = NewChecker()
	assert.False(c.CheckObject("relay", &checkTestRelay{}))
	if assert.Equal(1, len(c.Errors)) {
		assert.Equal(Pointer{"relay", "primary"}, c.Errors[0].Pointer)
	}
}

func TestCheckObject(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(CheckObject(&checkTestDestination{
		Host: "localhost",
		Port: 4444,
	}))

	err := CheckObject(&checkTestDestination{Port: 70000})
	if assert.Error(err) {
		assert.Equal("/host: string must not be empty\n"+
			"/port: port 70000 must be between 1 and 65535", err.Error())
	}
}

func TestPointer(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", Pointer{}.String())
	assert.Equal("/foo/bar", Pointer{"foo", "bar"}.String())
	assert.Equal("/xy//z", Pointer{"xy", "", "z"}.String())
	assert.Equal("/foo~1bar/~0hello", Pointer{"foo/bar", "~hello"}.String())

	parent := Pointer{"a"}
	child := parent.Child("b")
	assert.Equal(Pointer{"a", "b"}, child)
	assert.Equal(Pointer{"a"}, parent)

	data, err := json.Marshal(Pointer{"points", "0"})
	if assert.NoError(err) {
		assert.Equal(`"/points/0"`, string(data))
	}
}
