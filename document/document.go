// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package document

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies the node type of a Document.
type Kind uint8

const (
	KindObject Kind = iota
	KindArray
	KindBool
	KindNumber
	KindInt
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Document is a node of the output tree.
// The interface is sealed: only types from this package implement it.
type Document interface {
	Kind() Kind
	document()
}

// Array is an ordered sequence of documents.
type Array []Document

// Bool is a boolean scalar.
type Bool bool

// Number is a floating point scalar.
type Number float64

// Int is an integer scalar.
type Int int64

// String is a string scalar.
type String string

func (Array) Kind() Kind  { return KindArray }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (Int) Kind() Kind    { return KindInt }
func (String) Kind() Kind { return KindString }

func (Array) document()  {}
func (Bool) document()   {}
func (Number) document() {}
func (Int) document()    {}
func (String) document() {}

// MarshalJSON encodes non-finite numbers as null, which JSON cannot represent.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// MarshalJSON encodes a nil Array as [] rather than null.
func (a Array) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Document(a))
}

// Vec3 builds a three-element numeric array.
func Vec3(x, y, z float64) Array {
	return Array{Number(x), Number(y), Number(z)}
}

// Len returns the number of elements, or 0 for non-container documents.
func Len(d Document) int {
	switch v := d.(type) {
	case Array:
		return len(v)
	case *Object:
		return v.Len()
	default:
		return 0
	}
}
