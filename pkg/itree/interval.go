/*
 * Copyright (C) 2025 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package itree

import "fmt"

// Kind tells how the bounds of an Interval are interpreted.
type Kind uint8

const (
	// Range is the half-open interval [lo, hi).
	Range Kind = iota
	// Scope is the closed interval [lo, hi].
	Scope
	// Point is the single value {lo}; hi always equals lo.
	Point
)

func (k Kind) String() string {
	switch k {
	case Range:
		return "range"
	case Scope:
		return "scope"
	case Point:
		return "point"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Interval is a contiguous set of values of T. It is an immutable value: two
// intervals are structurally identical when they have the same kind and bounds.
type Interval[T any] struct {
	kind Kind
	lo   T
	hi   T
}

// NewRange returns the half-open interval [lo, hi).
func NewRange[T any](lo, hi T) Interval[T] {
	return Interval[T]{kind: Range, lo: lo, hi: hi}
}

// NewScope returns the closed interval [lo, hi].
func NewScope[T any](lo, hi T) Interval[T] {
	return Interval[T]{kind: Scope, lo: lo, hi: hi}
}

// NewPoint returns the single-value interval {x}.
func NewPoint[T any](x T) Interval[T] {
	return Interval[T]{kind: Point, lo: x, hi: x}
}

func (i Interval[T]) Kind() Kind { return i.kind }

// Lo returns the lower bound, always inclusive.
func (i Interval[T]) Lo() T { return i.lo }

// Hi returns the upper bound. It is exclusive for Range and inclusive otherwise.
func (i Interval[T]) Hi() T { return i.hi }

// Closed reports whether the upper bound belongs to the interval.
func (i Interval[T]) Closed() bool { return i.kind != Range }

func (i Interval[T]) String() string {
	switch i.kind {
	case Range:
		return fmt.Sprintf("[%v, %v)", i.lo, i.hi)
	case Point:
		return fmt.Sprintf("{%v}", i.lo)
	default:
		return fmt.Sprintf("[%v, %v]", i.lo, i.hi)
	}
}
