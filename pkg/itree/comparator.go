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

import (
	"cmp"
	"fmt"
)

// Comparator orders intervals by position. Two intervals compare equal when
// they intersect, so equality is NOT transitive: [0,10) equals [5,15) and
// [5,15) equals [12,20), while [0,10) is less than [12,20).
//
// Ordering a set of keys with it is only consistent while no two keys of the
// set overlap. Map keeps that invariant by refusing overlapping inserts, which
// lets a plain B-tree answer point and overlap queries with a binary search.
type Comparator[T any] struct {
	compare func(a, b T) int
}

// NewComparator builds a Comparator from a three-way compare function on T.
func NewComparator[T any](compare func(a, b T) int) Comparator[T] {
	return Comparator[T]{compare: compare}
}

// Ordered returns the Comparator for the natural order of T.
func Ordered[T cmp.Ordered]() Comparator[T] {
	return Comparator[T]{compare: cmp.Compare[T]}
}

// Valid reports whether the bounds of i are well formed: lo < hi for Range,
// lo <= hi for Scope. Points are always valid.
func (c Comparator[T]) Valid(i Interval[T]) bool {
	switch i.kind {
	case Range:
		return c.compare(i.lo, i.hi) < 0
	case Scope:
		return c.compare(i.lo, i.hi) <= 0
	case Point:
		return true
	}
	return false
}

// Contains reports whether x belongs to i.
func (c Comparator[T]) Contains(i Interval[T], x T) bool {
	return c.Compare(i, NewPoint(x)) == 0
}

// Compare returns -1 when a lies entirely below b, +1 when a lies entirely
// above b and 0 when they intersect. It panics on malformed intervals: those
// must have been rejected by validation before reaching here.
func (c Comparator[T]) Compare(a, b Interval[T]) int {
	c.mustBeValid(a)
	c.mustBeValid(b)
	if c.endsBefore(a, b) {
		return -1
	}
	if c.endsBefore(b, a) {
		return 1
	}
	return 0
}

// Less is Compare(a, b) < 0, in the shape expected by ordered containers.
func (c Comparator[T]) Less(a, b Interval[T]) bool {
	return c.Compare(a, b) < 0
}

// endsBefore reports whether every value of a is below the lower bound of b.
func (c Comparator[T]) endsBefore(a, b Interval[T]) bool {
	d := c.compare(a.hi, b.lo)
	if a.kind == Range {
		return d <= 0
	}
	return d < 0
}

func (c Comparator[T]) mustBeValid(i Interval[T]) {
	if !c.Valid(i) {
		panic(fmt.Sprintf("itree: malformed %s interval %v reached the comparator", i.kind, i))
	}
}
