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
	"iter"

	"github.com/tidwall/btree"
)

type entry[T comparable, V any] struct {
	key   Interval[T]
	value V
}

// Map maps disjoint intervals of T to values of V. Lookups accept any point
// and find the single stored interval containing it.
//
// Map is not safe for concurrent use. Build it, then share it read-only or
// guard it with a lock.
type Map[T comparable, V any] struct {
	cmp  Comparator[T]
	tree *btree.BTreeG[entry[T, V]]
}

// New returns an empty Map ordering T with compare.
func New[T comparable, V any](compare func(a, b T) int) *Map[T, V] {
	return newMap[T, V](NewComparator(compare))
}

// NewOrdered returns an empty Map ordering T naturally.
func NewOrdered[T interface {
	comparable
	cmp.Ordered
}, V any]() *Map[T, V] {
	return newMap[T, V](Ordered[T]())
}

func newMap[T comparable, V any](c Comparator[T]) *Map[T, V] {
	less := func(a, b entry[T, V]) bool {
		return c.Less(a.key, b.key)
	}
	return &Map[T, V]{
		cmp:  c,
		tree: btree.NewBTreeGOptions(less, btree.Options{NoLocks: true}),
	}
}

// Comparator returns the ordering used by m.
func (m *Map[T, V]) Comparator() Comparator[T] { return m.cmp }

func (m *Map[T, V]) Len() int {
	return m.tree.Len()
}

// Insert stores value under iv. It fails without touching the map when iv is
// malformed (ErrInvalid) or overlaps a stored interval (ErrConflict); stored
// entries are never merged, split or overwritten.
func (m *Map[T, V]) Insert(iv Interval[T], value V) error {
	if !m.cmp.Valid(iv) {
		return &IntervalError[T]{Kind: Invalid, Intervals: [2]Interval[T]{iv, m.suggest(iv)}}
	}
	return m.insert(iv, value)
}

// InsertBounds stores value under [lo, hi) when lo < hi and under {lo} when
// lo == hi. A reversed pair is rejected with ErrInvalid.
func (m *Map[T, V]) InsertBounds(lo, hi T, value V) error {
	switch d := m.cmp.compare(lo, hi); {
	case d < 0:
		return m.insert(NewRange(lo, hi), value)
	case d == 0:
		return m.insert(NewPoint(lo), value)
	default:
		return &IntervalError[T]{Kind: Invalid, Intervals: [2]Interval[T]{NewRange(lo, hi), NewRange(hi, lo)}}
	}
}

func (m *Map[T, V]) insert(iv Interval[T], value V) error {
	if found, ok := m.tree.Get(entry[T, V]{key: iv}); ok {
		return &IntervalError[T]{Kind: Conflict, Intervals: [2]Interval[T]{iv, found.key}}
	}
	m.tree.Set(entry[T, V]{key: iv, value: value})
	return nil
}

// suggest returns the well-formed interval closest to a malformed one.
func (m *Map[T, V]) suggest(iv Interval[T]) Interval[T] {
	if iv.kind == Range && m.cmp.compare(iv.lo, iv.hi) == 0 {
		return NewPoint(iv.lo)
	}
	return Interval[T]{kind: iv.kind, lo: iv.hi, hi: iv.lo}
}

// Query returns the value of the interval containing point.
func (m *Map[T, V]) Query(point T) (V, bool) {
	e, ok := m.tree.Get(entry[T, V]{key: NewPoint(point)})
	return e.value, ok
}

// GetKeyValue is Query also returning the matched interval.
func (m *Map[T, V]) GetKeyValue(point T) (Interval[T], V, bool) {
	e, ok := m.tree.Get(entry[T, V]{key: NewPoint(point)})
	return e.key, e.value, ok
}

// Remove deletes the entry stored under exactly iv and returns its value.
// An interval that merely overlaps a stored one, including a sub or super
// interval of it, removes nothing.
func (m *Map[T, V]) Remove(iv Interval[T]) (V, bool) {
	var zero V
	if !m.cmp.Valid(iv) {
		return zero, false
	}
	found, ok := m.tree.Get(entry[T, V]{key: iv})
	if !ok || found.key != iv {
		return zero, false
	}
	m.tree.Delete(found)
	return found.value, true
}

// Ascend calls fn for each entry in ascending order until fn returns false.
func (m *Map[T, V]) Ascend(fn func(Interval[T], V) bool) {
	m.tree.Scan(func(e entry[T, V]) bool {
		return fn(e.key, e.value)
	})
}

// All iterates the entries in ascending order.
func (m *Map[T, V]) All() iter.Seq2[Interval[T], V] {
	return func(yield func(Interval[T], V) bool) {
		m.Ascend(yield)
	}
}
