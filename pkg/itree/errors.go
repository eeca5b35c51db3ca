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
	"errors"
	"fmt"
)

var (
	// ErrInvalid matches errors about malformed interval bounds.
	ErrInvalid = errors.New("invalid interval")
	// ErrConflict matches errors about an interval overlapping a stored one.
	ErrConflict = errors.New("interval conflict")
)

type ErrorKind uint8

const (
	Invalid ErrorKind = iota
	Conflict
)

func (k ErrorKind) String() string {
	if k == Invalid {
		return "invalid"
	}
	return "conflict"
}

// IntervalError is returned by Map.Insert. For Invalid, Intervals holds the
// rejected interval and a suggested well-formed form of it. For Conflict, it
// holds the rejected interval and the stored interval it overlaps.
type IntervalError[T any] struct {
	Kind      ErrorKind
	Intervals [2]Interval[T]
}

func (e *IntervalError[T]) Error() string {
	if e.Kind == Invalid {
		return fmt.Sprintf("invalid interval %v, did you mean %v", e.Intervals[0], e.Intervals[1])
	}
	return fmt.Sprintf("interval %v conflicts with stored interval %v", e.Intervals[0], e.Intervals[1])
}

func (e *IntervalError[T]) Is(target error) bool {
	switch target {
	case ErrInvalid:
		return e.Kind == Invalid
	case ErrConflict:
		return e.Kind == Conflict
	}
	return false
}

// Candidate returns the interval that was rejected.
func (e *IntervalError[T]) Candidate() Interval[T] { return e.Intervals[0] }

// Other returns the suggested interval for Invalid and the stored one for Conflict.
func (e *IntervalError[T]) Other() Interval[T] { return e.Intervals[1] }
