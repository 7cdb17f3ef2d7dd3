/*
Copyright © 2018 the InMAP authors.
This file is part of cmorph.

cmorph is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cmorph is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cmorph.  If not, see <http://www.gnu.org/licenses/>.
*/

package cmorph

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when writing to a Dataset that has already
// been closed.
var ErrClosed = errors.New("cmorph: dataset is closed")

// ParseError is returned when a grid descriptor cannot be parsed.
// Line is the 1-based line number of the offending line, or 0 if the
// problem is with the descriptor as a whole (e.g., a missing keyword).
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("cmorph: parsing grid descriptor: %v", e.Err)
	}
	return fmt.Sprintf("cmorph: parsing grid descriptor line %d (%q): %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeError is returned when a daily grid file cannot be read or
// holds fewer values than the grid requires.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cmorph: decoding daily grid %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RangeError is returned when a year range or time axis request is
// inconsistent.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string { return "cmorph: invalid range: " + e.Msg }

// DatasetWriteError is returned when a monthly grid cannot be written
// to the output dataset.
type DatasetWriteError struct {
	Year, Month, Index int
	Err                error
}

func (e *DatasetWriteError) Error() string {
	return fmt.Sprintf("cmorph: writing %04d-%02d (time index %d): %v", e.Year, e.Month, e.Index, e.Err)
}

func (e *DatasetWriteError) Unwrap() error { return e.Err }
