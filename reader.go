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
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"math"
)

// ReadDailyGrid reads n 32-bit floating point values stored with the
// given byte order from the file at path. Any bytes after the first n
// values are ignored. If undef is negative, all negative values,
// including undef itself, and NaNs are replaced with zero so that
// missing cells do not contribute to sums.
func ReadDailyGrid(path string, n int, order binary.ByteOrder, undef float64) ([]float64, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	o, err := DecodeGrid(b, n, order, undef)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return o, nil
}

// DecodeGrid decodes a daily grid from b. See ReadDailyGrid for details.
func DecodeGrid(b []byte, n int, order binary.ByteOrder, undef float64) ([]float64, error) {
	if len(b) < 4*n {
		return nil, fmt.Errorf("file has %d bytes but the grid requires %d", len(b), 4*n)
	}
	o := make([]float64, n)
	for i := range o {
		v := float64(math.Float32frombits(order.Uint32(b[4*i:])))
		if undef < 0 && (v < 0 || math.IsNaN(v)) {
			v = 0
		}
		o[i] = v
	}
	return o, nil
}
