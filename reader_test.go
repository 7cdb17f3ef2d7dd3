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
	"bytes"
	"encoding/binary"
	"errors"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeGrid writes vals to path as 32-bit floats with the given byte order.
func writeGrid(t *testing.T, path string, order binary.ByteOrder, vals ...float32) {
	t.Helper()
	var b bytes.Buffer
	if err := binary.Write(&b, order, vals); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(path, b.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadDailyGrid_byteOrder(t *testing.T) {
	dir := t.TempDir()
	vals := []float32{0, 1.5, 2.25, 1e6}
	little := filepath.Join(dir, "little")
	big := filepath.Join(dir, "big")
	writeGrid(t, little, binary.LittleEndian, vals...)
	writeGrid(t, big, binary.BigEndian, vals...)

	l, err := ReadDailyGrid(little, len(vals), binary.LittleEndian, -999)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ReadDailyGrid(big, len(vals), binary.BigEndian, -999)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1.5, 2.25, 1e6}
	if !reflect.DeepEqual(l, want) {
		t.Errorf("little endian: have %v, want %v", l, want)
	}
	if !reflect.DeepEqual(b, want) {
		t.Errorf("big endian: have %v, want %v", b, want)
	}
}

func TestReadDailyGrid_missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid")
	writeGrid(t, path, binary.LittleEndian, -999, 3, -1, 0)

	o, err := ReadDailyGrid(path, 4, binary.LittleEndian, -999)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 3, 0, 0}; !reflect.DeepEqual(o, want) {
		t.Errorf("have %v, want %v", o, want)
	}

	// A non-negative missing value is left alone.
	o, err = ReadDailyGrid(path, 4, binary.LittleEndian, 9999)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{-999, 3, -1, 0}; !reflect.DeepEqual(o, want) {
		t.Errorf("have %v, want %v", o, want)
	}
}

func TestDecodeGrid_nan(t *testing.T) {
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, []float32{float32(math.NaN()), 2}); err != nil {
		t.Fatal(err)
	}
	o, err := DecodeGrid(b.Bytes(), 2, binary.LittleEndian, -999)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 2}; !reflect.DeepEqual(o, want) {
		t.Errorf("have %v, want %v", o, want)
	}
}

func TestReadDailyGrid_trailingBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid")
	writeGrid(t, path, binary.BigEndian, 1, 2, 3)
	o, err := ReadDailyGrid(path, 2, binary.BigEndian, -999)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{1, 2}; !reflect.DeepEqual(o, want) {
		t.Errorf("have %v, want %v", o, want)
	}
}

func TestReadDailyGrid_errors(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "short")
	writeGrid(t, short, binary.LittleEndian, 1, 2, 3)

	for _, path := range []string{short, filepath.Join(dir, "missing")} {
		_, err := ReadDailyGrid(path, 4, binary.LittleEndian, -999)
		var derr *DecodeError
		if !errors.As(err, &derr) {
			t.Errorf("%s: expected DecodeError but got %v", path, err)
			continue
		}
		if derr.Path != path {
			t.Errorf("error path: have %s, want %s", derr.Path, path)
		}
	}

	_, err := ReadDailyGrid(filepath.Join(dir, "missing"), 4, binary.LittleEndian, -999)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap the file system error: %v", err)
	}
}
