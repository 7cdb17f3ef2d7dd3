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

package archive

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid1234 is a little-endian grid holding 1, 2, 3, 4.
func grid1234(t *testing.T) []byte {
	var b bytes.Buffer
	require.NoError(t, binary.Write(&b, binary.LittleEndian, []float32{1, 2, 3, 4}))
	return b.Bytes()
}

func gzipped(t *testing.T, data []byte) []byte {
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return b.Bytes()
}

// bzipped returns the bzip2-compressed form of grid1234.
func bzipped(t *testing.T) []byte {
	b, err := ioutil.ReadFile(filepath.Join("testdata", "grid_1234.bz2"))
	require.NoError(t, err)
	return b
}

func TestDecompress(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{name: "day.gz", data: func(t *testing.T) []byte { return gzipped(t, grid1234(t)) }},
		{name: "day.bz2", data: bzipped},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, test.name)
			require.NoError(t, ioutil.WriteFile(src, test.data(t), 0644))

			dst, err := Decompress(src)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "day"), dst)

			b, err := ioutil.ReadFile(dst)
			require.NoError(t, err)
			assert.Equal(t, grid1234(t), b)

			_, err = os.Stat(src)
			assert.True(t, os.IsNotExist(err), "compressed file should be removed")
		})
	}
}

func TestDecompress_errors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "day.zip")
	require.NoError(t, ioutil.WriteFile(unknown, []byte("x"), 0644))
	_, err := Decompress(unknown)
	assert.Error(t, err)

	corrupt := filepath.Join(dir, "day.gz")
	require.NoError(t, ioutil.WriteFile(corrupt, []byte("not gzip"), 0644))
	_, err = Decompress(corrupt)
	assert.Error(t, err)

	_, err = Decompress(filepath.Join(dir, "missing.bz2"))
	assert.Error(t, err)
}
