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
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Decompress expands the compressed file at src, which must end in
// ".gz" or ".bz2", and returns the path of the expanded file, which is
// src without the extension. The compressed file is removed afterwards.
func Decompress(src string) (string, error) {
	ext := filepath.Ext(src)
	dst := src[:len(src)-len(ext)]

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("archive: opening compressed file: %v", err)
	}
	defer in.Close()

	var r io.Reader
	switch ext {
	case ".gz":
		gz, err := gzip.NewReader(in)
		if err != nil {
			return "", fmt.Errorf("archive: reading gzip header of %s: %v", src, err)
		}
		defer gz.Close()
		r = gz
	case ".bz2":
		r = bzip2.NewReader(in)
	default:
		return "", fmt.Errorf("archive: unknown compression format %q for %s", ext, src)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("archive: creating decompressed file: %v", err)
	}
	if _, err = io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("archive: decompressing %s: %v", src, err)
	}
	if err = out.Close(); err != nil {
		return "", fmt.Errorf("archive: writing decompressed file: %v", err)
	}
	in.Close()
	if err = os.Remove(src); err != nil {
		return "", fmt.Errorf("archive: removing compressed file: %v", err)
	}
	return dst, nil
}
