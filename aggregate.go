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
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strconv"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// DailyFileDate extracts the date from a daily grid file name, which
// must end in YYYYMMDD. ok is false if name does not follow that
// convention.
func DailyFileDate(name string) (year, month, day int, ok bool) {
	if len(name) < 8 {
		return 0, 0, 0, false
	}
	date := name[len(name)-8:]
	for _, c := range date {
		if c < '0' || c > '9' {
			return 0, 0, 0, false
		}
	}
	year, _ = strconv.Atoi(date[0:4])
	month, _ = strconv.Atoi(date[4:6])
	day, _ = strconv.Atoi(date[6:8])
	return year, month, day, true
}

// MonthFiles returns the sorted paths of the daily grid files in dir
// that belong to the given year and month.
func MonthFiles(dir string, year, month int) ([]string, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cmorph: listing daily grid directory: %v", err)
	}
	var o []string
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		y, m, _, ok := DailyFileDate(fi.Name())
		if ok && y == year && m == month {
			o = append(o, filepath.Join(dir, fi.Name()))
		}
	}
	return o, nil // ReadDir returns entries sorted by name.
}

// MonthlySum sums the daily grids in dir for the given year and month.
// See MonthlySumFiles.
func MonthlySum(dir string, d *GridDescriptor, year, month int, log logrus.FieldLogger) (*sparse.DenseArray, int, error) {
	files, err := MonthFiles(dir, year, month)
	if err != nil {
		return nil, 0, err
	}
	return MonthlySumFiles(files, d, year, month, log)
}

// MonthlySumFiles sums the given daily grid files, which hold the days
// of the given year and month. The result has shape (d.YCount, d.XCount).
// Missing values contribute nothing to the sum. If there are no files,
// the result is all zeros and a warning is logged; the number of files
// summed is returned so that callers can tell the difference.
func MonthlySumFiles(files []string, d *GridDescriptor, year, month int, log logrus.FieldLogger) (*sparse.DenseArray, int, error) {
	o := sparse.ZerosDense(d.YCount, d.XCount)
	if len(files) == 0 {
		if log != nil {
			log.WithFields(logrus.Fields{
				"year":  year,
				"month": month,
			}).Warn("no daily grid files found; monthly total will be zero")
		}
		return o, 0, nil
	}
	order := d.ByteOrder()
	for _, f := range files {
		day, err := ReadDailyGrid(f, d.Len(), order, d.Undef)
		if err != nil {
			return nil, 0, fmt.Errorf("cmorph: summing %04d-%02d: %w", year, month, err)
		}
		floats.Add(o.Elements, day)
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"year":  year,
			"month": month,
			"files": len(files),
		}).Debug("summed daily grids")
	}
	return o, len(files), nil
}
