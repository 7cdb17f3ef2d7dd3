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
	"os"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Names of the dimensions and variables in the output dataset.
const (
	TimeName          = "time"
	LatName           = "lat"
	LonName           = "lon"
	PrecipitationName = "prcp"
)

// DefaultLongName is the long_name given to the precipitation variable
// when no other description is available.
const DefaultLongName = "precipitation, monthly cumulative"

// DatasetConfig holds the settings for a new output dataset.
type DatasetConfig struct {
	// FirstYear and LastYear give the inclusive range of years that
	// the dataset will hold. Record 0 is January of FirstYear.
	FirstYear, LastYear int

	// EpochYear is the reference year for the time coordinate.
	EpochYear int

	// Overwrite specifies whether an existing file at the output path
	// should be replaced. If false, CreateDataset fails when the file
	// already exists.
	Overwrite bool

	// LongName, if set, overrides the long_name attribute of the
	// precipitation variable.
	LongName string

	// History is stored as the global history attribute.
	History string
}

// openOutput opens the output file.
var openOutput = os.OpenFile

// Dataset is a NetCDF file holding a monthly precipitation time series.
// A Dataset is not safe for concurrent use.
type Dataset struct {
	path string
	desc *GridDescriptor
	cfg  DatasetConfig

	w *os.File
	f *cdf.File

	planned  int
	records  int
	written  map[int]bool
	closed   bool
	epoch    time.Time
	fillData []float64

	// Log receives warnings about writes outside of the planned
	// time range. It may be nil.
	Log logrus.FieldLogger
}

// CreateDataset creates a new NetCDF file at path with dimensions,
// coordinate variables and metadata derived from d, and with room for
// twelve monthly records per year in the configured year range.
func CreateDataset(path string, d *GridDescriptor, cfg DatasetConfig) (*Dataset, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("cmorph: creating dataset: %v", err)
	}
	offsets, err := MonthStartOffsets(cfg.FirstYear, cfg.LastYear, cfg.EpochYear)
	if err != nil {
		return nil, err
	}

	h := cdf.NewHeader([]string{TimeName, LatName, LonName}, []int{0, d.YCount, d.XCount})
	if d.Title != "" {
		h.AddAttribute("", "title", d.Title)
	}
	h.AddAttribute("", "source", "CMORPH daily precipitation archive, converted by cmorph v"+Version)
	if cfg.History != "" {
		h.AddAttribute("", "history", cfg.History)
	}

	h.AddVariable(TimeName, []string{TimeName}, []int32{0})
	h.AddAttribute(TimeName, "units", TimeUnits(cfg.EpochYear))
	h.AddAttribute(TimeName, "calendar", "standard")
	h.AddAttribute(TimeName, "standard_name", "time")

	h.AddVariable(LonName, []string{LonName}, []float32{0})
	h.AddAttribute(LonName, "units", "degrees east")
	h.AddAttribute(LonName, "standard_name", "longitude")

	h.AddVariable(LatName, []string{LatName}, []float32{0})
	h.AddAttribute(LatName, "units", "degrees north")
	h.AddAttribute(LatName, "standard_name", "latitude")

	longName := cfg.LongName
	if longName == "" {
		longName = d.VariableDescription
	}
	if longName == "" {
		longName = DefaultLongName
	}
	h.AddVariable(PrecipitationName, []string{TimeName, LatName, LonName}, []float64{0})
	h.AddAttribute(PrecipitationName, "_FillValue", []float64{d.Undef})
	h.AddAttribute(PrecipitationName, "units", "mm")
	h.AddAttribute(PrecipitationName, "standard_name", "precipitation")
	h.AddAttribute(PrecipitationName, "long_name", longName)
	if d.Title != "" {
		h.AddAttribute(PrecipitationName, "description", d.Title)
	}
	h.Define()

	for _, err := range h.Check() {
		return nil, fmt.Errorf("cmorph: creating netcdf header: %v", err)
	}

	flag := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if cfg.Overwrite {
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	w, err := openOutput(path, flag, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("cmorph: output file %s already exists; remove it or enable overwriting", path)
		}
		return nil, fmt.Errorf("cmorph: creating output file: %v", err)
	}
	f, err := cdf.Create(w, h)
	if err != nil {
		w.Close()
		os.Remove(path)
		return nil, fmt.Errorf("cmorph: writing netcdf header: %v", err)
	}

	ds := &Dataset{
		path:    path,
		desc:    d,
		cfg:     cfg,
		w:       w,
		f:       f,
		planned: len(offsets),
		records: len(offsets),
		written: make(map[int]bool),
		epoch:   yearStart(cfg.EpochYear),
	}
	if err := ds.writeCoordinates(offsets); err != nil {
		w.Close()
		os.Remove(path)
		return nil, err
	}
	return ds, nil
}

func (ds *Dataset) writeCoordinates(offsets []int32) error {
	for _, c := range []struct {
		name string
		vals []float64
	}{{LonName, ds.desc.Lon()}, {LatName, ds.desc.Lat()}} {
		v32 := make([]float32, len(c.vals))
		for i, v := range c.vals {
			v32[i] = float32(v)
		}
		end := ds.f.Header.Lengths(c.name)
		start := make([]int, len(end))
		if _, err := ds.f.Writer(c.name, start, end).Write(v32); err != nil {
			return fmt.Errorf("cmorph: writing %s coordinate: %v", c.name, err)
		}
	}
	if _, err := ds.f.Writer(TimeName, nil, nil).Write(offsets); err != nil {
		return fmt.Errorf("cmorph: writing time coordinate: %v", err)
	}
	return nil
}

// Path returns the location of the dataset file.
func (ds *Dataset) Path() string { return ds.path }

// NumRecords returns the number of time records the dataset holds,
// which is twelve per configured year unless data has been written
// past the end of the configured range.
func (ds *Dataset) NumRecords() int { return ds.records }

// Write stores a monthly grid at the time index for the given year and
// month. data must have shape (YCount, XCount). Writing the same month
// twice replaces the earlier values. Months after the configured year
// range extend the time dimension.
func (ds *Dataset) Write(year, month int, data *sparse.DenseArray) error {
	idx := TimeIndex(ds.cfg.FirstYear, year, month)
	werr := func(err error) error {
		return &DatasetWriteError{Year: year, Month: month, Index: idx, Err: err}
	}
	if ds.closed {
		return werr(ErrClosed)
	}
	if month < 1 || month > 12 {
		return werr(fmt.Errorf("invalid month %d", month))
	}
	if idx < 0 {
		return werr(fmt.Errorf("date is before the first year %d", ds.cfg.FirstYear))
	}
	if len(data.Shape) != 2 || data.Shape[0] != ds.desc.YCount || data.Shape[1] != ds.desc.XCount {
		return werr(fmt.Errorf("data shape %v does not match grid shape [%d %d]",
			data.Shape, ds.desc.YCount, ds.desc.XCount))
	}
	if idx >= ds.planned && ds.Log != nil {
		ds.Log.WithFields(logrus.Fields{
			"year":  year,
			"month": month,
			"index": idx,
		}).Warn("writing past the end of the configured year range")
	}
	if err := ds.writeRecord(idx, data.Elements); err != nil {
		return werr(err)
	}
	ds.written[idx] = true
	return nil
}

// writeRecord writes one slab of precipitation values, along with its
// time value if the record is outside of the planned range.
func (ds *Dataset) writeRecord(idx int, vals []float64) error {
	if idx >= ds.planned {
		year := ds.cfg.FirstYear + idx/12
		month := time.Month(idx%12 + 1)
		t := int32(daysBetween(ds.epoch, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)))
		if _, err := ds.f.Writer(TimeName, []int{idx}, nil).Write([]int32{t}); err != nil {
			return err
		}
	}
	if _, err := ds.f.Writer(PrecipitationName, []int{idx, 0, 0}, nil).Write(vals); err != nil {
		return err
	}
	if idx+1 > ds.records {
		ds.records = idx + 1
	}
	return nil
}

// Close fills any record that has not been written with the missing
// value, updates the record count in the file header, and closes the
// file. Calling Close more than once has no effect.
func (ds *Dataset) Close() error {
	if ds.closed {
		return nil
	}
	ds.closed = true
	defer ds.w.Close()
	for r := 0; r < ds.records; r++ {
		if ds.written[r] {
			continue
		}
		if ds.fillData == nil {
			ds.fillData = make([]float64, ds.desc.Len())
			for i := range ds.fillData {
				ds.fillData[i] = ds.desc.Undef
			}
		}
		if err := ds.writeRecord(r, ds.fillData); err != nil {
			return fmt.Errorf("cmorph: filling unwritten record %d: %v", r, err)
		}
	}
	if err := cdf.UpdateNumRecs(ds.w); err != nil {
		return fmt.Errorf("cmorph: updating netcdf record count: %v", err)
	}
	return ds.w.Close()
}
