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
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeRetriever records the months it was asked for and the files it
// was asked to remove.
type fakeRetriever struct {
	dir     string
	months  []string
	removed []string
	err     error
}

func (r *fakeRetriever) DailyFiles(ctx context.Context, year, month int) ([]string, error) {
	r.months = append(r.months, fmt.Sprintf("%04d%02d", year, month))
	if r.err != nil {
		return nil, r.err
	}
	return MonthFiles(r.dir, year, month)
}

func (r *fakeRetriever) Cleanup(paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	r.removed = append(r.removed, paths...)
	return nil
}

func TestIngester(t *testing.T) {
	dir := t.TempDir()
	writeJanuary1998(t, dir)
	out := filepath.Join(t.TempDir(), "cmorph.nc")
	ret := &fakeRetriever{dir: dir}
	m := NewMetrics(nil)

	ing := &Ingester{
		Descriptor:  testGrid(),
		WorkDir:     dir,
		OutputFile:  out,
		FirstYear:   1998,
		LastYear:    1998,
		EpochYear:   1800,
		Retriever:   ret,
		RemoveFiles: true,
		Clock:       clockwork.NewFakeClockAt(time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC)),
		Metrics:     m,
	}
	if err := ing.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	d := readDataset(t, out)
	if len(d.prcp) != 12 {
		t.Fatalf("records: have %d, want 12", len(d.prcp))
	}
	if want := []float64{1, 2, 2, 2}; !reflect.DeepEqual(d.prcp[0], want) {
		t.Errorf("January: have %v, want %v", d.prcp[0], want)
	}
	for i := 1; i < 12; i++ {
		if want := []float64{0, 0, 0, 0}; !reflect.DeepEqual(d.prcp[i], want) {
			t.Errorf("month %d: have %v, want %v", i+1, d.prcp[i], want)
		}
	}
	if d.time[0] != days1800to1998 {
		t.Errorf("first time value: have %d", d.time[0])
	}
	if h := d.h.GetAttribute("", "history"); h != "2018-06-01T00:00:00Z: created by cmorph v"+Version {
		t.Errorf("history: %v", h)
	}

	if len(ret.months) != 12 || ret.months[0] != "199801" || ret.months[11] != "199812" {
		t.Errorf("retrieved months: %v", ret.months)
	}
	if len(ret.removed) != 2 {
		t.Errorf("removed files: %v", ret.removed)
	}

	if v := testutil.ToFloat64(m.MonthsWritten); v != 12 {
		t.Errorf("months written: %g", v)
	}
	if v := testutil.ToFloat64(m.DailyFiles); v != 2 {
		t.Errorf("daily files: %g", v)
	}
	if v := testutil.ToFloat64(m.EmptyMonths); v != 11 {
		t.Errorf("empty months: %g", v)
	}
	if v := testutil.ToFloat64(m.FilesRemoved); v != 2 {
		t.Errorf("files removed: %g", v)
	}
	if v := testutil.ToFloat64(m.LastSuccess); v != float64(time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC).Unix()) {
		t.Errorf("last success: %g", v)
	}
}

func TestIngester_retrieverFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeJanuary1998(t, dir)
	workDir := t.TempDir()
	writeGrid(t, filepath.Join(workDir, testPrefix+"19980103"), binary.LittleEndian, 100, 100, 100, 100)
	writeGrid(t, filepath.Join(workDir, "CMORPH_V1.0_ADJ_0.25deg-DLY_00Z_19980101"), binary.LittleEndian, 100, 100, 100, 100)
	out := filepath.Join(t.TempDir(), "cmorph.nc")

	ing := &Ingester{
		Descriptor: testGrid(),
		WorkDir:    workDir,
		OutputFile: out,
		FirstYear:  1998,
		LastYear:   1998,
		EpochYear:  1800,
		Retriever:  &fakeRetriever{dir: dir},
	}
	if err := ing.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	d := readDataset(t, out)
	if want := []float64{1, 2, 2, 2}; !reflect.DeepEqual(d.prcp[0], want) {
		t.Errorf("January: have %v, want %v", d.prcp[0], want)
	}
}

func TestIngester_localFiles(t *testing.T) {
	dir := t.TempDir()
	writeJanuary1998(t, dir)
	writeGrid(t, filepath.Join(dir, testPrefix+"19990315"), binary.LittleEndian, 1, 1, 1, 1)
	out := filepath.Join(t.TempDir(), "cmorph.nc")

	ing := &Ingester{
		Descriptor:  testGrid(),
		WorkDir:     dir,
		OutputFile:  out,
		FirstYear:   1998,
		LastYear:    1999,
		EpochYear:   1800,
		RemoveFiles: true,
	}
	if err := ing.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	d := readDataset(t, out)
	if len(d.prcp) != 24 {
		t.Fatalf("records: have %d, want 24", len(d.prcp))
	}
	if want := []float64{1, 1, 1, 1}; !reflect.DeepEqual(d.prcp[14], want) {
		t.Errorf("March 1999: have %v, want %v", d.prcp[14], want)
	}
	if _, err := os.Stat(filepath.Join(dir, testPrefix+"19980101")); err != nil {
		t.Errorf("local files should not be removed without a retriever: %v", err)
	}
}

func TestIngester_rangeErrors(t *testing.T) {
	tests := []struct {
		name                   string
		first, last, epochYear int
	}{
		{name: "before archive", first: 1997, last: 1998, epochYear: 1800},
		{name: "reversed", first: 1999, last: 1998, epochYear: 1800},
		{name: "late epoch", first: 1998, last: 1998, epochYear: 1999},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "cmorph.nc")
			ing := &Ingester{
				Descriptor: testGrid(),
				WorkDir:    t.TempDir(),
				OutputFile: out,
				FirstYear:  test.first,
				LastYear:   test.last,
				EpochYear:  test.epochYear,
			}
			err := ing.Run(context.Background())
			var rerr *RangeError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected RangeError but got %v", err)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("output file should not be created")
			}
		})
	}
}

func TestIngester_decodeError(t *testing.T) {
	dir := t.TempDir()
	writeJanuary1998(t, dir)
	writeGrid(t, filepath.Join(dir, testPrefix+"19980501"), binary.LittleEndian, 1)
	out := filepath.Join(t.TempDir(), "cmorph.nc")
	ing := &Ingester{
		Descriptor: testGrid(),
		WorkDir:    dir,
		OutputFile: out,
		FirstYear:  1998,
		LastYear:   1998,
		EpochYear:  1800,
	}
	err := ing.Run(context.Background())
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DecodeError but got %v", err)
	}
	// The dataset is still closed and readable.
	d := readDataset(t, out)
	if want := []float64{1, 2, 2, 2}; !reflect.DeepEqual(d.prcp[0], want) {
		t.Errorf("January: have %v, want %v", d.prcp[0], want)
	}
	if want := []float64{-999, -999, -999, -999}; !reflect.DeepEqual(d.prcp[4], want) {
		t.Errorf("May should be missing: have %v", d.prcp[4])
	}
}

func TestIngester_retrieveError(t *testing.T) {
	ret := &fakeRetriever{dir: t.TempDir(), err: errors.New("no network")}
	ing := &Ingester{
		Descriptor: testGrid(),
		WorkDir:    ret.dir,
		OutputFile: filepath.Join(t.TempDir(), "cmorph.nc"),
		FirstYear:  1998,
		LastYear:   1998,
		EpochYear:  1800,
		Retriever:  ret,
	}
	if err := ing.Run(context.Background()); !errors.Is(err, ret.err) {
		t.Errorf("have %v, want %v", err, ret.err)
	}
}

func TestIngester_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ing := &Ingester{
		Descriptor: testGrid(),
		WorkDir:    t.TempDir(),
		OutputFile: filepath.Join(t.TempDir(), "cmorph.nc"),
		FirstYear:  1998,
		LastYear:   1998,
		EpochYear:  1800,
	}
	if err := ing.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("have %v, want %v", err, context.Canceled)
	}
}
