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
	"fmt"
	"io/ioutil"
	"time"

	"github.com/ctessum/sparse"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// A Retriever makes the daily grid files for a month available in the
// ingest working directory.
type Retriever interface {
	// DailyFiles makes the files for the given year and month
	// available and returns their paths.
	DailyFiles(ctx context.Context, year, month int) ([]string, error)

	// Cleanup removes files previously returned by DailyFiles.
	Cleanup(paths []string) error
}

// Ingester converts the daily grids for a range of years into a monthly
// precipitation dataset.
type Ingester struct {
	// Descriptor describes the daily grids.
	Descriptor *GridDescriptor

	// WorkDir is the directory holding the decompressed daily grid
	// files. It is only read when Retriever is nil.
	WorkDir string

	// OutputFile is the path of the NetCDF file to create.
	OutputFile string

	// FirstYear and LastYear give the inclusive range of years to
	// process.
	FirstYear, LastYear int

	// EpochYear is the reference year of the output time coordinate.
	EpochYear int

	// Retriever, if not nil, supplies each month's files, and exactly
	// those files are summed. If nil, every file for the month in
	// WorkDir is summed.
	Retriever Retriever

	// RemoveFiles specifies whether each month's files should be
	// removed by the Retriever after they have been summed.
	RemoveFiles bool

	// Overwrite specifies whether an existing OutputFile may be
	// replaced.
	Overwrite bool

	Log     logrus.FieldLogger
	Clock   clockwork.Clock
	Metrics *Metrics
}

// checkRange makes sure the year range is usable with the descriptor.
func (ing *Ingester) checkRange() error {
	if ing.LastYear < ing.FirstYear {
		return &RangeError{Msg: fmt.Sprintf("last year %d is before first year %d", ing.LastYear, ing.FirstYear)}
	}
	if y := ing.Descriptor.StartDate.Year(); ing.FirstYear < y {
		return &RangeError{Msg: fmt.Sprintf("first year %d is before the start of the archive (%d)", ing.FirstYear, y)}
	}
	if ing.EpochYear > ing.FirstYear {
		return &RangeError{Msg: fmt.Sprintf("epoch year %d is after first year %d", ing.EpochYear, ing.FirstYear)}
	}
	return nil
}

func (ing *Ingester) setDefaults() {
	if ing.Log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		ing.Log = l
	}
	if ing.Clock == nil {
		ing.Clock = clockwork.NewRealClock()
	}
	if ing.Metrics == nil {
		ing.Metrics = NewMetrics(nil)
	}
}

// Run processes every month in the year range in order, writing each
// monthly total to the output dataset. Run stops at the first error.
func (ing *Ingester) Run(ctx context.Context) (err error) {
	if ing.Descriptor == nil {
		return fmt.Errorf("cmorph: missing grid descriptor")
	}
	if err := ing.checkRange(); err != nil {
		return err
	}
	ing.setDefaults()

	start := ing.Clock.Now()
	log := ing.Log.WithFields(logrus.Fields{
		"output":     ing.OutputFile,
		"first_year": ing.FirstYear,
		"last_year":  ing.LastYear,
	})
	log.WithField("start", start.Format(time.RFC3339)).Info("starting CMORPH ingest")

	ds, err := CreateDataset(ing.OutputFile, ing.Descriptor, DatasetConfig{
		FirstYear: ing.FirstYear,
		LastYear:  ing.LastYear,
		EpochYear: ing.EpochYear,
		Overwrite: ing.Overwrite,
		History:   fmt.Sprintf("%s: created by cmorph v%s", start.UTC().Format(time.RFC3339), Version),
	})
	if err != nil {
		return err
	}
	ds.Log = log
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for year := ing.FirstYear; year <= ing.LastYear; year++ {
		for month := 1; month <= 12; month++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("cmorph: ingest interrupted before %04d-%02d: %w", year, month, err)
			}
			if err := ing.month(ctx, ds, year, month); err != nil {
				return err
			}
		}
	}

	end := ing.Clock.Now()
	elapsed := end.Sub(start)
	ing.Metrics.RunDuration.Set(elapsed.Seconds())
	ing.Metrics.LastSuccess.Set(float64(end.Unix()))
	log.WithFields(logrus.Fields{
		"end":     end.Format(time.RFC3339),
		"elapsed": elapsed.String(),
		"records": ds.NumRecords(),
	}).Info("finished CMORPH ingest")
	return nil
}

// month processes a single month.
func (ing *Ingester) month(ctx context.Context, ds *Dataset, year, month int) error {
	var (
		paths []string
		sum   *sparse.DenseArray
		n     int
		err   error
	)
	if ing.Retriever != nil {
		paths, err = ing.Retriever.DailyFiles(ctx, year, month)
		if err != nil {
			return fmt.Errorf("cmorph: retrieving daily files for %04d-%02d: %w", year, month, err)
		}
		sum, n, err = MonthlySumFiles(paths, ing.Descriptor, year, month, ing.Log)
	} else {
		sum, n, err = MonthlySum(ing.WorkDir, ing.Descriptor, year, month, ing.Log)
	}
	if err != nil {
		return err
	}
	ing.Metrics.DailyFiles.Add(float64(n))
	if n == 0 {
		ing.Metrics.EmptyMonths.Inc()
	}

	if err := ds.Write(year, month, sum); err != nil {
		return err
	}
	ing.Metrics.MonthsWritten.Inc()

	if ing.RemoveFiles && ing.Retriever != nil && len(paths) > 0 {
		if err := ing.Retriever.Cleanup(paths); err != nil {
			return fmt.Errorf("cmorph: removing daily files for %04d-%02d: %w", year, month, err)
		}
		ing.Metrics.FilesRemoved.Add(float64(len(paths)))
	}

	ing.Log.WithFields(logrus.Fields{
		"year":  year,
		"month": month,
		"days":  n,
		"index": TimeIndex(ing.FirstYear, year, month),
	}).Info("wrote monthly total")
	return nil
}
