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
	"time"
)

const secondsPerDay = 24 * 60 * 60

func yearStart(year int) time.Time { return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC) }

// daysBetween returns the number of whole days from a to b.
// time.Duration only spans about 290 years, so Unix seconds are used.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

// DayOffsets returns count consecutive daily time values, starting at
// January 1 of firstYear, expressed as whole days since January 1 of
// epochYear. The returned values are strictly increasing.
func DayOffsets(firstYear, epochYear, count int) ([]int32, error) {
	if epochYear > firstYear {
		return nil, &RangeError{Msg: fmt.Sprintf("epoch year %d is after first year %d", epochYear, firstYear)}
	}
	if count < 0 {
		return nil, &RangeError{Msg: fmt.Sprintf("negative day count %d", count)}
	}
	first := int32(daysBetween(yearStart(epochYear), yearStart(firstYear)))
	o := make([]int32, count)
	for i := range o {
		o[i] = first + int32(i)
	}
	return o, nil
}

// PeriodDays returns the number of calendar days from January 1 of
// firstYear through December 31 of lastYear.
func PeriodDays(firstYear, lastYear int) int {
	if lastYear < firstYear {
		return 0
	}
	return daysBetween(yearStart(firstYear), yearStart(lastYear+1))
}

// MonthStartOffsets returns, for every month from January of firstYear
// through December of lastYear, the day offset of the first day of the
// month relative to January 1 of epochYear. The values are taken from
// the daily time axis, so they reflect the true number of days in each
// month.
func MonthStartOffsets(firstYear, lastYear, epochYear int) ([]int32, error) {
	if lastYear < firstYear {
		return nil, &RangeError{Msg: fmt.Sprintf("last year %d is before first year %d", lastYear, firstYear)}
	}
	days, err := DayOffsets(firstYear, epochYear, PeriodDays(firstYear, lastYear))
	if err != nil {
		return nil, err
	}
	start := yearStart(firstYear)
	o := make([]int32, 0, 12*(lastYear-firstYear+1))
	for y := firstYear; y <= lastYear; y++ {
		for m := time.January; m <= time.December; m++ {
			o = append(o, days[daysBetween(start, time.Date(y, m, 1, 0, 0, 0, 0, time.UTC))])
		}
	}
	return o, nil
}

// TimeIndex returns the output record index for the given year and
// month (1-12), counting twelve records per year starting at January of
// startYear. The index does not depend on the number of days in
// each month.
func TimeIndex(startYear, year, month int) int {
	return (year-startYear)*12 + month - 1
}

// TimeUnits returns the CF time units string for day offsets relative
// to January 1 of epochYear.
func TimeUnits(epochYear int) string {
	return fmt.Sprintf("days since %04d-01-01 00:00:00", epochYear)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
