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

// Package cmorph converts an archive of daily CMORPH precipitation grids,
// stored as flat binary files described by a GrADS control (.ctl) file,
// into a NetCDF time series of monthly cumulative precipitation.
//
// The conversion happens in four steps: the control file is parsed into
// a GridDescriptor, each day's grid is decoded with ReadDailyGrid, the
// days of each month are summed by MonthlySum, and each monthly sum is
// written to its time index in a Dataset. An Ingester runs the whole
// pipeline over a range of years.
package cmorph

// Version gives the version number.
const Version = "1.0.0"
