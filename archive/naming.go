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

// Package archive retrieves daily CMORPH grid files from the NOAA/CICS
// archive or a mirror of it.
package archive

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the root of the CMORPH daily archive.
const DefaultBaseURL = "ftp://filsrv.cicsnc.org/olivier/data_CMORPH_NIDIS"

// DescriptorPath is the location of the GrADS control file relative to
// the archive root.
const DescriptorPath = "03_PGMS/CMORPH_V1.0_RAW_0.25deg-DLY_00Z.ctl"

// DefaultDescriptorURL is the location of the control file in the
// default archive.
const DefaultDescriptorURL = DefaultBaseURL + "/" + DescriptorPath

// ObsType is a kind of CMORPH observation.
type ObsType string

const (
	// Raw is satellite-only precipitation.
	Raw ObsType = "raw"

	// Adjusted is precipitation adjusted with rain gauge data.
	Adjusted ObsType = "adjusted"
)

// ParseObsType returns the observation type named by s.
func ParseObsType(s string) (ObsType, error) {
	switch o := ObsType(strings.ToLower(strings.TrimSpace(s))); o {
	case Raw, Adjusted:
		return o, nil
	default:
		return "", fmt.Errorf("archive: invalid observation type %q; it must be %q or %q", s, Raw, Adjusted)
	}
}

func (o ObsType) dir() string {
	if o == Adjusted {
		return "01_GAUGE_ADJUSTED"
	}
	return "02_RAW"
}

func (o ObsType) code() string {
	if o == Adjusted {
		return "ADJ"
	}
	return "RAW"
}

// FilePrefix returns the part of the daily grid file names for o that
// precedes the date.
func FilePrefix(o ObsType) string {
	return "CMORPH_V1.0_" + o.code() + "_0.25deg-DLY_00Z_"
}

// FileName returns the name of the decompressed daily grid file for
// the given day.
func FileName(o ObsType, year, month, day int) string {
	return fmt.Sprintf("%s%04d%02d%02d", FilePrefix(o), year, month, day)
}

// Compression returns the file extension of the compressed daily grids
// for the given year. Raw grids before 2004 are gzipped; everything
// else is bzip2-compressed.
func Compression(o ObsType, year int) string {
	if o == Raw && year < 2004 {
		return ".gz"
	}
	return ".bz2"
}

// FileURL returns the location of the compressed daily grid for the
// given day in the archive rooted at baseURL.
func FileURL(baseURL string, o ObsType, year, month, day int) string {
	return fmt.Sprintf("%s/%s/%04d/%04d%02d/%s%s", strings.TrimSuffix(baseURL, "/"),
		o.dir(), year, year, month, FileName(o, year, month, day), Compression(o, year))
}
