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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultVariableName is the name of the data variable in CMORPH
// control files.
const DefaultVariableName = "cmorph"

// GridDescriptor holds the information from a GrADS control file that is
// needed to decode and georeference the daily binary grids.
type GridDescriptor struct {
	// XCount and YCount are the number of grid cells in the
	// longitude and latitude directions.
	XCount, YCount int

	// XStart and YStart are the coordinates of the first grid cell
	// center, and XIncrement and YIncrement are the grid spacing.
	XStart, XIncrement float64
	YStart, YIncrement float64

	// Undef is the value that marks missing data.
	Undef float64

	// LittleEndian specifies the byte order of the binary grids.
	LittleEndian bool

	// StartDate is the date of the first daily grid in the archive.
	StartDate time.Time

	Title string

	// VariableName and VariableDescription describe the data variable.
	VariableName        string
	VariableDescription string
}

// Len returns the number of values in one grid.
func (d *GridDescriptor) Len() int { return d.XCount * d.YCount }

// ByteOrder returns the byte order of the binary grids.
func (d *GridDescriptor) ByteOrder() binary.ByteOrder {
	if d.LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Lon returns the longitude of each grid column.
func (d *GridDescriptor) Lon() []float64 { return linearAxis(d.XStart, d.XIncrement, d.XCount) }

// Lat returns the latitude of each grid row.
func (d *GridDescriptor) Lat() []float64 { return linearAxis(d.YStart, d.YIncrement, d.YCount) }

func linearAxis(start, inc float64, n int) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = start + float64(i)*inc
	}
	return o
}

// Validate checks that the descriptor describes a usable grid.
func (d *GridDescriptor) Validate() error {
	if d.XCount <= 0 || d.YCount <= 0 {
		return fmt.Errorf("grid dimensions must be positive but are %d x %d", d.XCount, d.YCount)
	}
	if d.XIncrement == 0 || d.YIncrement == 0 {
		return fmt.Errorf("grid increments must be non-zero")
	}
	if d.StartDate.IsZero() {
		return fmt.Errorf("missing start date")
	}
	return nil
}

// ReadDescriptorFile parses the GrADS control file at the given path.
func ReadDescriptorFile(path string) (*GridDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cmorph: opening grid descriptor: %v", err)
	}
	defer f.Close()
	return ParseDescriptor(f)
}

// ParseDescriptor reads a GrADS control file from r. Only the
// UNDEF, XDEF, YDEF, TDEF, OPTIONS and TITLE entries and the first
// variable definition are used; all other lines are ignored.
// Keywords are matched case-insensitively.
func ParseDescriptor(r io.Reader) (*GridDescriptor, error) {
	d := &GridDescriptor{LittleEndian: true}
	var haveUndef, haveX, haveY, haveT, inVars bool

	s := bufio.NewScanner(r)
	lineNum := 0
	for s.Scan() {
		lineNum++
		line := s.Text()
		words := strings.Fields(line)
		if len(words) == 0 || strings.HasPrefix(words[0], "*") {
			continue
		}
		perr := func(err error) error {
			return &ParseError{Line: lineNum, Text: line, Err: err}
		}
		switch key := strings.ToUpper(words[0]); {
		case key == "UNDEF":
			if len(words) < 2 {
				return nil, perr(fmt.Errorf("missing value"))
			}
			v, err := strconv.ParseFloat(words[1], 64)
			if err != nil {
				return nil, perr(err)
			}
			d.Undef = v
			haveUndef = true
		case key == "XDEF":
			n, start, inc, err := parseLinearDef(words)
			if err != nil {
				return nil, perr(err)
			}
			d.XCount, d.XStart, d.XIncrement = n, start, inc
			haveX = true
		case key == "YDEF":
			n, start, inc, err := parseLinearDef(words)
			if err != nil {
				return nil, perr(err)
			}
			d.YCount, d.YStart, d.YIncrement = n, start, inc
			haveY = true
		case key == "TDEF":
			if len(words) < 4 {
				return nil, perr(fmt.Errorf("expected 'TDEF n LINEAR start increment'"))
			}
			if !strings.EqualFold(words[2], "LINEAR") {
				return nil, perr(fmt.Errorf("unsupported time mapping %q", words[2]))
			}
			t, err := parseGrADSDate(words[3])
			if err != nil {
				return nil, perr(err)
			}
			d.StartDate = t
			haveT = true
		case key == "OPTIONS":
			d.LittleEndian = true
			for _, w := range words[1:] {
				if strings.EqualFold(w, "big_endian") {
					d.LittleEndian = false
				}
			}
		case key == "TITLE":
			d.Title = strings.Join(words[1:], " ")
		case key == "VARS":
			inVars = true
		case key == "ENDVARS":
			inVars = false
		case (inVars || strings.EqualFold(words[0], DefaultVariableName)) && d.VariableName == "":
			d.VariableName = words[0]
			if len(words) > 4 {
				d.VariableDescription = strings.Join(words[4:], " ")
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, &ParseError{Err: err}
	}

	for _, k := range []struct {
		name string
		ok   bool
	}{{"UNDEF", haveUndef}, {"XDEF", haveX}, {"YDEF", haveY}, {"TDEF", haveT}} {
		if !k.ok {
			return nil, &ParseError{Err: fmt.Errorf("missing %s entry", k.name)}
		}
	}
	if err := d.Validate(); err != nil {
		return nil, &ParseError{Err: err}
	}
	return d, nil
}

// parseLinearDef parses a line like "XDEF 1440 LINEAR 0.125 0.25".
func parseLinearDef(words []string) (n int, start, inc float64, err error) {
	if len(words) < 5 {
		return 0, 0, 0, fmt.Errorf("expected '%s n LINEAR start increment'", words[0])
	}
	if !strings.EqualFold(words[2], "LINEAR") {
		return 0, 0, 0, fmt.Errorf("unsupported axis mapping %q", words[2])
	}
	if n, err = strconv.Atoi(words[1]); err != nil {
		return
	}
	if start, err = strconv.ParseFloat(words[3], 64); err != nil {
		return
	}
	inc, err = strconv.ParseFloat(words[4], 64)
	return
}

// parseGrADSDate parses a GrADS absolute date such as "01jan1998"
// or "00Z01jan1998". Month abbreviations are case-insensitive.
func parseGrADSDate(s string) (time.Time, error) {
	s = strings.ToLower(s)
	if i := strings.IndexByte(s, 'z'); i >= 0 {
		s = s[i+1:]
	}
	// Capitalize the month abbreviation so it matches Go's layout.
	for i, c := range s {
		if c >= 'a' && c <= 'z' {
			s = s[:i] + strings.ToUpper(s[i:i+1]) + s[i+1:]
			break
		}
	}
	t, err := time.Parse("2Jan2006", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %v", err)
	}
	return t, nil
}
