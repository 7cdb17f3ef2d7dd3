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

package cmorphutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cmorph/archive"
	"github.com/spatialmodel/cmorph/cloud"
	"github.com/spf13/cast"
)

// Config holds the settings for an ingest run.
type Config struct {
	WorkDir        string
	OutputFile     string
	DescriptorFile string

	FirstYear, LastYear, EpochYear int

	Obs         archive.ObsType
	Download    bool
	RemoveFiles bool
	ArchiveURL  string
	Retries     int
	Overwrite   bool

	LogLevel    string
	LogFile     string
	MetricsFile string
}

// LoadConfig reads and checks the ingest settings held in cfg.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		WorkDir:        os.ExpandEnv(cfg.GetString("WorkDir")),
		DescriptorFile: os.ExpandEnv(cfg.GetString("DescriptorFile")),
		ArchiveURL:     os.ExpandEnv(cfg.GetString("ArchiveURL")),
		LogLevel:       cfg.GetString("LogLevel"),
		LogFile:        os.ExpandEnv(cfg.GetString("LogFile")),
		MetricsFile:    os.ExpandEnv(cfg.GetString("MetricsFile")),
	}
	var err error
	for _, v := range []struct {
		name string
		dst  *int
	}{
		{"FirstYear", &c.FirstYear},
		{"LastYear", &c.LastYear},
		{"EpochYear", &c.EpochYear},
		{"Retries", &c.Retries},
	} {
		if *v.dst, err = cast.ToIntE(cfg.Get(v.name)); err != nil {
			return nil, fmt.Errorf("cmorph: invalid %s: %v", v.name, err)
		}
	}
	for _, v := range []struct {
		name string
		dst  *bool
	}{
		{"Download", &c.Download},
		{"RemoveFiles", &c.RemoveFiles},
		{"Overwrite", &c.Overwrite},
	} {
		if *v.dst, err = cast.ToBoolE(cfg.Get(v.name)); err != nil {
			return nil, fmt.Errorf("cmorph: invalid %s: %v", v.name, err)
		}
	}

	if c.Obs, err = archive.ParseObsType(cfg.GetString("ObsType")); err != nil {
		return nil, err
	}
	if _, err = logrus.ParseLevel(c.LogLevel); err != nil {
		return nil, fmt.Errorf("cmorph: invalid LogLevel: %v", err)
	}
	if c.Retries < 0 {
		return nil, fmt.Errorf("cmorph: Retries must not be negative; it is %d", c.Retries)
	}
	if c.WorkDir == "" {
		return nil, fmt.Errorf("cmorph: you need to specify a working directory (WorkDir)")
	}
	if c.DescriptorFile == "" {
		return nil, fmt.Errorf(`cmorph: you need to specify a grid descriptor (for example: DescriptorFile="%s")`,
			archive.DefaultDescriptorURL)
	}
	if c.Download && c.ArchiveURL == "" {
		return nil, fmt.Errorf("cmorph: Download is true but ArchiveURL is not set")
	}
	if c.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile"), c.Overwrite); err != nil {
		return nil, err
	}
	return c, nil
}

// checkOutputFile makes sure that the output file location is usable.
func checkOutputFile(f string, overwrite bool) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`cmorph: you need to specify an output file configuration variable (for example: OutputFile="cmorph_monthly.nc")`)
	}
	f = os.ExpandEnv(f)
	if cloud.IsBlob(f) {
		exists, err := cloud.Exists(context.TODO(), f)
		if err != nil {
			return f, fmt.Errorf("cmorph: error when checking OutputFile location: %v", err)
		}
		if exists && !overwrite {
			return f, fmt.Errorf("cmorph: OutputFile %s already exists; set Overwrite to replace it", f)
		}
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("cmorph: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// isRemote returns whether path refers to a file that must be fetched
// before it can be read.
func isRemote(path string) bool {
	for _, prefix := range []string{"http://", "https://", "ftp://"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return cloud.IsBlob(path)
}
