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

// Package cmorphutil contains the command-line interface for cmorph.
package cmorphutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/cmorph"
	"github.com/spatialmodel/cmorph/archive"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to cmorph.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "WorkDir",
			usage: `
              WorkDir is the directory holding the decompressed daily
              grid files. Downloaded files are also stored here.`,
			shorthand:  "w",
			defaultVal: filepath.Join(os.TempDir(), "cmorph"),
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the monthly NetCDF dataset to create.
              It can be a local path or a blob storage location
              (gs://, s3://, or file://).`,
			shorthand:  "o",
			defaultVal: "cmorph_monthly.nc",
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "DescriptorFile",
			usage: `
              DescriptorFile is the location of the GrADS control file
              describing the daily grids. It can be a local path, an
              http(s) or ftp URL, or a blob storage location.`,
			defaultVal: archive.DefaultDescriptorURL,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "FirstYear",
			usage: `
              FirstYear is the first year (inclusive) to process.`,
			defaultVal: 1998,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "LastYear",
			usage: `
              LastYear is the last year (inclusive) to process.`,
			defaultVal: 2017,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "EpochYear",
			usage: `
              EpochYear is the reference year of the output time
              coordinate, which is in units of days since January 1 of
              EpochYear.`,
			defaultVal: 1800,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "ObsType",
			usage: `
              ObsType is the kind of observation to process: "raw" for
              satellite-only precipitation or "adjusted" for
              gauge-adjusted precipitation.`,
			defaultVal: string(archive.Raw),
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "Download",
			usage: `
              Download specifies whether the daily grid files should be
              downloaded from ArchiveURL. If false, they must already be
              in WorkDir.`,
			shorthand:  "d",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "RemoveFiles",
			usage: `
              RemoveFiles specifies whether downloaded daily grid files
              should be deleted after each month has been processed.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "ArchiveURL",
			usage: `
              ArchiveURL is the root of the CMORPH daily archive or a
              mirror of it.`,
			defaultVal: archive.DefaultBaseURL,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "Retries",
			usage: `
              Retries is the number of times a failed download is retried.`,
			defaultVal: archive.DefaultMaxRetries,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "Overwrite",
			usage: `
              Overwrite specifies whether an existing OutputFile may be
              replaced.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print
              (debug, info, warning, or error).`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is a file that log messages are written to in
              addition to standard error.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
		{
			name: "MetricsFile",
			usage: `
              MetricsFile is a file that run metrics are written to in
              the Prometheus text format when the run finishes.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{ingestCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CMORPH")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(ingestCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cmorph: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "cmorph",
	Short: "Monthly precipitation totals from the CMORPH daily archive.",
	Long: `cmorph converts the daily CMORPH satellite precipitation grids into a
NetCDF dataset of monthly precipitation totals.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CMORPH_VAR' where 'VAR' is the
upper-case name of the variable to be set. Path and URL variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of cmorph.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("cmorph v%s\n", cmorph.Version)
	},
	DisableAutoGenTag: true,
}

// ingestCmd creates the monthly dataset.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Create a monthly precipitation dataset.",
	Long: `ingest sums the daily CMORPH grids for each month in the range
FirstYear to LastYear and writes the monthly totals to OutputFile. If Download
is true the daily grids are first retrieved from ArchiveURL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		log, closeLog, err := NewLogger(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		defer closeLog()
		if err = Ingest(cmd.Context(), cfg, log); err != nil {
			log.WithError(err).Error("ingest failed")
			return err
		}
		return nil
	},
	DisableAutoGenTag: true,
}
