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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cmorph"
	"github.com/spatialmodel/cmorph/archive"
)

// Ingest creates the monthly dataset described by cfg. It fetches the
// grid descriptor if it is remote, downloads the daily grids if
// cfg.Download is true, and uploads the dataset if cfg.OutputFile is
// in blob storage.
func Ingest(ctx context.Context, cfg *Config, log logrus.FieldLogger) (err error) {
	if err = os.MkdirAll(cfg.WorkDir, 0755); err != nil {
		return fmt.Errorf("cmorph: creating working directory: %v", err)
	}
	f := &archive.Fetcher{
		BaseURL:    cfg.ArchiveURL,
		Obs:        cfg.Obs,
		Dir:        cfg.WorkDir,
		MaxRetries: uint64(cfg.Retries),
		Log:        log,
	}
	defer f.Close()

	d, err := loadDescriptor(ctx, cfg, f, log)
	if err != nil {
		return err
	}

	var u uploader
	output, err := u.maybeUpload(cfg.OutputFile)
	if err != nil {
		return err
	}
	defer u.cleanup()

	reg := prometheus.NewRegistry()
	ing := &cmorph.Ingester{
		Descriptor:  d,
		WorkDir:     cfg.WorkDir,
		OutputFile:  output,
		FirstYear:   cfg.FirstYear,
		LastYear:    cfg.LastYear,
		EpochYear:   cfg.EpochYear,
		RemoveFiles: cfg.RemoveFiles,
		Overwrite:   cfg.Overwrite,
		Log:         log,
		Metrics:     cmorph.NewMetrics(reg),
	}
	if cfg.Download {
		ing.Retriever = f
	} else {
		ing.Retriever = archive.Local{Dir: cfg.WorkDir, Obs: cfg.Obs}
	}

	err = ing.Run(ctx)
	if cfg.MetricsFile != "" {
		if merr := prometheus.WriteToTextfile(cfg.MetricsFile, reg); merr != nil && err == nil {
			err = fmt.Errorf("cmorph: writing metrics file: %v", merr)
		}
	}
	if err != nil {
		return err
	}
	if err = u.upload(ctx); err != nil {
		return err
	}
	if u.remote != "" {
		log.WithField("url", u.remote).Info("uploaded dataset")
	}
	return nil
}

// loadDescriptor reads the grid descriptor, fetching it first if
// it is not a local file.
func loadDescriptor(ctx context.Context, cfg *Config, f *archive.Fetcher, log logrus.FieldLogger) (*cmorph.GridDescriptor, error) {
	if !isRemote(cfg.DescriptorFile) {
		return cmorph.ReadDescriptorFile(cfg.DescriptorFile)
	}
	p, err := f.Fetch(ctx, cfg.DescriptorFile)
	if err != nil {
		return nil, err
	}
	log.WithField("url", cfg.DescriptorFile).Info("fetched grid descriptor")
	d, err := cmorph.ReadDescriptorFile(p)
	if cfg.RemoveFiles {
		if rerr := os.Remove(p); rerr != nil && err == nil {
			err = fmt.Errorf("cmorph: removing fetched descriptor: %v", rerr)
		}
	}
	return d, err
}
