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

package archive

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/jlaffaye/ftp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/cmorph"
	"github.com/spatialmodel/cmorph/cloud"
)

// DefaultMaxRetries is the default number of times a failed download
// is retried.
const DefaultMaxRetries = 5

const ftpTimeout = time.Minute

var _ cmorph.Retriever = (*Fetcher)(nil)

// Fetcher downloads daily grid files from an archive into a local
// directory and decompresses them. The archive may be served over
// http(s) or ftp, be held in blob storage (gs://, s3://, file://), or be
// a local directory. A Fetcher is not safe for concurrent use.
type Fetcher struct {
	// BaseURL is the root of the archive.
	BaseURL string

	// Obs is the kind of observation to retrieve.
	Obs ObsType

	// Dir is the directory that files are downloaded to.
	Dir string

	// MaxRetries is the number of times a failed download is retried.
	MaxRetries uint64

	// HTTPClient is used for http(s) downloads. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	Log logrus.FieldLogger

	ftpConn *ftp.ServerConn
	ftpHost string
}

func (f *Fetcher) log() logrus.FieldLogger {
	if f.Log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		f.Log = l
	}
	return f.Log
}

// DailyFiles downloads and decompresses the daily grid files for every
// day of the given month, and returns the paths of the decompressed
// files. Files that are already present in Dir are not downloaded again.
func (f *Fetcher) DailyFiles(ctx context.Context, year, month int) ([]string, error) {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return nil, fmt.Errorf("archive: creating download directory: %v", err)
	}
	ndays := cmorph.DaysInMonth(year, month)
	paths := make([]string, 0, ndays)
	for day := 1; day <= ndays; day++ {
		dst := filepath.Join(f.Dir, FileName(f.Obs, year, month, day))
		if _, err := os.Stat(dst); err == nil {
			paths = append(paths, dst)
			continue
		}
		compressed, err := f.Fetch(ctx, FileURL(f.BaseURL, f.Obs, year, month, day))
		if err != nil {
			return nil, err
		}
		p, err := Decompress(compressed)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	f.log().WithFields(logrus.Fields{
		"year":  year,
		"month": month,
		"files": len(paths),
	}).Info("retrieved daily grid files")
	return paths, nil
}

// Cleanup removes the given files. Files that no longer exist are
// ignored.
func (f *Fetcher) Cleanup(paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("archive: removing %s: %v", p, err)
		}
	}
	return nil
}

// Close closes any open ftp connection.
func (f *Fetcher) Close() error {
	return f.closeFTP()
}

// Fetch downloads src into Dir, retrying with exponential backoff if
// the download fails, and returns the path of the downloaded file.
func (f *Fetcher) Fetch(ctx context.Context, src string) (string, error) {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return "", fmt.Errorf("archive: creating download directory: %v", err)
	}
	dst := filepath.Join(f.Dir, path.Base(src))
	tmp := dst + ".part"

	var b backoff.BackOff = backoff.NewExponentialBackOff()
	b = backoff.WithMaxRetries(b, f.MaxRetries)
	b = backoff.WithContext(b, ctx)

	err := backoff.RetryNotify(
		func() error {
			w, err := os.Create(tmp)
			if err != nil {
				return err
			}
			if err = f.download(ctx, src, w); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
		b,
		func(err error, d time.Duration) {
			f.log().WithFields(logrus.Fields{
				"url":   src,
				"error": err.Error(),
			}).Warnf("download failed; retrying in %v", d)
		},
	)
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("archive: downloading %s: %v", src, err)
	}
	if err = os.Rename(tmp, dst); err != nil {
		return "", fmt.Errorf("archive: moving downloaded file: %v", err)
	}
	f.log().WithField("url", src).Debug("downloaded file")
	return dst, nil
}

// download copies the contents of src to w.
func (f *Fetcher) download(ctx context.Context, src string, w io.Writer) error {
	switch {
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		return f.downloadHTTP(ctx, src, w)
	case strings.HasPrefix(src, "ftp://"):
		return f.downloadFTP(ctx, src, w)
	case cloud.IsBlob(src):
		return cloud.Download(ctx, src, w)
	default:
		r, err := os.Open(src)
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = io.Copy(w, r)
		return err
	}
}

func (f *Fetcher) downloadHTTP(ctx context.Context, src string, w io.Writer) error {
	c := f.HTTPClient
	if c == nil {
		c = http.DefaultClient
	}
	req, err := http.NewRequest(http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (f *Fetcher) downloadFTP(ctx context.Context, src string, w io.Writer) error {
	u, err := url.Parse(src)
	if err != nil {
		return err
	}
	c, err := f.ftpLogin(ctx, u)
	if err != nil {
		return err
	}
	r, err := c.Retr(u.Path)
	if err != nil {
		// The connection may have gone stale; start over on the next try.
		f.closeFTP()
		return err
	}
	_, err = io.Copy(w, r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		f.closeFTP()
	}
	return err
}

// ftpLogin returns a logged-in connection to the server in u, reusing the
// previous connection if it was to the same server.
func (f *Fetcher) ftpLogin(ctx context.Context, u *url.URL) (*ftp.ServerConn, error) {
	if f.ftpConn != nil && f.ftpHost == u.Host {
		return f.ftpConn, nil
	}
	f.closeFTP()
	addr := u.Host
	if u.Port() == "" {
		addr += ":21"
	}
	c, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(ftpTimeout))
	if err != nil {
		return nil, err
	}
	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err = c.Login(user, pass); err != nil {
		c.Quit()
		return nil, err
	}
	f.ftpConn, f.ftpHost = c, u.Host
	return c, nil
}

func (f *Fetcher) closeFTP() error {
	if f.ftpConn == nil {
		return nil
	}
	err := f.ftpConn.Quit()
	f.ftpConn, f.ftpHost = nil, ""
	return err
}

// Local is a retriever for daily grid files that are already present
// in a directory. It never removes files.
type Local struct {
	Dir string

	// Obs selects which files are returned. The zero value selects
	// raw files.
	Obs ObsType
}

var _ cmorph.Retriever = Local{}

// DailyFiles returns the files in the directory for the given month
// and observation type.
func (l Local) DailyFiles(ctx context.Context, year, month int) ([]string, error) {
	files, err := cmorph.MonthFiles(l.Dir, year, month)
	if err != nil {
		return nil, err
	}
	prefix := FilePrefix(l.Obs)
	var o []string
	for _, f := range files {
		if strings.HasPrefix(filepath.Base(f), prefix) {
			o = append(o, f)
		}
	}
	return o, nil
}

// Cleanup does nothing.
func (l Local) Cleanup(paths []string) error { return nil }
