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
	"io/ioutil"
	"os"
	"path"
	"path/filepath"

	"github.com/spatialmodel/cmorph/cloud"
)

// uploader stages an output file locally when its final location is in
// blob storage.
type uploader struct {
	local, remote string
	dir           string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run.
func (u *uploader) maybeUpload(p string) (string, error) {
	if !cloud.IsBlob(p) {
		return p, nil
	}
	dir, err := ioutil.TempDir("", "cmorph")
	if err != nil {
		return "", fmt.Errorf("cmorph: creating staging directory for upload: %v", err)
	}
	u.dir = dir
	u.remote = p
	u.local = filepath.Join(dir, path.Base(p))
	return u.local, nil
}

// upload copies the staged file to its blob storage location, if there
// is one.
func (u *uploader) upload(ctx context.Context) error {
	if u.remote == "" {
		return nil
	}
	if err := cloud.UploadFile(ctx, u.local, u.remote); err != nil {
		return fmt.Errorf("cmorph: uploading '%s' to '%s': %v", u.local, u.remote, err)
	}
	return nil
}

// cleanup removes the staging directory.
func (u *uploader) cleanup() error {
	if u.dir == "" {
		return nil
	}
	return os.RemoveAll(u.dir)
}
