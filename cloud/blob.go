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

package cloud

import (
	"context"
	"fmt"
	"io"
	"os"

	"gocloud.dev/blob"
)

// Download copies the blob at blobURL to w.
func Download(ctx context.Context, blobURL string, w io.Writer) error {
	bucketName, key, err := splitURL(blobURL)
	if err != nil {
		return err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	defer bucket.Close()
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	defer r.Close()
	if _, err = io.Copy(w, r); err != nil {
		return fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	return nil
}

// Upload copies the contents of r to the blob at blobURL.
func Upload(ctx context.Context, blobURL string, r io.Reader) error {
	bucketName, key, err := splitURL(blobURL)
	if err != nil {
		return err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return err
	}
	defer bucket.Close()
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("cloud: creating writer for blob %s: %v", key, err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("cloud: copying blob %s: %v", key, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("cloud: writing blob %s: %v", key, err)
	}
	return nil
}

// UploadFile copies the local file at path to the blob at blobURL.
func UploadFile(ctx context.Context, path, blobURL string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cloud: opening file '%s' for upload: %v", path, err)
	}
	defer f.Close()
	return Upload(ctx, blobURL, f)
}

// Exists returns whether the bucket for blobURL can be opened and
// whether the blob itself exists.
func Exists(ctx context.Context, blobURL string) (bool, error) {
	bucketName, key, err := splitURL(blobURL)
	if err != nil {
		return false, err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return false, err
	}
	defer bucket.Close()
	return bucket.Exists(ctx, key)
}
