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
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploader(t *testing.T) {
	var u uploader
	p, err := u.maybeUpload("out.nc")
	require.NoError(t, err)
	assert.Equal(t, "out.nc", p)
	assert.NoError(t, u.upload(context.Background()))
	assert.NoError(t, u.cleanup())

	dir := t.TempDir()
	p, err = u.maybeUpload("file://" + dir + "/monthly.nc")
	require.NoError(t, err)
	assert.Equal(t, "monthly.nc", filepath.Base(p))
	require.NoError(t, ioutil.WriteFile(p, []byte("data"), 0644))
	require.NoError(t, u.upload(context.Background()))
	require.NoError(t, u.cleanup())

	b, err := ioutil.ReadFile(filepath.Join(dir, "monthly.nc"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}
