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
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cmorph.log")
	log, closeLog, err := NewLogger("warning", file)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("not written")
	log.WithField("year", 1998).Warn("no daily grid files")
	require.NoError(t, closeLog())

	b, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "not written")
	assert.Contains(t, string(b), `level=warning msg="no daily grid files" year=1998`)
}

func TestNewLogger_errors(t *testing.T) {
	_, _, err := NewLogger("loud", "")
	assert.Error(t, err)

	_, _, err = NewLogger("info", filepath.Join(t.TempDir(), "missing", "cmorph.log"))
	assert.Error(t, err)
}
