// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package version_test

import (
	"testing"

	"code.vegaprotocol.io/perps/libs/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionFromString(t *testing.T) {
	t.Run("release", func(t *testing.T) {
		v, err := version.NewVersionFromString("v1.2.3")
		require.NoError(t, err)
		assert.True(t, v.IsReleased)
		assert.Equal(t, "1.2.3", v.String())
	})

	t.Run("pre-release", func(t *testing.T) {
		v, err := version.NewVersionFromString("1.2.3-rc.1")
		require.NoError(t, err)
		assert.True(t, v.IsPreReleased)
		assert.False(t, v.IsReleased)
	})

	t.Run("development", func(t *testing.T) {
		v, err := version.NewVersionFromString(version.Get())
		require.NoError(t, err)
		assert.True(t, v.IsDevelopment)
		assert.False(t, v.IsReleased)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := version.NewVersionFromString("not-a-version")
		assert.Error(t, err)
	})
}
