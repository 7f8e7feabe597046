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
package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"code.vegaprotocol.io/perps/paths"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	t.Run("Creating paths without path returns a default implementation", testCreatingPathsWithoutPathReturnsDefaultImplementation)
	t.Run("Creating paths with a path returns a custom implementation", testCreatingPathsWithPathReturnsCustomImplementation)
}

func testCreatingPathsWithoutPathReturnsDefaultImplementation(t *testing.T) {
	p := paths.New("")

	assert.IsType(t, &paths.DefaultPaths{}, p)
}

func testCreatingPathsWithPathReturnsCustomImplementation(t *testing.T) {
	p := paths.New(t.TempDir())

	assert.IsType(t, &paths.CustomPaths{}, p)
}

func TestJoiningPaths(t *testing.T) {
	assert.Equal(t, paths.StatePath(filepath.Join("snapshots", "a", "b")), paths.JoinStatePath(paths.SnapshotStateHome, "a", "b"))
	assert.Equal(t, paths.ConfigPath(filepath.Join("config.toml", "x")), paths.JoinConfigPath(paths.ConfigFile, "x"))
}

func TestCustomPaths(t *testing.T) {
	home := t.TempDir()
	p := paths.New(home)

	dir, err := p.CreateStateDirFor(paths.SnapshotStateHome)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "state", "snapshots"), dir)
	stat, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	file, err := p.CreateConfigPathFor(paths.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config", "config.toml"), file)
	require.NoError(t, paths.WriteFile(file, []byte("x")))
}
