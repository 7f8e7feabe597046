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
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// PerpsHome is the folder grouping every perps file under the XDG
	// directories.
	PerpsHome = "perps"

	dirPerm  = 0o700
	filePerm = 0o600
)

type ConfigPath string

func (p ConfigPath) String() string {
	return string(p)
}

// JoinConfigPath joins a config path with elements.
func JoinConfigPath(p ConfigPath, elem ...string) ConfigPath {
	return ConfigPath(filepath.Join(append([]string{string(p)}, elem...)...))
}

type StatePath string

func (p StatePath) String() string {
	return string(p)
}

// JoinStatePath joins a state path with elements.
func JoinStatePath(p StatePath, elem ...string) StatePath {
	return StatePath(filepath.Join(append([]string{string(p)}, elem...)...))
}

var (
	// ConfigFile is the engine configuration.
	ConfigFile = ConfigPath("config.toml")

	// SnapshotStateHome is the folder of the snapshot database.
	SnapshotStateHome = StatePath("snapshots")

	// EventLogStateHome is the folder of the event logs written by the
	// replay command.
	EventLogStateHome = StatePath("events")
)

// DefaultPaths lays the files out in the XDG directories of the user.
type DefaultPaths struct{}

func (p *DefaultPaths) CreateConfigPathFor(relPath ConfigPath) (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(PerpsHome, relPath.String()))
	if err != nil {
		return "", fmt.Errorf("couldn't create the config path for %q: %w", relPath, err)
	}
	return path, nil
}

func (p *DefaultPaths) CreateStateDirFor(relDirPath StatePath) (string, error) {
	path := p.StatePathFor(relDirPath)
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return "", fmt.Errorf("couldn't create the state directory for %q: %w", relDirPath, err)
	}
	return path, nil
}

func (p *DefaultPaths) ConfigPathFor(relPath ConfigPath) string {
	return filepath.Join(xdg.ConfigHome, PerpsHome, relPath.String())
}

func (p *DefaultPaths) StatePathFor(relPath StatePath) string {
	return filepath.Join(xdg.StateHome, PerpsHome, relPath.String())
}

// CustomPaths lays the files out under a single home folder.
type CustomPaths struct {
	CustomHome string
}

func (p *CustomPaths) CreateConfigPathFor(relPath ConfigPath) (string, error) {
	path := p.ConfigPathFor(relPath)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", fmt.Errorf("couldn't create the config path for %q: %w", relPath, err)
	}
	return path, nil
}

func (p *CustomPaths) CreateStateDirFor(relDirPath StatePath) (string, error) {
	path := p.StatePathFor(relDirPath)
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return "", fmt.Errorf("couldn't create the state directory for %q: %w", relDirPath, err)
	}
	return path, nil
}

func (p *CustomPaths) ConfigPathFor(relPath ConfigPath) string {
	return filepath.Join(p.CustomHome, "config", relPath.String())
}

func (p *CustomPaths) StatePathFor(relPath StatePath) string {
	return filepath.Join(p.CustomHome, "state", relPath.String())
}

// WriteFile writes data to the path with owner only permissions.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, filePerm)
}
