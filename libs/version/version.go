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

package version

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/blang/semver"
)

var (
	// VersionHash specifies the git commit used to build the application.
	VersionHash = ""

	// Version specifies the version used to build the application.
	Version = "v0.1.0+dev"
)

// Info describes a version string.
type Info struct {
	*semver.Version
	// IsDevelopment is true for builds carrying the "dev" build metadata.
	IsDevelopment bool
	IsPreReleased bool
	IsReleased    bool
}

// NewVersionFromString parses versions such as "v1.2.3", "1.2.3-rc.1" or
// "v0.1.0+dev".
func NewVersionFromString(raw string) (*Info, error) {
	v, err := semver.ParseTolerant(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse version %q: %w", raw, err)
	}
	info := &Info{Version: &v}
	for _, b := range v.Build {
		if b == "dev" {
			info.IsDevelopment = true
		}
	}
	info.IsPreReleased = len(v.Pre) > 0
	info.IsReleased = !info.IsDevelopment && !info.IsPreReleased
	return info, nil
}

// Get returns the version of the running binary.
func Get() string {
	return Version
}

// Hash returns the commit of the running binary, read from the build info
// when it was not set at link time.
func Hash() string {
	if VersionHash != "" {
		return VersionHash
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var (
		hash     string
		modified bool
	)
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			hash = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if modified {
		hash += "-modified"
	}
	return hash
}
