/*
	blessed-tools
	Copyright (c) 2023 The BLESSED Authors.  All right reserved.

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInfo(t *testing.T) {
	info := NewInfo("segger")
	require.Equal(t, "segger", info.Application)
	require.Equal(t, defaultVersionString, info.VersionString)
	require.Equal(t, "segger/0.0.0-git", info.UserAgent())
	require.Contains(t, info.String(), "segger Version: 0.0.0-git")
}

func TestVersionFromLDFlags(t *testing.T) {
	defer func(v string) { versionString = v }(versionString)
	versionString = "1.2.0-rc1"
	info := NewInfo("remote-build")
	require.Equal(t, "1.2.0-rc1", info.Version().String())
	require.Equal(t, "remote-build/1.2.0-rc1", info.UserAgent())
}
