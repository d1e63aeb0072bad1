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

package globals

import "github.com/blessed-stack/blessed-tools/version"

var (
	// SeggerInfo describes the segger flash controller binary
	SeggerInfo = version.NewInfo("segger")
	// RemoteBuildInfo describes the remote-build client binary
	RemoteBuildInfo = version.NewInfo("remote-build")
)
