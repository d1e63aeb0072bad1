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

package segger

import (
	"os"

	"github.com/blessed-stack/blessed-tools/cli/arguments"
	"github.com/blessed-stack/blessed-tools/cli/common"
	"github.com/blessed-stack/blessed-tools/flasher"
	"github.com/spf13/cobra"
)

// NewEraseCommand creates a new `erase` command
func NewEraseCommand(flags *arguments.Flags) *cobra.Command {
	return &cobra.Command{
		Use:     "erase",
		Short:   "Erases the whole device flash.",
		Long:    "Runs JLinkExe with erase.jlink. BUILD_PATH and JLINK_PATH are both required, the built-in script is written to BUILD_PATH.",
		Example: "  BUILD_PATH=build JLINK_PATH=/opt/SEGGER/JLink " + os.Args[0] + " erase",
		Args:    common.WithExitCode(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, flasher.Erase{})
		},
	}
}
